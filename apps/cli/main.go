// Command tracked is the terminal client of the study tracker.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tracked-edu/tracked/core"
	emailsvc "github.com/tracked-edu/tracked/services/email"
	logsvc "github.com/tracked-edu/tracked/services/logger"
	tutorsvc "github.com/tracked-edu/tracked/services/tutor"
	"github.com/tracked-edu/tracked/storage"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.New(conf)

	repos, err := storage.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening storage: %v", err), err)
	}

	cli := newCommandLine(conf, logger, repos, tutorsvc.NewClient(conf), emailsvc.New(conf, logger), os.Stdin, os.Stdout)
	err = cli.run(os.Args)
	if cErr := repos.Close(); cErr != nil {
		logger.Error("closing storage", cErr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "error: %s\n", cli.describe(err))
		}
		os.Exit(1)
	}
}
