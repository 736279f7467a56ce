package main

import (
	"context"
	"strings"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/tutor"
)

func (cli *commandLine) ask(ctx context.Context, args []string) error {
	cmd := cli.flagSet("ask")
	moduleID := cmd.String("module", "", "Ask about this module.")
	if err := cli.parse(cmd, args); err != nil {
		return err
	}
	if _, err := core.RequireIdentity(ctx); err != nil {
		return err
	}

	q := tutor.Question{Prompt: strings.Join(cmd.Args(), " "), ModuleID: *moduleID}
	if err := cli.tutor.Validate(&q); err != nil {
		return err
	}
	cli.printf("%s\n", cli.tutor.Ask(ctx, q))
	return nil
}
