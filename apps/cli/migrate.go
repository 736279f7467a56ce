package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tracked-edu/tracked/storage/database"
)

var (
	gooseRunFunc = database.Migrate // mockable

	errNoDatabase = errors.New("migrations need the postgres store backend")
)

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printf("Usage: migrate up|up-by-one|up-to|down|down-to|redo|reset|status|version|create|fix [ARGS]\n")
		return errHelp
	}
	if cli.repos.DB == nil {
		return errNoDatabase
	}
	return gooseRunFunc(ctx, cli.repos.DB.DB, args[0], args[1:]...)
}
