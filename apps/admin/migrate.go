package main

import (
	"context"

	"github.com/pragya-git-bug/aibackend/apps"
	pgdb "github.com/pragya-git-bug/aibackend/storage/database/postgres"
)

var gooseRunFunc = pgdb.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	if !isPostgres(cli.engine) {
		return apps.NewArgumentError("migrate is only available with the postgres engine (got " + cli.engine + ")")
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(context.Background(), cli.db, args[0], arguments...)
}
