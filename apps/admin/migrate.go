package main

import (
	"errors"

	"github.com/pressly/goose/v3"

	appfs "github.com/tmusoni/darasa/fs"
)

var gooseRunFunc = goose.Run // mockable

var errNoSQLDatabase = errors.New("migrations require the postgres database engine")

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQLDatabase
	}
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, "migrations", arguments...)
}
