package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/dams-project/backend/fs"
)

var gooseRunFunc = goose.Run // mockable

// migrate forwards to goose: `admin migrate up`, `admin migrate status`, etc.
func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, "migrations", arguments...)
}
