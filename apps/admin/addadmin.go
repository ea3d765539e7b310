package main

import (
	"context"
	"time"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
)

// addAdmin creates an admin account. Existing accounts are left untouched.
func (cli *commandLine) addAdmin(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.admins.GetAdminByEmail(ctx, email); err == nil {
		return auth.ErrAdminExists
	} else if err != auth.ErrAdminNotFound {
		return err
	}

	adm := auth.Admin{Email: email, CreatedAt: time.Now().UTC()}
	if err := adm.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.admins.CreateAdmin(ctx, adm); err != nil {
		return err
	}
	return nil
}
