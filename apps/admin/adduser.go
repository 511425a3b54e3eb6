package main

import (
	"context"
	"time"

	"github.com/tmusoni/darasa/core"
	"github.com/tmusoni/darasa/core/auth"
)

// addUser updates or creates an auth.Account
func (cli *commandLine) addUser(uname, name, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	acct, err := cli.authRepo.GetAccountByUsername(ctx, uname)
	if err != nil {
		if err != auth.ErrNotFound {
			return err
		}
		acct = auth.Account{
			Username:  uname,
			CreatedAt: time.Now().UTC(),
		}
	}
	if name != "" {
		acct.Name = core.CleanString(name)
	}
	acct.Password = pwd

	if _, err := cli.authRepo.SaveAccount(ctx, acct); err != nil {
		return err
	}
	return nil
}
