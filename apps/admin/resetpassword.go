package main

import (
	"context"
	"fmt"

	"github.com/pragya-git-bug/aibackend/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err = cli.usrSvc.ChangePassword(ctx, usr.UserCode, pwd); err != nil {
		return err
	}
	printUser("password reset for", usr)
	return nil
}

func printUser(action string, usr user.User) {
	fmt.Printf("%s %s <%s> (%s, %s)\n", action, usr.FullName, usr.Email, usr.UserCode, usr.Role)
}
