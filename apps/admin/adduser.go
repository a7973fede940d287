package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

// addUser creates nu, or updates the role & password of the user having its email.
func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, nu.Email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		usr, err = cli.usrSvc.Create(ctx, nu)
		if err != nil {
			return err
		}
		printUser("created", usr)
		return nil
	case err != nil:
		return err
	}

	role := core.CleanString(nu.Role, true /* lower */)
	usr, err = cli.usrSvc.Update(ctx, usr.UserCode, user.UpdateUser{Role: &role, Password: &nu.Password})
	if err != nil {
		return err
	}
	printUser("updated", usr)
	return nil
}
