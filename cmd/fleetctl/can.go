package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlesng35/fleetcn/internal/app"
	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/internal/services"
)

func newCanCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "can <user> <resource> <action>",
		Short: "Answer whether a user may perform an action on a menu",
		Long: `Answer whether a user may perform an action on a menu.

The user may be given by id, username or e-mail. Prints "allow" or "deny";
a denial exits with status 2.

Example:
  fleetctl can ops vehicles delete`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := permissions.ParseAction(args[2])
			if err != nil {
				return err
			}

			db, _, err := root.openDatabase(false)
			if err != nil {
				return err
			}
			defer app.CloseDatabase(db)

			audit, err := services.NewAuditService(db)
			if err != nil {
				return err
			}
			users, err := services.NewUserService(db, audit)
			if err != nil {
				return err
			}
			user, err := users.FindByLogin(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			checker, err := permissions.NewChecker(db)
			if err != nil {
				return err
			}
			allowed, err := checker.Check(cmd.Context(), user.ID, args[1], action)
			if err != nil {
				return err
			}

			if !allowed {
				fmt.Fprintln(cmd.OutOrStdout(), "deny")
				return errDenied
			}
			fmt.Fprintln(cmd.OutOrStdout(), "allow")
			return nil
		},
	}
}
