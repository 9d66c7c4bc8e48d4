package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlesng35/fleetcn/internal/app"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/services"
)

type createAdminOptions struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	root      bool
}

func newCreateAdminCmd(root *rootOptions) *cobra.Command {
	opts := &createAdminOptions{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Create an administrator account holding the Administrator role.

With --root the account bypasses role permissions entirely.

Example:
  fleetctl create-admin --username ops --email ops@example.com --password 'Str0ng!Pass'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := root.openDatabase(true)
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

			user, err := users.Create(cmd.Context(), services.CreateUserInput{
				Username:  opts.username,
				Email:     opts.email,
				Password:  opts.password,
				FirstName: opts.firstName,
				LastName:  opts.lastName,
				RoleID:    models.RoleAdministratorID,
				IsRoot:    opts.root,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "Login name")
	cmd.Flags().StringVar(&opts.email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password; must pass the strength check")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&opts.lastName, "last-name", "", "Last name")
	cmd.Flags().BoolVar(&opts.root, "root", false, "Grant unrestricted access")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
