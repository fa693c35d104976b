package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage service accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a service account that can log in via POST /auth/login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()
		email, _ := flags.GetString("email")
		password, _ := flags.GetString("password")
		role, _ := flags.GetString("role")

		a, pool, err := openApp(ctx)
		if err != nil {
			return eris.Wrap(err, "users create: open")
		}
		defer pool.Close()

		user, err := a.Auth.CreateUser(ctx, email, password, role)
		if err != nil {
			return eris.Wrap(err, "users create")
		}

		zap.L().Info("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email), zap.String("role", user.Role))
		return nil
	},
}

func init() {
	f := usersCreateCmd.Flags()
	f.String("email", "", "login email")
	f.String("password", "", "password, at least 8 characters")
	f.String("role", "user", "user or admin")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersCreateCmd)
	rootCmd.AddCommand(usersCmd)
}
