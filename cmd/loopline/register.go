package main

import (
	"github.com/spf13/cobra"

	"github.com/loopline-dev/loopline/pkg/api"
)

func registerCmd() *cobra.Command {
	var reg api.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Long: `Register a new account on the configured backend.

Registration acts as an implicit login: the issued token is stored and
subsequent commands run as the new user.

Examples:
  loopline register --email=me@example.com --username=me`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newStack()
			if err != nil {
				return err
			}
			defer s.Close()

			if reg.Email == "" {
				reg.Email = prompt("Email: ")
			}
			if reg.Password == "" {
				reg.Password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			creds, err := s.auth.Register(cmd.Context(), reg)
			if err != nil {
				return loginError(err)
			}

			name := reg.Email
			if creds.User != nil && creds.User.Username != "" {
				name = creds.User.Username
			}
			success("Registered and logged in as %s", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Account password (prompted if omitted)")
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Display username")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "Last name")

	return cmd
}
