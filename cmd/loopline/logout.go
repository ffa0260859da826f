package main

import (
	"github.com/spf13/cobra"
)

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		Long: `Log out of the backend and remove every stored copy of the token.

The local credentials are cleared even if the backend cannot be
reached; a failed server call only costs the server-side revocation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newStack()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			success("Logged out")
			return nil
		},
	}
}
