package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopline-dev/loopline/internal/errors"
	"github.com/loopline-dev/loopline/pkg/api"
)

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newStack()
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.auth.CurrentUser(cmd.Context())
			if err != nil {
				switch {
				case stderrors.Is(err, api.ErrNoToken):
					return errors.New("E141").
						WithSuggestion("Run 'loopline login' first")
				case stderrors.Is(err, api.ErrUnauthorized):
					return errors.New("E143").
						WithSuggestion("Run 'loopline login' to start a new session")
				case stderrors.Is(err, api.ErrNetwork):
					return errors.New("E161").Wrap(err)
				}
				return err
			}

			fmt.Printf("  ID:       %s\n", user.ID)
			fmt.Printf("  Email:    %s\n", user.Email)
			if user.Username != "" {
				fmt.Printf("  Username: %s\n", user.Username)
			}
			if user.FirstName != "" || user.LastName != "" {
				fmt.Printf("  Name:     %s %s\n", user.FirstName, user.LastName)
			}
			return nil
		},
	}
}
