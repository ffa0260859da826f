package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loopline-dev/loopline/internal/errors"
	"github.com/loopline-dev/loopline/pkg/api"
)

func loginCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Authenticate against the configured backend.

On success the issued token is persisted, so subsequent commands run
as the logged-in user until 'loopline logout' or token expiry.

Examples:
  loopline login --email=me@example.com
  loopline login --email=me@example.com --password-stdin < secret.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newStack()
			if err != nil {
				return err
			}
			defer s.Close()

			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			creds, err := s.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return loginError(err)
			}

			name := email
			if creds.User != nil && creds.User.Username != "" {
				name = creds.User.Username
			}
			success("Logged in as %s", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted if omitted)")

	return cmd
}

func loginError(err error) error {
	switch {
	case stderrors.Is(err, api.ErrUnauthorized):
		return errors.New("E142").Wrap(err)
	case stderrors.Is(err, api.ErrValidation):
		return errors.New("E144").Wrap(err)
	case stderrors.Is(err, api.ErrNetwork):
		return errors.New("E161").Wrap(err)
	}
	return err
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
