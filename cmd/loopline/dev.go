package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loopline-dev/loopline/internal/config"
	"github.com/loopline-dev/loopline/internal/devserver"
	"github.com/loopline-dev/loopline/internal/errors"
)

func devCmd() *cobra.Command {
	var (
		port   int
		host   string
		secret string
		seed   bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start a local stub backend",
		Long: `Start an in-memory Loopline backend for local development.

The stub speaks the production wire contract: it issues signed bearer
tokens and serves the auth and task endpoints. All state is lost on
exit.

Examples:
  loopline dev
  loopline dev --port=9000 --seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				// Dev works without a project; fall back to defaults.
				cfg = config.New()
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if secret != "" {
				cfg.Dev.Secret = secret
			}
			if cfg.Dev.Secret == "" {
				cfg.Dev.Secret = "loopline-dev-secret"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			server, err := devserver.New(devserver.Config{Secret: cfg.Dev.Secret})
			if err != nil {
				return errors.New("E182").Wrap(err)
			}
			if seed {
				server.Seed("dev@loopline.test", "password123", "dev")
				info("Seeded account dev@loopline.test / password123")
			}

			printBanner()
			info("API:     %s", cfg.DevURL())
			info("Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := server.ListenAndServe(ctx, cfg.DevAddress()); err != nil {
				return errors.New("E182").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from loopline.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from loopline.json)")
	cmd.Flags().StringVar(&secret, "secret", "", "Token signing secret")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create a ready-to-use dev account")

	return cmd
}
