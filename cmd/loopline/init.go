package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loopline-dev/loopline/internal/config"
	"github.com/loopline-dev/loopline/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		baseURL string
		driver  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a loopline.json in the current directory",
		Long: `Create a loopline.json configuration file with defaults.

Examples:
  loopline init
  loopline init --base-url=https://api.example.com/api/v1
  loopline init --storage=sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			if config.Exists(wd) {
				return errors.Newf(errors.CategoryCLI, "%s already exists", config.ConfigFileName).
					WithSuggestion("Edit the existing file instead")
			}

			cfg := config.New()
			cfg.Name = filepath.Base(wd)
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			if driver != "" {
				cfg.Storage.Driver = driver
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(filepath.Join(wd, config.ConfigFileName)); err != nil {
				return err
			}

			success("Created %s", config.ConfigFileName)
			info("Backend: %s", cfg.BaseURL)
			info("Storage: %s", cfg.Storage.Driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Backend API base URL")
	cmd.Flags().StringVar(&driver, "storage", "", "Credential storage driver (memory, file, sqlite)")

	return cmd
}
