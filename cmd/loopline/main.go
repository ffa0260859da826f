package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loopline-dev/loopline/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┌─┐┌─┐┌─┐┬  ┬┌┐┌┌─┐
  ║  │ ││ │├─┘│  ││││├┤
  ╩═╝└─┘└─┘┴  ┴─┘┴┘└┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "loopline",
		Short: "Session-aware client for the Loopline todo backend",
		Long: `Loopline is a command-line client for the Loopline todo service.

It keeps a persistent login session across invocations: tokens are
stored locally, attached to every request, and cleared the moment the
backend rejects them.

  • login / register / logout with persistent credentials
  • task management against any Loopline backend
  • a local stub backend for development ('loopline dev')`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		meCmd(),
		tasksCmd(),
		devCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the Loopline ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
