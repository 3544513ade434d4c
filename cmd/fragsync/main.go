package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fragsync-dev/fragsync/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬─┐┌─┐┌─┐┌─┐┬ ┬┌┐┌┌─┐
  ├┤ ├┬┘├─┤│ ┬└─┐└┬┘││││
  ┴  ┴└─┴ ┴└─┘└─┘ ┴ ┘└┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "fragsync",
		Short: "Cross-fragment state synchronization for micro-frontend dashboards",
		Long: `fragsync keeps independently deployed dashboard fragments in sync.

It runs the shared event bus, the canonical state store, and the
synchronization service between them, and serves the dashboard over
HTTP. Features include:

  • Typed pub/sub channels for cart, user, navigation, and orders
  • One canonical state snapshot with derived aggregates
  • Automatic full-state resync when a fragment attaches late
  • Pluggable snapshot persistence (memory, disk, SQLite, S3)
  • Live bus inspector over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		demoCmd(),
		snapshotCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
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
