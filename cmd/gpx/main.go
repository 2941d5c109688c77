package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// CLI flags
	configFlag string
	debugFlag  bool
	widthFlag  int
	addrFlag   string
	openFlag   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gpx",
		Short: "Browse and edit GitHub Projects v2 items",
		Long: `gpx serves a small web interface for GitHub Projects v2 and offers
the same read paths as terminal commands.

Configuration comes from environment variables, optionally overlaid by a
config file (--config):
  GITHUB_CLIENT_ID, GITHUB_CLIENT_SECRET  OAuth app used by 'serve'
  SESSION_SECRET_KEY                      signs session cookies
  GITHUB_TOKEN                            token for the terminal commands
  GITHUB_TIMEOUT                          bound on every GitHub call (e.g. 10s)
  GITHUB_RATE_LIMIT                       outbound requests per hour
  SESSION_IDLE_TIMEOUT                    drop sessions unused this long (default 168h)`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web interface",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from GPX_ADDR or :8000)")
	serveCmd.Flags().BoolVar(&openFlag, "open", false, "Open the interface in your default browser")

	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE:  runProjects,
	}

	itemsCmd := &cobra.Command{
		Use:   "items <project-number>",
		Short: "Show a project's items and their field values",
		Args:  cobra.ExactArgs(1),
		RunE:  runItems,
	}

	columnsCmd := &cobra.Command{
		Use:   "columns <classic-project-id>",
		Short: "Show the columns and cards of a classic project",
		Args:  cobra.ExactArgs(1),
		RunE:  runColumns,
	}

	for _, cmd := range []*cobra.Command{projectsCmd, itemsCmd, columnsCmd} {
		cmd.Flags().IntVar(&widthFlag, "width", 0, "Wrap output at this many columns")
	}

	rootCmd.AddCommand(serveCmd, projectsCmd, itemsCmd, columnsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
