// Package main provides the movierec CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sadana31/movieAPI/internal/config"
	"github.com/Sadana31/movieAPI/internal/observability"
)

var version = "0.1.0"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool
	serverURL  string

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// newRootCmd builds the command tree. Tests build a fresh tree per run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "movierec",
		Short: "Content-based movie recommender: build artifacts and query them",
		Long: `movierec builds and queries the artifacts behind the movie recommender API.

Use this tool to:
- Build the catalog and similarity matrix from the TMDB 5000 CSVs
- Download prebuilt artifacts
- Search titles, get recommendations and filter by attribute
- Inspect an artifact set

Query commands read local artifacts, or a running API when --server is set.
All commands support --json for automation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logFormat := "console"
			if outputJSON {
				logFormat = "json"
			}
			level := cfg.Observability.LogLevel
			if verbose {
				level = "debug"
			} else if level == "info" {
				level = "warn"
			}

			logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      logFormat,
				Output:      cmd.ErrOrStderr(),
				ServiceName: "movierec-cli",
			})

			return nil
		},
	}

	// Global flags
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "query a running API at this base URL instead of local artifacts")

	// Add subcommands
	root.AddCommand(newBuildCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newRecommendCmd())
	root.AddCommand(newFilterCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newUI returns a UI bound to the command's output streams.
func newUI(cmd *cobra.Command) *UI {
	return NewUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputJSON, noColor)
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "movierec %s\n", version)
			return nil
		},
	}
}
