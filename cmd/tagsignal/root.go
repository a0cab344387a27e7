package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tagsignal",
	Short: "Collect topic-tag feed records and distill them into a signal",
	Long: `tagsignal drives authenticated browser sessions over a platform's
live results feeds, one per topic tag, and turns the visible posts into
deduplicated records.

Features:
  - Secure credential storage using the system keychain
  - Concurrent per-tag sessions with a bounded pool
  - Rate-limited, randomized paging that tolerates partial pages
  - SQLite persistence with idempotent re-runs
  - TF-IDF signal summary over the collected corpus`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .tagsignal.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
