package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"wbprivacy/pkg/ui"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wbprivacy",
	Short: "Batch visibility management for Weibo posts",
	Long: `wbprivacy changes the visibility of Weibo posts in bulk through the
same web API the browser uses.

Features:
  - Set every post of an account to public, friends-only, private, or fans-only
  - Secure session storage using the system keychain
  - Automatic retry with exponential backoff
  - Resume interrupted batches from a checkpoint
  - Dry-run mode to preview what would change

Authentication uses the browser session cookie; run 'wbprivacy auth login'
to store one securely.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuiet(true)
			logLevel = "error"
		}
		if verbose && logLevel == "info" {
			logLevel = "debug"
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .wbprivacy.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.SetVersionTemplate(`wbprivacy {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
