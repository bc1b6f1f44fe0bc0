package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wbprivacy/pkg/config"
	"wbprivacy/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage wbprivacy configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (WBPRIVACY_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.wbprivacy.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The session cookie is masked for security.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.`,
	Run:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# wbprivacy configuration file
#
# All settings can also be provided via environment variables prefixed
# with WBPRIVACY_, for example: WBPRIVACY_COOKIE, WBPRIVACY_MAX_PAGES

# Weibo session
weibo:
  # Raw Cookie header from a logged-in browser session.
  # Prefer 'wbprivacy auth login' over putting the cookie here.
  cookie: ""

  # Alternatively, a file containing the cookie
  cookie_file: ""

  # Browser User-Agent to present (optional)
  user_agent: ""

# HTTP client settings
client:
  # Per-request timeout
  timeout: 30s

  # Pause between page fetches while listing
  page_delay: 1s

# Retry behaviour
retry:
  enabled: true

  # Attempts per request; the wait doubles after each failure (1s, 2s, ...)
  max_attempts: 3
  base_delay: 1s
  max_delay: 60s

# Batch processing
batch:
  # Pause between post updates
  item_delay: 1s

  # Page ceiling for listings; 0 means every page
  max_pages: 0

# Output file for the list command (optional)
output:
  file: ""

# Logging
logging:
  # debug, info, warn, error
  level: "info"

  # Log file path; empty logs to stderr only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".wbprivacy.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'wbprivacy auth login' to store your session")
	fmt.Println("2. Run 'wbprivacy config validate' to check the configuration")
	fmt.Println("3. Preview a batch with 'wbprivacy hide <uid> --dry-run'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	if displayCfg.Weibo.Cookie != "" {
		if len(displayCfg.Weibo.Cookie) > 8 {
			displayCfg.Weibo.Cookie = displayCfg.Weibo.Cookie[:4] + "..." + displayCfg.Weibo.Cookie[len(displayCfg.Weibo.Cookie)-4:]
		} else {
			displayCfg.Weibo.Cookie = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (WBPRIVACY_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (default locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".wbprivacy.yaml",
			".wbprivacy.yml",
			filepath.Join(os.Getenv("HOME"), ".wbprivacy.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "wbprivacy", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string

	if cfg.Weibo.Cookie == "" && cfg.Weibo.CookieFile == "" {
		warnings = append(warnings, "no cookie configured; a stored session or WBPRIVACY_COOKIE will be needed")
	}
	if cfg.Weibo.CookieFile != "" {
		if _, err := os.Stat(cfg.Weibo.CookieFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("cookie file not readable: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Cannot create log directory", err.Error())
			os.Exit(1)
		}
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Request timeout: %s\n", cfg.Client.Timeout)
	fmt.Printf("  Page delay: %s\n", cfg.Client.PageDelay)
	fmt.Printf("  Item delay: %s\n", cfg.Batch.ItemDelay)
	fmt.Printf("  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Max pages: %d\n", cfg.Batch.MaxPages)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
