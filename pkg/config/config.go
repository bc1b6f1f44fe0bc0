package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the visibility tool
type Config struct {
	// Weibo credentials
	Weibo WeiboConfig `yaml:"weibo" json:"weibo"`

	// Client settings (timeouts, pacing)
	Client ClientConfig `yaml:"client" json:"client"`

	// Retry behaviour shared by the list and mutation paths
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Batch processing settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// WeiboConfig holds credential configuration
type WeiboConfig struct {
	// Cookie is the raw browser cookie blob, replayed verbatim on every request
	Cookie     string `yaml:"cookie" json:"cookie"`
	CookieFile string `yaml:"cookie_file" json:"cookie_file"`
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
}

// ClientConfig holds HTTP client settings
type ClientConfig struct {
	// Timeout is the per-attempt socket timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// PageDelay is the fixed pause between page fetches
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// BatchConfig holds batch processing configuration
type BatchConfig struct {
	// ItemDelay is the pause after each visibility mutation
	ItemDelay time.Duration `yaml:"item_delay" json:"item_delay"`
	// MaxPages caps pagination; 0 means unbounded
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	File string `yaml:"file" json:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Weibo: WeiboConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Client: ClientConfig{
			Timeout:   30 * time.Second,
			PageDelay: time.Second,
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    60 * time.Second,
		},
		Batch: BatchConfig{
			ItemDelay: time.Second,
			MaxPages:  0,
		},
		Output: OutputConfig{},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if cookie := os.Getenv("WBPRIVACY_COOKIE"); cookie != "" {
		c.Weibo.Cookie = cookie
	}
	if cookieFile := os.Getenv("WBPRIVACY_COOKIE_FILE"); cookieFile != "" {
		c.Weibo.CookieFile = cookieFile
	}
	if userAgent := os.Getenv("WBPRIVACY_USER_AGENT"); userAgent != "" {
		c.Weibo.UserAgent = userAgent
	}
	if timeout := os.Getenv("WBPRIVACY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Client.Timeout = d
		}
	}
	if delay := os.Getenv("WBPRIVACY_ITEM_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Batch.ItemDelay = d
		}
	}
	if attempts := os.Getenv("WBPRIVACY_MAX_ATTEMPTS"); attempts != "" {
		if val, err := strconv.Atoi(attempts); err == nil && val > 0 {
			c.Retry.MaxAttempts = val
		}
	}
	if pages := os.Getenv("WBPRIVACY_MAX_PAGES"); pages != "" {
		if val, err := strconv.Atoi(pages); err == nil && val >= 0 {
			c.Batch.MaxPages = val
		}
	}
	if logLevel := os.Getenv("WBPRIVACY_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".wbprivacy.yaml",
		".wbprivacy.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "wbprivacy", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "wbprivacy", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".wbprivacy.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Client.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Client.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.Retry.BaseDelay < 0 {
		errs = append(errs, errors.New("retry base delay cannot be negative"))
	}
	if c.Batch.ItemDelay < 0 {
		errs = append(errs, errors.New("item delay cannot be negative"))
	}
	if c.Batch.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if cookie, ok := flags["cookie"].(string); ok && cookie != "" {
		c.Weibo.Cookie = cookie
	}
	if cookieFile, ok := flags["cookie-file"].(string); ok && cookieFile != "" {
		c.Weibo.CookieFile = cookieFile
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages > 0 {
		c.Batch.MaxPages = maxPages
	}
	if delay, ok := flags["item-delay"].(time.Duration); ok && delay >= 0 {
		c.Batch.ItemDelay = delay
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		c.Retry.MaxAttempts = attempts
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.File = output
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wbprivacy.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
