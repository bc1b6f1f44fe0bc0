package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, time.Second, cfg.Client.PageDelay)
	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 60*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, time.Second, cfg.Batch.ItemDelay)
	assert.Zero(t, cfg.Batch.MaxPages)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Weibo.UserAgent)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WBPRIVACY_COOKIE", "SUB=abc; XSRF-TOKEN=tok")
	t.Setenv("WBPRIVACY_TIMEOUT", "45s")
	t.Setenv("WBPRIVACY_ITEM_DELAY", "2s")
	t.Setenv("WBPRIVACY_MAX_ATTEMPTS", "5")
	t.Setenv("WBPRIVACY_MAX_PAGES", "7")
	t.Setenv("WBPRIVACY_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "SUB=abc; XSRF-TOKEN=tok", cfg.Weibo.Cookie)
	assert.Equal(t, 45*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Batch.ItemDelay)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 7, cfg.Batch.MaxPages)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("WBPRIVACY_TIMEOUT", "not-a-duration")
	t.Setenv("WBPRIVACY_MAX_ATTEMPTS", "-2")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
weibo:
  cookie: "SUB=abc; XSRF-TOKEN=tok"
client:
  timeout: 10s
  page_delay: 500ms
retry:
  enabled: true
  max_attempts: 4
batch:
  item_delay: 3s
  max_pages: 2
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "SUB=abc; XSRF-TOKEN=tok", cfg.Weibo.Cookie)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Client.PageDelay)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Batch.ItemDelay)
	assert.Equal(t, 2, cfg.Batch.MaxPages)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFileMissingIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()

	// Empty path with no default files present just keeps defaults
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(t.TempDir()))

	assert.NoError(t, cfg.LoadFromFile(""))
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weibo: [not: valid"), 0600))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Client.Timeout = 0 }},
		{"negative page delay", func(c *Config) { c.Client.PageDelay = -time.Second }},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"negative base delay", func(c *Config) { c.Retry.BaseDelay = -time.Second }},
		{"negative item delay", func(c *Config) { c.Batch.ItemDelay = -time.Second }},
		{"negative max pages", func(c *Config) { c.Batch.MaxPages = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateJoinsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Client.Timeout = 0
	cfg.Retry.MaxAttempts = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "max attempts")
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"cookie":       "SUB=x; XSRF-TOKEN=y",
		"max-pages":    5,
		"item-delay":   2 * time.Second,
		"max-attempts": 7,
		"output":       "posts.txt",
		"log-level":    "debug",
	})

	assert.Equal(t, "SUB=x; XSRF-TOKEN=y", cfg.Weibo.Cookie)
	assert.Equal(t, 5, cfg.Batch.MaxPages)
	assert.Equal(t, 2*time.Second, cfg.Batch.ItemDelay)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, "posts.txt", cfg.Output.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Batch.MaxPages = 9
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 9, loaded.Batch.MaxPages)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  max_pages: 2\n"), 0600))

	t.Setenv("WBPRIVACY_MAX_PAGES", "4")

	// Flags beat env beats file
	cfg, err := Load(path, map[string]interface{}{"max-pages": 8})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.MaxPages)

	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Batch.MaxPages)
}
