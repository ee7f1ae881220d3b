// Package config provides application configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jonathan/careerflow/internal/store"
)

// SettingDatabaseURL is the local-store settings key holding a remote
// database URL entered through the settings surface. The environment
// variable takes precedence when both are set.
const SettingDatabaseURL = "careerflow_db_url"

// Config holds the application configuration.
type Config struct {
	// APIKey is the generative-language provider credential. Required:
	// its absence is a fatal configuration error surfaced before anything
	// else starts.
	APIKey string

	// DatabaseURL is the remote store connection string from the
	// environment. Empty means "check the settings store, else run
	// local-only".
	DatabaseURL string

	// DataDir is where local collection files live.
	DataDir string

	// Port is the HTTP listen port.
	Port int

	// UseBrowser enables headless-browser rendering for job-posting URLs
	// that plain HTTP cannot read.
	UseBrowser bool
}

// ConfigError indicates a fatal configuration problem. Nothing renders
// until it is fixed.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
}

// Load reads configuration from the environment. The provider API key is
// the only hard requirement.
func Load() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, &ConfigError{
			Key:     "GEMINI_API_KEY",
			Message: "environment variable is required",
		}
	}

	dataDir := os.Getenv("CAREERFLOW_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".careerflow")
	}

	return &Config{
		APIKey:      apiKey,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DataDir:     dataDir,
		Port:        getEnvInt("PORT", 8080),
		UseBrowser:  getEnvBool("CAREERFLOW_USE_BROWSER", false),
	}, nil
}

// ResolveDatabaseURL returns the effective remote store URL: the
// environment wins, then the settings store, then "" (local-only).
func (c *Config) ResolveDatabaseURL(local *store.Local) string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return local.GetSetting(SettingDatabaseURL)
}

// FromEnv reports whether the remote store URL came from the environment,
// in which case the settings surface must not override it.
func (c *Config) FromEnv() bool {
	return c.DatabaseURL != ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
