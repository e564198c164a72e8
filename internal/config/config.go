// Package config handles loading and managing tgreview configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// APIConfig holds settings for the remote relevance API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`        // Remote API base URL
	TimeoutSeconds int    `toml:"timeout_seconds"` // Per-request timeout (default: 30)
	AllowInsecure  bool   `toml:"allow_insecure"`  // Permit plain http:// URLs
	RateLimitQPS   int    `toml:"rate_limit_qps"`  // Client-side request rate cap (0 = unlimited)
}

// UIConfig holds dashboard behavior settings.
type UIConfig struct {
	PageSize              int `toml:"page_size"`              // Messages fetched per page (default: 24)
	ChannelCacheTTLMinute int `toml:"channel_cache_ttl_mins"` // Channel list cache lifetime
}

// Config represents the tgreview configuration.
type Config struct {
	API APIConfig `toml:"api"`
	UI  UIConfig  `toml:"ui"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// maxPageSize caps page_size to what the backend will serve per request.
const maxPageSize = 100

// DefaultHome returns the default tgreview home directory.
// Respects the TGREVIEW_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("TGREVIEW_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tgreview"
	}
	return filepath.Join(home, ".tgreview")
}

// Load reads the configuration from the specified file. If path is empty,
// the default location (<home>/config.toml) is used. An explicit homeDir
// overrides TGREVIEW_HOME.
func Load(path, homeDir string) (*Config, error) {
	if homeDir == "" {
		homeDir = DefaultHome()
	}

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		// Defaults
		API: APIConfig{
			BaseURL:        "http://localhost:5001",
			TimeoutSeconds: 30,
			AllowInsecure:  true,
		},
		UI: UIConfig{
			PageSize:              24,
			ChannelCacheTTLMinute: 5,
		},
	}

	// Config file is optional - use defaults if not present
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.UI.PageSize <= 0 {
		cfg.UI.PageSize = 24
	}
	if cfg.UI.PageSize > maxPageSize {
		cfg.UI.PageSize = maxPageSize
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}

	return cfg, nil
}

// EnsureHomeDir creates the home directory if it does not exist.
func (c *Config) EnsureHomeDir() error {
	return os.MkdirAll(c.HomeDir, 0o700)
}

// ConfigFilePath returns the path of the config file for this home directory.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.HomeDir, "config.toml")
}

// TokenPath returns the path of the persisted session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.HomeDir, "token")
}
