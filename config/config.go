package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the fetch tunables. The defaults preserve the behavior the
// archiver has always shipped with, a config file only needs to list the
// values it wants to change.
type Config struct {
	// MaxAttempts is the total request budget when the API rate limits us.
	MaxAttempts int `toml:"max_attempts"`

	// BackoffSeconds is how long to wait between rate limited attempts.
	BackoffSeconds int `toml:"backoff_seconds"`

	// PageCooldownSeconds is the pause between wall pages.
	PageCooldownSeconds int `toml:"page_cooldown_seconds"`

	// RankCooldownSeconds is the pause after each rank lookup round trip.
	RankCooldownSeconds int `toml:"rank_cooldown_seconds"`

	// TimeoutSeconds bounds each HTTP request. Zero means no timeout, which
	// is what the archiver has always done.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// ArchiveDir is the root of the archive store on disk.
	ArchiveDir string `toml:"archive_dir"`

	// BaseURL overrides the groups API endpoint. Leave empty for production.
	BaseURL string `toml:"base_url"`
}

func Default() *Config {
	return &Config{
		MaxAttempts:         5,
		BackoffSeconds:      120,
		PageCooldownSeconds: 1,
		RankCooldownSeconds: 1,
		TimeoutSeconds:      0,
		ArchiveDir:          "Archives",
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}

func (c *Config) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds) * time.Second
}

func (c *Config) PageCooldown() time.Duration {
	return time.Duration(c.PageCooldownSeconds) * time.Second
}

func (c *Config) RankCooldown() time.Duration {
	return time.Duration(c.RankCooldownSeconds) * time.Second
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
