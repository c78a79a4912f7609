// Package config loads service configuration from an optional YAML file
// merged over built-in defaults, with environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modurecruit/snspick/internal/browser"
	"github.com/modurecruit/snspick/internal/content"
	"github.com/modurecruit/snspick/internal/mailer"
	"github.com/modurecruit/snspick/internal/scheduler"
	"github.com/modurecruit/snspick/internal/scrape"
	"github.com/modurecruit/snspick/internal/sheets"
	"github.com/modurecruit/snspick/internal/verify"
)

// Config is the root of the YAML file.
type Config struct {
	Listen   string `yaml:"listen"`
	Database string `yaml:"database"`
	LogLevel string `yaml:"log_level"`

	Criteria  verify.Criteria    `yaml:"criteria"`
	Fetch     Fetch              `yaml:"fetch"`
	Verify    Verify             `yaml:"verify"`
	Browser   browser.Config     `yaml:"browser"`
	Scheduler scheduler.Config   `yaml:"scheduler"`
	Sheets    Sheets             `yaml:"sheets"`
	Content   content.Config     `yaml:"content"`
	Mail      mailer.Config      `yaml:"mail"`
	Sheet     sheets.SheetConfig `yaml:"sheet"`
}

// Fetch configures the profile-page fetcher.
type Fetch struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// Verify configures the verification pipeline.
type Verify struct {
	Attempts int `yaml:"attempts"`
	// BaseDelay between scrape attempts; scaled by DelayFactor.
	BaseDelay time.Duration `yaml:"base_delay"`
	// DelayFactor scales BaseDelay per platform key (naver_blog,
	// instagram, threads).
	DelayFactor map[string]float64 `yaml:"delay_factor"`
	// CacheTTL is how long a stored verification stays fresh for the
	// batch path.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Sheets configures the Sheets API client.
type Sheets struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Database == "" {
		c.Database = "data/snspick.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Criteria = c.Criteria.Merge(verify.DefaultCriteria())
	if c.Verify.CacheTTL <= 0 {
		c.Verify.CacheTTL = 6 * time.Hour
	}
}

// DelayFactorMap converts the YAML platform keys to scrape.Platform,
// dropping unknown ones.
func (v Verify) DelayFactorMap() map[scrape.Platform]float64 {
	if len(v.DelayFactor) == 0 {
		return nil
	}
	out := make(map[scrape.Platform]float64, len(v.DelayFactor))
	for k, f := range v.DelayFactor {
		p := scrape.Platform(k)
		switch p {
		case scrape.NaverBlog, scrape.Instagram, scrape.Threads:
			out[p] = f
		}
	}
	return out
}

// Load reads path (if non-empty) and applies env overrides. A missing
// file with an empty path is fine; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.env()
	cfg.defaults()
	return &cfg, nil
}

// env applies environment overrides. Secrets only arrive this way, never
// from the YAML file.
func (c *Config) env() {
	if v := os.Getenv("SNSPICK_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("SNSPICK_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Content.APIKey = v
	}
	if v := os.Getenv("SHEETS_SERVICE_TOKEN"); v != "" {
		c.Scheduler.ServiceToken = v
	}
	if v := os.Getenv("BROWSER_REMOTE_URL"); v != "" {
		c.Browser.RemoteURL = v
		c.Browser.Enabled = true
	}
}
