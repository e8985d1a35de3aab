package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	NeoBaseURL     string `mapstructure:"neo_base_url"`
	NeoAPIKey      string `mapstructure:"neo_api_key"`
	NeoUserAgent   string `mapstructure:"neo_user_agent"`
	FetchTimeoutMs int64  `mapstructure:"fetch_timeout_ms"`
	MinIntervalMs  int64  `mapstructure:"neo_min_interval_ms"`
	WindowDays     int    `mapstructure:"window_days"`
	MaxRows        int    `mapstructure:"max_rows"`
	DisplayLocale  string `mapstructure:"display_locale"`

	PrefsType        string `mapstructure:"prefs_type"`
	PrefsPath        string `mapstructure:"prefs_path"`
	PublishersFile   string `mapstructure:"publishers_file"`
	PublishTimeoutMs int64  `mapstructure:"publish_timeout_ms"`

	FetchTimeout   time.Duration `mapstructure:"-"`
	MinInterval    time.Duration `mapstructure:"-"`
	PublishTimeout time.Duration `mapstructure:"-"`
}

const (
	// The feed rejects ranges longer than seven days, so ±3 is the widest window.
	maxWindowDays = 3
	maxRowsCap    = 50

	defaultPublishTimeoutMs = 5000
)

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "neowatch")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("neo_base_url", "https://api.nasa.gov/neo/rest/v1")
	v.SetDefault("neo_api_key", "DEMO_KEY")
	v.SetDefault("neo_user_agent", "neowatch/1.0")
	v.SetDefault("fetch_timeout_ms", 10000)
	v.SetDefault("neo_min_interval_ms", 0)
	v.SetDefault("window_days", 2)
	v.SetDefault("max_rows", maxRowsCap)
	v.SetDefault("display_locale", "en-US")
	v.SetDefault("prefs_type", "bbolt")
	v.SetDefault("prefs_path", "./data/prefs.db")
	v.SetDefault("publishers_file", "")
	v.SetDefault("publish_timeout_ms", defaultPublishTimeoutMs)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Redacted returns a copy safe to log, with the API key masked.
func (c Config) Redacted() Config {
	if c.NeoAPIKey != "" {
		c.NeoAPIKey = "***"
	}
	return c
}

// finalize validates raw values and derives durations.
func (c *Config) finalize() error {
	c.NeoBaseURL = strings.TrimRight(strings.TrimSpace(c.NeoBaseURL), "/")
	if c.NeoBaseURL == "" {
		return fmt.Errorf("neo_base_url must not be empty")
	}
	if strings.TrimSpace(c.NeoAPIKey) == "" {
		return fmt.Errorf("neo_api_key must not be empty")
	}

	if c.FetchTimeoutMs <= 0 {
		return fmt.Errorf("invalid fetch_timeout_ms (must be positive milliseconds)")
	}
	c.FetchTimeout = time.Duration(c.FetchTimeoutMs) * time.Millisecond

	if c.MinIntervalMs < 0 {
		return fmt.Errorf("invalid neo_min_interval_ms (must be zero or positive)")
	}
	c.MinInterval = time.Duration(c.MinIntervalMs) * time.Millisecond

	switch {
	case c.PublishTimeoutMs < 0:
		return fmt.Errorf("invalid publish_timeout_ms (must be zero or positive)")
	case c.PublishTimeoutMs == 0:
		c.PublishTimeoutMs = defaultPublishTimeoutMs
	}
	c.PublishTimeout = time.Duration(c.PublishTimeoutMs) * time.Millisecond

	if c.WindowDays < 0 || c.WindowDays > maxWindowDays {
		return fmt.Errorf("invalid window_days %d (must be between 0 and %d)", c.WindowDays, maxWindowDays)
	}
	if c.MaxRows < 1 || c.MaxRows > maxRowsCap {
		return fmt.Errorf("invalid max_rows %d (must be between 1 and %d)", c.MaxRows, maxRowsCap)
	}

	if _, err := language.Parse(c.DisplayLocale); err != nil {
		return fmt.Errorf("invalid display_locale %q: %w", c.DisplayLocale, err)
	}
	return nil
}
