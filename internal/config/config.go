package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// Defaults for the TMDb v3 API and its image host.
const (
	DefaultAPIURL    = "https://api.themoviedb.org/3"
	DefaultImageURL  = "https://image.tmdb.org/t/p"
	DefaultLanguage  = "en-US"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 40
)

// Config represents the main application configuration
type Config struct {
	// Catalog API and image host
	TMDb TMDbConfig `yaml:"tmdb"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds catalog API configuration
type TMDbConfig struct {
	APIURL    string        `yaml:"api_url"`
	APIKey    string        `yaml:"api_key"`
	ImageURL  string        `yaml:"image_url"`
	Language  string        `yaml:"language,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	RateLimit int           `yaml:"rate_limit,omitempty"` // requests per second, 0 = default, -1 = unlimited
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
	EnvFile  string `yaml:"env_file,omitempty"`
}

// Load builds the configuration. An empty path skips the YAML file; values
// from a .env file and then the process environment override the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadEnvFile(cfg.App.EnvFile); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile populates the environment from a dotenv file. Variables that are
// already set win. A missing default .env is not an error.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// TMDb
	if v := os.Getenv("VIEWPORT_TMDB_API_URL"); v != "" {
		c.TMDb.APIURL = v
	}
	if v := os.Getenv("VIEWPORT_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("VIEWPORT_TMDB_IMAGE_URL"); v != "" {
		c.TMDb.ImageURL = v
	}
	if v := os.Getenv("VIEWPORT_TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}
	if v := os.Getenv("VIEWPORT_TMDB_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TMDb.RateLimit = n
		}
	}

	// Telegram
	if v := os.Getenv("VIEWPORT_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("VIEWPORT_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
}

// Validate validates the configuration and fills in defaults.
// A missing API key is not an error here: catalog requests fail on their own.
func (c *Config) Validate() error {
	if c.TMDb.APIURL == "" {
		c.TMDb.APIURL = DefaultAPIURL
	}
	if err := validateURL("tmdb.api_url", c.TMDb.APIURL); err != nil {
		return err
	}
	if c.TMDb.ImageURL == "" {
		c.TMDb.ImageURL = DefaultImageURL
	}
	if err := validateURL("tmdb.image_url", c.TMDb.ImageURL); err != nil {
		return err
	}
	if c.TMDb.Language == "" {
		c.TMDb.Language = DefaultLanguage
	}
	if c.TMDb.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must not be negative")
	}
	if c.TMDb.Timeout == 0 {
		c.TMDb.Timeout = DefaultTimeout
	}
	if c.TMDb.RateLimit < -1 {
		return fmt.Errorf("tmdb.rate_limit must be -1 (unlimited) or a positive number")
	}
	if c.TMDb.RateLimit == 0 {
		c.TMDb.RateLimit = DefaultRateLimit
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is configured")
	}

	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error")
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
