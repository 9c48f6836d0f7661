package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"givelife/pkg/listing"
	"givelife/pkg/session"
)

// Config is the CLI configuration. Values come from an optional
// givelife.yaml, then GIVELIFE_* environment variables, then flags.
type Config struct {
	APIBaseURL           string        `mapstructure:"api_base_url"`
	APITimeout           time.Duration `mapstructure:"api_timeout"`
	APIRetryCount        int           `mapstructure:"api_retry_count"`
	SessionFile          string        `mapstructure:"session_file"`
	LogLevel             string        `mapstructure:"log_level"`
	PageSize             int           `mapstructure:"page_size"`
	AggregateConcurrency int           `mapstructure:"aggregate_concurrency"`
}

// LoadConfig reads path when given; otherwise givelife.yaml is looked up in
// the working directory and the user config directory, and a missing file
// is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_timeout", "10s")
	v.SetDefault("api_retry_count", 0)
	v.SetDefault("session_file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("page_size", listing.DefaultPageSize)
	v.SetDefault("aggregate_concurrency", 5)
	v.SetEnvPrefix("GIVELIFE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("givelife")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "givelife"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.SessionFile == "" {
		p, err := session.DefaultSessionPath()
		if err != nil {
			return Config{}, err
		}
		cfg.SessionFile = p
	}
	return cfg, nil
}

// Validate checks the settings needed to talk to the API.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return errors.New("config: api_base_url is required (set in givelife.yaml, GIVELIFE_API_BASE_URL or -api)")
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api_base_url %q is not an absolute url", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return errors.New("config: api_timeout must be positive")
	}
	if c.APIRetryCount < 0 {
		return errors.New("config: api_retry_count must be >= 0")
	}
	if c.SessionFile == "" {
		return errors.New("config: session_file is required")
	}
	return nil
}
