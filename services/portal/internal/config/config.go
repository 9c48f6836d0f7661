package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the portal config file.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                       string   `yaml:"port"`
	LogLevel                   string   `yaml:"logLevel"`
	APIBaseURL                 string   `yaml:"apiBaseURL"`
	APITimeout                 string   `yaml:"apiTimeout"`
	APIRetryCount              int      `yaml:"apiRetryCount"`
	RedisAddr                  string   `yaml:"redisAddr"`
	RedisPassword              string   `yaml:"redisPassword"`
	SessionCookieName          string   `yaml:"sessionCookieName"`
	SessionCookieSecure        bool     `yaml:"sessionCookieSecure"`
	SessionCookieSameSite      string   `yaml:"sessionCookieSameSite"`
	SessionTTL                 string   `yaml:"sessionTTL"`
	AllowedOrigins             []string `yaml:"allowedOrigins"`
	TrustedProxyCIDRs          []string `yaml:"trustedProxyCidrs"`
	LoginRateLimitPerMinute    int      `yaml:"loginRateLimitPerMinute"`
	RegisterRateLimitPerMinute int      `yaml:"registerRateLimitPerMinute"`
	AggregateConcurrency       int      `yaml:"aggregateConcurrency"`
	DefaultPageSize            int      `yaml:"defaultPageSize"`
}

// Load reads config from path (defaults to config.yaml) and applies
// GIVELIFE_* environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	envString("GIVELIFE_PORT", &cfg.Port)
	envString("GIVELIFE_LOG_LEVEL", &cfg.LogLevel)
	envString("GIVELIFE_API_BASE_URL", &cfg.APIBaseURL)
	envString("GIVELIFE_API_TIMEOUT", &cfg.APITimeout)
	envInt("GIVELIFE_API_RETRY_COUNT", &cfg.APIRetryCount)
	envString("REDIS_ADDR", &cfg.RedisAddr)
	envString("REDIS_PASSWORD", &cfg.RedisPassword)
	envString("GIVELIFE_SESSION_COOKIE_NAME", &cfg.SessionCookieName)
	envString("GIVELIFE_SESSION_COOKIE_SAME_SITE", &cfg.SessionCookieSameSite)
	envString("GIVELIFE_SESSION_TTL", &cfg.SessionTTL)
	if v := os.Getenv("GIVELIFE_SESSION_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.SessionCookieSecure = b
		}
	}
	if v := os.Getenv("GIVELIFE_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("GIVELIFE_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	envInt("GIVELIFE_LOGIN_RATE_LIMIT_PER_MINUTE", &cfg.LoginRateLimitPerMinute)
	envInt("GIVELIFE_REGISTER_RATE_LIMIT_PER_MINUTE", &cfg.RegisterRateLimitPerMinute)
	envInt("GIVELIFE_AGGREGATE_CONCURRENCY", &cfg.AggregateConcurrency)
	envInt("GIVELIFE_DEFAULT_PAGE_SIZE", &cfg.DefaultPageSize)
}

func applyDefaults(cfg *FileConfig) {
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "givelife_session"
	}
	if cfg.SessionTTL == "" {
		cfg.SessionTTL = "24h"
	}
	if cfg.APITimeout == "" {
		cfg.APITimeout = "10s"
	}
	if cfg.LoginRateLimitPerMinute == 0 {
		cfg.LoginRateLimitPerMinute = 10
	}
	if cfg.RegisterRateLimitPerMinute == 0 {
		cfg.RegisterRateLimitPerMinute = 5
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or GIVELIFE_PORT)")
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or GIVELIFE_API_BASE_URL)")
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: apiBaseURL %q is not an absolute url", cfg.APIBaseURL)
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for sessions and rate limiting")
	}
	if _, err := ParseDuration("apiTimeout", cfg.APITimeout); err != nil {
		return err
	}
	if _, err := ParseDuration("sessionTTL", cfg.SessionTTL); err != nil {
		return err
	}
	if _, err := ParseSameSite(cfg.SessionCookieSameSite); err != nil {
		return err
	}
	if cfg.APIRetryCount < 0 {
		return errors.New("config: apiRetryCount must be >= 0")
	}
	if cfg.LoginRateLimitPerMinute < 0 || cfg.RegisterRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.AggregateConcurrency < 0 {
		return errors.New("config: aggregateConcurrency must be >= 0")
	}
	return nil
}

// ParseDuration parses a positive duration setting.
func ParseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s duration: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", name)
	}
	return d, nil
}

// ParseSameSite maps lax, strict and none; empty means lax.
func ParseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("config: unknown sessionCookieSameSite %q", value)
	}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
