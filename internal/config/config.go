package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const minJWTSecretLength = 32

// LockoutConfig controls login lockout after repeated failures.
type LockoutConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Duration    time.Duration `yaml:"duration"`
}

// RateLimitConfig controls the per-client token bucket on auth endpoints.
type RateLimitConfig struct {
	// Rate is tokens added per second.
	Rate     float64 `yaml:"rate"`
	Capacity float64 `yaml:"capacity"`
}

// Config is the top-level application configuration.
type Config struct {
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
	JWTSecret    string `yaml:"jwt_secret"`
	// CookieSecure marks the auth cookie Secure. Disable only for local development.
	CookieSecure bool `yaml:"cookie_secure"`
	BcryptCost   int  `yaml:"bcrypt_cost"`

	// Timezone is the IANA zone event dates and times are interpreted in.
	// Empty means the process local zone.
	Timezone string `yaml:"timezone"`
	LogLevel string `yaml:"log_level"`

	// DispatchSchedule is the cron spec for sweeping due reminders.
	DispatchSchedule   string          `yaml:"dispatch_schedule"`
	NotificationBuffer int             `yaml:"notification_buffer"`
	Lockout            LockoutConfig   `yaml:"lockout"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:               "8080",
		DatabasePath:       "event-tracker.db",
		CookieSecure:       true,
		BcryptCost:         12,
		LogLevel:           "info",
		DispatchSchedule:   "@every 15s",
		NotificationBuffer: 16,
		Lockout: LockoutConfig{
			MaxAttempts: 5,
			Duration:    time.Minute,
		},
		RateLimit: RateLimitConfig{
			Rate:     0.2,
			Capacity: 10,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_PATH", &c.DatabasePath)
	str("JWT_SECRET", &c.JWTSecret)
	str("TIMEZONE", &c.Timezone)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		c.CookieSecure = v != "false"
	}
	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.BcryptCost = cost
	}
	return nil
}

// Validate reports the first setting that would prevent the server from
// running safely.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minJWTSecretLength)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.DispatchSchedule); err != nil {
		return fmt.Errorf("invalid dispatch schedule %q: %w", c.DispatchSchedule, err)
	}
	if c.Lockout.MaxAttempts < 1 || c.Lockout.Duration <= 0 {
		return errors.New("lockout max attempts and duration must be positive")
	}
	if c.RateLimit.Rate < 0 || c.RateLimit.Capacity < 1 {
		return errors.New("rate limit capacity must be at least 1 and rate must not be negative")
	}
	if c.NotificationBuffer < 1 {
		return errors.New("notification buffer must be positive")
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
