// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/rezonia/invoice-submit/internal/logger"
)

// Config holds runtime configuration. Command-line flags override it.
type Config struct {
	Addr         string        `envconfig:"SUBMIT_ADDR" default:":8080"`
	Debug        bool          `envconfig:"SUBMIT_DEBUG" default:"false"`
	ReadTimeout  time.Duration `envconfig:"SUBMIT_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SUBMIT_WRITE_TIMEOUT" default:"15s"`

	// RateLimit is requests per minute per client IP, 0 disables limiting
	RateLimit int `envconfig:"SUBMIT_RATE_LIMIT" default:"120"`

	// RedisAddr enables the Redis fiscalization store when set
	RedisAddr      string        `envconfig:"SUBMIT_REDIS_ADDR"`
	FiscalComboTTL time.Duration `envconfig:"SUBMIT_FISCAL_COMBO_TTL" default:"720h"`

	// RulesFile overrides the embedded jurisdiction rules
	RulesFile string `envconfig:"SUBMIT_RULES_FILE"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	LogOutput string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: SUBMIT_ADDR must not be empty")
	}
	if c.RateLimit < 0 {
		return errors.New("config: SUBMIT_RATE_LIMIT must not be negative")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	return nil
}

// LoggerConfig returns the logger configuration
func (c *Config) LoggerConfig() logger.LogConfig {
	cfg := logger.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	cfg.Output = c.LogOutput
	return cfg
}
