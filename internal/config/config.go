// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds every environment-driven setting of the margin engine.
type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	RedisURL    string        `envconfig:"REDIS_URL"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`

	DefaultMaxLeverage      int    `envconfig:"DEFAULT_MAX_LEVERAGE" default:"5"`
	DefaultMinOrderQuantity string `envconfig:"DEFAULT_MIN_ORDER_QUANTITY" default:"0.01"`
	RewardSymbol            string `envconfig:"REWARD_SYMBOL" default:"DEEP"`
	MemoSize                int    `envconfig:"MEMO_SIZE" default:"1024"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if _, err := c.MinOrderQuantity(); err != nil {
		return Config{}, err
	}
	if c.DefaultMaxLeverage < 1 {
		return Config{}, fmt.Errorf("config: DEFAULT_MAX_LEVERAGE must be at least 1, got %d", c.DefaultMaxLeverage)
	}
	return c, nil
}

// MinOrderQuantity parses DefaultMinOrderQuantity.
func (c Config) MinOrderQuantity() (decimal.Decimal, error) {
	q, err := decimal.NewFromString(c.DefaultMinOrderQuantity)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: DEFAULT_MIN_ORDER_QUANTITY: %w", err)
	}
	if !q.IsPositive() {
		return decimal.Zero, fmt.Errorf("config: DEFAULT_MIN_ORDER_QUANTITY must be positive, got %s", q)
	}
	return q, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
