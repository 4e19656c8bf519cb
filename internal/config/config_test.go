package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.Equal(t, 5, c.DefaultMaxLeverage)
	assert.Equal(t, "DEEP", c.RewardSymbol)
	assert.Equal(t, 1024, c.MemoSize)

	q, err := c.MinOrderQuantity()
	require.NoError(t, err)
	assert.Equal(t, "0.01", q.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "5s")
	t.Setenv("DEFAULT_MAX_LEVERAGE", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 5*time.Second, c.CacheTTL)
	assert.Equal(t, 3, c.DefaultMaxLeverage)
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"bad leverage":    {"DEFAULT_MAX_LEVERAGE", "0"},
		"bad min qty":     {"DEFAULT_MIN_ORDER_QUANTITY", "abc"},
		"zero min qty":    {"DEFAULT_MIN_ORDER_QUANTITY", "0"},
		"non-numeric ttl": {"CACHE_TTL", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSlogLevel_UnknownIsInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "verbose"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
}
