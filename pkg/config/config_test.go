package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverConfig struct {
	Port    int      `env:"TEST_CFG_PORT" envDefault:"8010"`
	Backend string   `env:"TEST_CFG_BACKEND" envDefault:"redis"`
	Debug   bool     `env:"TEST_CFG_DEBUG"`
	Brokers []string `env:"TEST_CFG_BROKERS" envSeparator:","`
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg serverConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, serverConfig{Port: 8010, Backend: "redis"}, cfg)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("TEST_CFG_PORT", "9090")
		t.Setenv("TEST_CFG_BACKEND", "memory")
		t.Setenv("TEST_CFG_DEBUG", "true")
		t.Setenv("TEST_CFG_BROKERS", "a:9092,b:9092")

		var cfg serverConfig
		require.NoError(t, Load(&cfg))
		assert.Equal(t, serverConfig{Port: 9090, Backend: "memory", Debug: true, Brokers: []string{"a:9092", "b:9092"}}, cfg)
	})

	t.Run("bad value", func(t *testing.T) {
		t.Setenv("TEST_CFG_PORT", "eighty")

		var cfg serverConfig
		err := Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Required(t *testing.T) {
	var cfg struct {
		Phone string `env:"TEST_CFG_PHONE,required"`
	}
	require.ErrorContains(t, Load(&cfg), "parse config")

	t.Setenv("TEST_CFG_PHONE", "5491100000000")
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "5491100000000", cfg.Phone)
}

func TestLoadWithDotEnv(t *testing.T) {
	t.Run("missing file skipped", func(t *testing.T) {
		var cfg serverConfig
		require.NoError(t, LoadWithDotEnv(&cfg, filepath.Join(t.TempDir(), "absent.env"), ""))
		assert.Equal(t, 8010, cfg.Port)
	})

	t.Run("file values without touching the process environment", func(t *testing.T) {
		path := writeDotEnv(t, "TEST_CFG_BACKEND=memory\n")

		var cfg serverConfig
		require.NoError(t, LoadWithDotEnv(&cfg, path))
		assert.Equal(t, "memory", cfg.Backend)
		_, set := os.LookupEnv("TEST_CFG_BACKEND")
		assert.False(t, set)
	})

	t.Run("environment wins", func(t *testing.T) {
		path := writeDotEnv(t, "TEST_CFG_PORT=7070\n")
		t.Setenv("TEST_CFG_PORT", "9191")

		var cfg serverConfig
		require.NoError(t, LoadWithDotEnv(&cfg, path))
		assert.Equal(t, 9191, cfg.Port)
	})

	t.Run("earlier file wins", func(t *testing.T) {
		first := writeDotEnv(t, "TEST_CFG_PORT=7001\n")
		second := writeDotEnv(t, "TEST_CFG_PORT=7002\nTEST_CFG_DEBUG=true\n")

		var cfg serverConfig
		require.NoError(t, LoadWithDotEnv(&cfg, first, second))
		assert.Equal(t, 7001, cfg.Port)
		assert.True(t, cfg.Debug)
	})
}
