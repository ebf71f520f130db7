package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, StorageSQLite, c.StorageBackend)
	assert.Equal(t, "data/gpas.db", c.SQLitePath)
	assert.Equal(t, "127.0.0.1:6379", c.RedisAddr)
	assert.Equal(t, ImageStorageInline, c.ImageStorage)
	assert.Equal(t, "graphpass", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, 5, c.MaxImages)
	assert.Equal(t, int64(5*1024*1024), c.MaxImageSize)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsWithoutArgs(t *testing.T) {
	c, err := LoadConfig(nil)
	require.NoError(t, err)
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	_, err := LoadConfig([]string{"-s", "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage backend "mongo"`)

	_, err = LoadConfig([]string{"-unknown-flag-value=1", "-m", "nope"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errSub string
	}{
		{"bad storage", func(c *Config) { c.StorageBackend = "files" }, "unknown storage backend"},
		{"bad image storage", func(c *Config) { c.ImageStorage = "ftp" }, "unknown image storage"},
		{"zero max images", func(c *Config) { c.MaxImages = 0 }, "max images must be positive"},
		{"negative max size", func(c *Config) { c.MaxImageSize = -1 }, "max image size must be positive"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	c := Config{LogLevel: "debug"}
	l, err := c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	c.LogLevel = "WARN"
	l, err = c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
