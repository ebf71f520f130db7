package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-t", "3s", "-l", "debug",
				"-s", "postgres", "-d", "db", "-q", "file.db", "-r", "redis:6379", "-w", "pw", "-n", "2",
				"-i", "s3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-m", "3", "-z", "1024",
			},
			expected: &Config{
				EndpointAddrHTTP: "127.0.0.1:9090",
				ShutdownTimeout:  3 * time.Second,
				LogLevel:         "debug",
				StorageBackend:   "postgres",
				DatabaseDSN:      "db",
				SQLitePath:       "file.db",
				RedisAddr:        "redis:6379",
				RedisPassword:    "pw",
				RedisDB:          2,
				ImageStorage:     "s3",
				S3RootUser:       "user",
				S3RootPassword:   "password",
				S3Bucket:         "bucket",
				S3Region:         "us-west-1",
				S3BaseEndpoint:   "http://endpoint",
				MaxImages:        3,
				MaxImageSize:     1024,
			},
		},
		{
			name:     "config flag is ignored",
			args:     []string{"-c", "conf.json", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"},
		},
		{
			name:      "bad int",
			args:      []string{"-m", "many"},
			expectErr: true,
		},
		{
			name:      "bad duration",
			args:      []string{"-t", "forever"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
