package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/graphpass/internal/flagx"
	"github.com/dmitrijs2005/graphpass/internal/timex"
)

// ConfigFileEnv names the environment variable consulted when no -c/-config
// flag is given.
const ConfigFileEnv = "GRAPHPASS_CONFIG"

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// both "10s" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	LogLevel         string         `json:"log_level"`
	StorageBackend   string         `json:"storage_backend"`
	DatabaseDSN      string         `json:"database_dsn"`
	SQLitePath       string         `json:"sqlite_path"`
	RedisAddr        string         `json:"redis_addr"`
	RedisPassword    string         `json:"redis_password"`
	RedisDB          int            `json:"redis_db"`
	ImageStorage     string         `json:"image_storage"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	MaxImages        int            `json:"max_images"`
	MaxImageSize     int64          `json:"max_image_size"`
}

// parseJson loads the file named by -c/-config (or GRAPHPASS_CONFIG) over
// config. Keys missing from the file keep their current values. Without a
// file path it does nothing.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
	config.LogLevel = c.LogLevel
	config.StorageBackend = c.StorageBackend
	config.DatabaseDSN = c.DatabaseDSN
	config.SQLitePath = c.SQLitePath
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.RedisDB = c.RedisDB
	config.ImageStorage = c.ImageStorage
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.MaxImages = c.MaxImages
	config.MaxImageSize = c.MaxImageSize

	return nil
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		ShutdownTimeout:  timex.Duration{Duration: config.ShutdownTimeout},
		LogLevel:         config.LogLevel,
		StorageBackend:   config.StorageBackend,
		DatabaseDSN:      config.DatabaseDSN,
		SQLitePath:       config.SQLitePath,
		RedisAddr:        config.RedisAddr,
		RedisPassword:    config.RedisPassword,
		RedisDB:          config.RedisDB,
		ImageStorage:     config.ImageStorage,
		S3RootUser:       config.S3RootUser,
		S3RootPassword:   config.S3RootPassword,
		S3Bucket:         config.S3Bucket,
		S3Region:         config.S3Region,
		S3BaseEndpoint:   config.S3BaseEndpoint,
		MaxImages:        config.MaxImages,
		MaxImageSize:     config.MaxImageSize,
	}
}
