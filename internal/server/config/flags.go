package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/graphpass/internal/flagx"
)

var serverFlags = []string{
	"-a", "-t", "-l", "-s", "-d", "-q", "-r", "-w", "-n",
	"-i", "-u", "-p", "-b", "-g", "-e", "-m", "-z",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":8000")
//	-t duration  graceful shutdown timeout (e.g., "10s")
//	-l string    log level
//	-s string    storage backend: postgres, sqlite, redis, memory
//	-d string    PostgreSQL DSN
//	-q string    SQLite database file
//	-r string    Redis address
//	-w string    Redis password
//	-n int       Redis database number
//	-i string    image storage: inline, s3
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket name
//	-g string    S3 region
//	-e string    S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m int       maximum images per signup
//	-z int       maximum image size, bytes
//
// Unrelated arguments (such as -c) are filtered out with flagx.FilterArgs
// before parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("graphpass", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.DurationVar(&config.ShutdownTimeout, "t", config.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "q", config.SQLitePath, "SQLite database file")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisPassword, "w", config.RedisPassword, "Redis password")
	fs.IntVar(&config.RedisDB, "n", config.RedisDB, "Redis database")

	fs.StringVar(&config.ImageStorage, "i", config.ImageStorage, "image storage")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.IntVar(&config.MaxImages, "m", config.MaxImages, "maximum images per signup")
	fs.Int64Var(&config.MaxImageSize, "z", config.MaxImageSize, "maximum image size in bytes")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
