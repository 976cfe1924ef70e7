// Package config handles configuration for the status server: defaults,
// environment (including a local .env file), a JSON overlay and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/nowstatus/internal/common"
)

// Storage backends.
const (
	BackendFS       = "fs"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendS3       = "s3"
)

// Config holds runtime settings for the status server.
//
// Fields:
//   - ListenAddr: bind address of the HTTP endpoint.
//   - Owner: name shown in page headings ("What <Owner> is doing now").
//   - StorageBackend: one of fs, memory, postgres, badger, s3.
//   - DataDir: root directory of the fs and badger backends.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - S3*: object storage settings for the s3 backend (MinIO compatible).
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
//   - AdminSecret / FamilySecret / FriendSecret: never logged, never set from flags.
type Config struct {
	ListenAddr      string
	Owner           string
	StorageBackend  string
	DataDir         string
	DatabaseDSN     string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3AccessKey     string
	S3SecretKey     string
	S3Prefix        string
	ShutdownTimeout time.Duration
	LogLevel        string

	AdminSecret  string
	FamilySecret string
	FriendSecret string
}

// LoadDefaults populates Config with development defaults. Secrets have no
// default.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.Owner = "random6"
	c.StorageBackend = BackendFS
	c.DataDir = "./data"
	c.DatabaseDSN = ""
	c.S3Bucket = "nowstatus"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3Prefix = "statuses/"
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFS, BackendBadger:
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required for %s storage", c.StorageBackend)
		}
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database DSN is required for postgres storage")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("bucket is required for s3 storage")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	for _, s := range []struct{ env, value string }{
		{common.EnvAdminSecret, c.AdminSecret},
		{common.EnvFamilySecret, c.FamilySecret},
		{common.EnvFriendSecret, c.FriendSecret},
	} {
		if s.value == "" {
			return fmt.Errorf("%w: %s", common.ErrorMissingSecret, s.env)
		}
	}

	return nil
}

// LogValue keeps secrets out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("listen_addr", c.ListenAddr),
		slog.String("owner", c.Owner),
		slog.String("storage", c.StorageBackend),
		slog.String("data_dir", c.DataDir),
		slog.String("s3_bucket", c.S3Bucket),
		slog.String("s3_endpoint", c.S3BaseEndpoint),
		slog.Duration("shutdown_timeout", c.ShutdownTimeout),
		slog.String("log_level", c.LogLevel),
	)
}
