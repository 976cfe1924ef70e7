package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/joho/godotenv"
)

// envFiles are loaded before reading the environment. Variables already
// set in the process environment win.
var envFiles = []string{".env"}

// parseEnv overlays values from NOW_* environment variables.
//
//	NOW_ADDR, NOW_OWNER, NOW_STORAGE, NOW_DATA_DIR, NOW_DATABASE_DSN,
//	NOW_S3_BUCKET, NOW_S3_REGION, NOW_S3_ENDPOINT, NOW_S3_ACCESS_KEY,
//	NOW_S3_SECRET_KEY, NOW_S3_PREFIX, NOW_SHUTDOWN_TIMEOUT (e.g. "15s"),
//	NOW_LOG_LEVEL, NOW_ADMIN_SESSION, NOW_FAMILY_SESSION, NOW_FRIEND_SESSION
//
// A malformed .env file or duration panics, as do malformed JSON and flags.
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"NOW_ADDR", &config.ListenAddr},
		{"NOW_OWNER", &config.Owner},
		{"NOW_STORAGE", &config.StorageBackend},
		{"NOW_DATA_DIR", &config.DataDir},
		{"NOW_DATABASE_DSN", &config.DatabaseDSN},
		{"NOW_S3_BUCKET", &config.S3Bucket},
		{"NOW_S3_REGION", &config.S3Region},
		{"NOW_S3_ENDPOINT", &config.S3BaseEndpoint},
		{"NOW_S3_ACCESS_KEY", &config.S3AccessKey},
		{"NOW_S3_SECRET_KEY", &config.S3SecretKey},
		{"NOW_S3_PREFIX", &config.S3Prefix},
		{"NOW_LOG_LEVEL", &config.LogLevel},
		{common.EnvAdminSecret, &config.AdminSecret},
		{common.EnvFamilySecret, &config.FamilySecret},
		{common.EnvFriendSecret, &config.FriendSecret},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("NOW_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
}
