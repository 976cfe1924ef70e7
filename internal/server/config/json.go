package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/nowstatus/internal/flagx"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Empty
// fields leave the current value untouched. ShutdownTimeout uses
// time.ParseDuration syntax ("10s").
type JsonConfig struct {
	ListenAddr      string `json:"listen_addr"`
	Owner           string `json:"owner"`
	StorageBackend  string `json:"storage_backend"`
	DataDir         string `json:"data_dir"`
	DatabaseDSN     string `json:"database_dsn"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	S3AccessKey     string `json:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key"`
	S3Prefix        string `json:"s3_prefix"`
	ShutdownTimeout string `json:"shutdown_timeout"`
	LogLevel        string `json:"log_level"`
	AdminSecret     string `json:"admin_secret"`
	FamilySecret    string `json:"family_secret"`
	FriendSecret    string `json:"friend_secret"`
}

// parseJson loads the file named by -c / -config, if any, and overlays its
// non-empty values onto config. An unreadable or invalid file panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay := []struct {
		src string
		dst *string
	}{
		{c.ListenAddr, &config.ListenAddr},
		{c.Owner, &config.Owner},
		{c.StorageBackend, &config.StorageBackend},
		{c.DataDir, &config.DataDir},
		{c.DatabaseDSN, &config.DatabaseDSN},
		{c.S3Bucket, &config.S3Bucket},
		{c.S3Region, &config.S3Region},
		{c.S3BaseEndpoint, &config.S3BaseEndpoint},
		{c.S3AccessKey, &config.S3AccessKey},
		{c.S3SecretKey, &config.S3SecretKey},
		{c.S3Prefix, &config.S3Prefix},
		{c.LogLevel, &config.LogLevel},
		{c.AdminSecret, &config.AdminSecret},
		{c.FamilySecret, &config.FamilySecret},
		{c.FriendSecret, &config.FriendSecret},
	}
	for _, o := range overlay {
		if o.src != "" {
			*o.dst = o.src
		}
	}

	if c.ShutdownTimeout != "" {
		d, err := time.ParseDuration(c.ShutdownTimeout)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
}
