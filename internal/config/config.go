// Package config loads service settings from an optional YAML file, a .env
// file and ZALOGA_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env  string `mapstructure:"env"`
	Addr string `mapstructure:"addr"`
	Log  string `mapstructure:"log"`
	Seed bool   `mapstructure:"seed"`

	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Admin struct {
		Username string `mapstructure:"username"`
	} `mapstructure:"admin"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`

	Archive struct {
		Bucket          string `mapstructure:"bucket"`
		Prefix          string `mapstructure:"prefix"`
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		PathStyle       bool   `mapstructure:"path_style"`
	} `mapstructure:"archive"`
}

var defaults = map[string]any{
	"env":                       "",
	"addr":                      ":8080",
	"log":                       "",
	"seed":                      false,
	"database.driver":           "sqlite",
	"database.dsn":              "zaloga.sqlite3",
	"admin.username":            "Admin",
	"metrics.enabled":           true,
	"archive.bucket":            "",
	"archive.prefix":            "zaloga",
	"archive.region":            "us-east-1",
	"archive.endpoint":          "",
	"archive.access_key_id":     "",
	"archive.secret_access_key": "",
	"archive.path_style":        false,
}

// Load reads configuration. path and envFile may be empty; a missing
// envFile is not an error.
func Load(path, envFile string) (Config, error) {
	var c Config

	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("ZALOGA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// ArchiveEnabled reports whether snapshot archiving is configured.
func (c Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}
