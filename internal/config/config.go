// Package config loads connection and behavior settings from flags,
// environment variables, and an optional pgterra.yaml, in that precedence
// order, via spf13/viper — the layered-config approach the rest of the
// pack's CLIs (cobra+viper) use rather than hand-rolled flag parsing.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Connection holds the parameters needed to reach a single Postgres
// database, for either the local-file side or the remote side of a
// plan/apply/fetch invocation.
type Connection struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"dbname"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Schema   string `mapstructure:"schema"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders c as a libpq connection string for pgx.
func (c Connection) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Config is the fully resolved set of options for one CLI invocation.
type Config struct {
	Remote   Connection `mapstructure:"remote"`
	LocalDir string     `mapstructure:"local_dir"`
	Debug    bool       `mapstructure:"debug"`
	NoColor  bool       `mapstructure:"no_color"`
}

// Load builds a *viper.Viper bound to env vars prefixed PGTERRA_ and an
// optional config file, and unmarshals it into a Config. Flag values the
// caller has bound to v with BindPFlag take precedence over both.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("PGTERRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("remote.host", "localhost")
	v.SetDefault("remote.port", 5432)
	v.SetDefault("remote.schema", "public")
	v.SetDefault("remote.sslmode", "prefer")
	v.SetDefault("local_dir", ".")

	v.SetConfigName("pgterra")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
