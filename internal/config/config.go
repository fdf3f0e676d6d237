// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

// Package config loads server settings. Sources are layered, later ones
// winning: built-in defaults, an optional YAML file, ICY_* environment
// variables (plus DATABASE_URL), then command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/icyfeed/icy/internal/auth"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ICY_"

// Config is the full server configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Control  ControlConfig  `koanf:"control"`
}

// HTTPConfig configures the public API listener.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	SecureCookies   bool          `koanf:"secure_cookies"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int32         `koanf:"max_conns"`
	ConnectAttempts uint64        `koanf:"connect_attempts"`
	ConnectBackoff  time.Duration `koanf:"connect_backoff"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	Issuer         string        `koanf:"issuer"`
	AccessTokenTTL time.Duration `koanf:"access_token_ttl"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig configures the observability listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// ControlConfig configures the gRPC health listener. An empty Addr disables it.
type ControlConfig struct {
	Addr     string `koanf:"addr"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

var defaults = map[string]any{
	"http.addr":                 ":8080",
	"http.shutdown_timeout":     "15s",
	"http.secure_cookies":       false,
	"database.max_conns":        10,
	"database.connect_attempts": 5,
	"database.connect_backoff":  "500ms",
	"database.auto_migrate":     false,
	"auth.issuer":               "icy",
	"auth.access_token_ttl":     auth.DefaultAccessTokenTTL.String(),
	"log.level":                 "info",
	"log.format":                "json",
	"metrics.addr":              "127.0.0.1:9100",
	"control.addr":              "",
}

// envKeys maps the ICY_* suffix to its config key.
var envKeys = map[string]string{
	"HTTP_ADDR":                 "http.addr",
	"HTTP_SHUTDOWN_TIMEOUT":     "http.shutdown_timeout",
	"HTTP_SECURE_COOKIES":       "http.secure_cookies",
	"DATABASE_URL":              "database.url",
	"DATABASE_MAX_CONNS":        "database.max_conns",
	"DATABASE_CONNECT_ATTEMPTS": "database.connect_attempts",
	"DATABASE_CONNECT_BACKOFF":  "database.connect_backoff",
	"DATABASE_AUTO_MIGRATE":     "database.auto_migrate",
	"AUTH_JWT_SECRET":           "auth.jwt_secret",
	"AUTH_ISSUER":               "auth.issuer",
	"AUTH_ACCESS_TOKEN_TTL":     "auth.access_token_ttl",
	"LOG_LEVEL":                 "log.level",
	"LOG_FORMAT":                "log.format",
	"METRICS_ADDR":              "metrics.addr",
	"CONTROL_ADDR":              "control.addr",
	"CONTROL_CERT_FILE":         "control.cert_file",
	"CONTROL_KEY_FILE":          "control.key_file",
}

// FlagKeys maps command-line flag names to config keys. Flags not listed
// are ignored by Load.
var FlagKeys = map[string]string{
	"config":         "",
	"http-addr":      "http.addr",
	"database-url":   "database.url",
	"auto-migrate":   "database.auto_migrate",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"metrics-addr":   "metrics.addr",
	"control-addr":   "control.addr",
	"secure-cookies": "http.secure_cookies",
}

// Load builds a Config. path may be empty; a missing file at a non-empty
// path is an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			code := "CONFIG_LOAD_FAILED"
			if errors.Is(err, fs.ErrNotExist) {
				code = "CONFIG_NOT_FOUND"
			}
			return nil, oops.Code(code).With("source", "file").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider("DATABASE_URL", ".", func(s string) string {
		if s == "DATABASE_URL" {
			return "database.url"
		}
		return ""
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKeys[strings.TrimPrefix(s, EnvPrefix)]
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(name, value string) (string, any) {
			return FlagKeys[name], value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode").Wrap(err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to serve traffic.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database.url").
			Errorf("database URL is required (set DATABASE_URL or %sDATABASE_URL)", EnvPrefix)
	}
	if len(c.Auth.JWTSecret) < auth.MinSigningKeyLength {
		return oops.Code("CONFIG_INVALID").With("key", "auth.jwt_secret").
			Errorf("JWT secret must be at least %d bytes", auth.MinSigningKeyLength)
	}
	if c.Auth.Issuer == "" {
		return oops.Code("CONFIG_INVALID").With("key", "auth.issuer").Errorf("issuer cannot be empty")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "auth.access_token_ttl").
			Errorf("access token TTL must be positive")
	}
	if c.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http.addr").Errorf("HTTP address cannot be empty")
	}
	if c.Database.MaxConns < 0 {
		return oops.Code("CONFIG_INVALID").With("key", "database.max_conns").
			Errorf("max connections cannot be negative")
	}
	if (c.Control.CertFile == "") != (c.Control.KeyFile == "") {
		return oops.Code("CONFIG_INVALID").With("key", "control.cert_file").
			Errorf("control TLS needs both cert_file and key_file")
	}
	return nil
}

// PathFromEnv returns ICY_CONFIG when set.
func PathFromEnv() string {
	return os.Getenv(EnvPrefix + "CONFIG")
}
