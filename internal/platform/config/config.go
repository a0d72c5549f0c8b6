// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultDatabaseMaxOpenConns bounds the connection pool.
	DefaultDatabaseMaxOpenConns = 25

	// DefaultDatabaseMaxIdleConns is the default number of idle pooled connections.
	DefaultDatabaseMaxIdleConns = 10

	// DefaultDatabaseCircuitMaxFailures is the number of acquire failures before the pool breaker opens.
	DefaultDatabaseCircuitMaxFailures = 5

	// DefaultDatabaseCircuitHalfOpenLimit is the number of successes that close the breaker again.
	DefaultDatabaseCircuitHalfOpenLimit = 3

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig configures the write guards. The gateway validates tokens and
// forwards the editor identity in headers.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	ScopesHeader  string `koanf:"scopes_header"  validate:"required_if=Enabled true"`
	SubjectHeader string `koanf:"subject_header" validate:"required_if=Enabled true"`

	// WriteScope, when set, is required in addition to a subject on mutating routes.
	WriteScope string `koanf:"write_scope"`
}

// DatabaseConfig contains the content slot store settings.
type DatabaseConfig struct {
	Driver          string               `koanf:"driver"             validate:"required,oneof=mysql postgres sqlite"`
	DSN             string               `koanf:"dsn"                validate:"required"`
	TablePrefix     string               `koanf:"table_prefix"       validate:"omitempty,max=32,sqlident"`
	MaxOpenConns    int                  `koanf:"max_open_conns"     validate:"required,min=1,max=1000"`
	MaxIdleConns    int                  `koanf:"max_idle_conns"     validate:"min=0,max=1000"`
	ConnMaxLifetime time.Duration        `koanf:"conn_max_lifetime"  validate:"min=0"`
	ConnMaxIdleTime time.Duration        `koanf:"conn_max_idle_time" validate:"min=0"`
	AcquireTimeout  time.Duration        `koanf:"acquire_timeout"    validate:"required,min=10ms"`
	AutoMigrate     bool                 `koanf:"auto_migrate"`
	CircuitBreaker  CircuitBreakerConfig `koanf:"circuit_breaker"    validate:"required"`
}

// CircuitBreakerConfig contains the breaker guarding connection acquisition.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "contentslots",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "contentslots",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        false,
		"auth.scopes_header":  "X-User-Scopes",
		"auth.subject_header": "X-User-ID",
		"auth.write_scope":    "",

		"database.driver":                          "sqlite",
		"database.dsn":                             "file:contentslots.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		"database.table_prefix":                    "",
		"database.max_open_conns":                  DefaultDatabaseMaxOpenConns,
		"database.max_idle_conns":                  DefaultDatabaseMaxIdleConns,
		"database.conn_max_lifetime":               "30m",
		"database.conn_max_idle_time":              "5m",
		"database.acquire_timeout":                 "5s",
		"database.auto_migrate":                    false,
		"database.circuit_breaker.max_failures":    DefaultDatabaseCircuitMaxFailures,
		"database.circuit_breaker.timeout":         "30s",
		"database.circuit_breaker.half_open_limit": DefaultDatabaseCircuitHalfOpenLimit,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKeyMapper(defaults())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper turns APP_DATABASE_MAX_OPEN_CONNS into database.max_open_conns.
// Underscores are ambiguous, so known keys are matched first; unknown
// variables fall back to treating every underscore as a separator.
func envKeyMapper(known map[string]any) func(string) string {
	byFlat := make(map[string]string, len(known))
	for key := range known {
		byFlat[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(s string) string {
		flat := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		if key, ok := byFlat[flat]; ok {
			return key
		}

		return strings.ReplaceAll(flat, "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
