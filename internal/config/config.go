// Package config loads server configuration from defaults, an optional TOML
// file and CLUBGRID_* environment variables, in that order of precedence.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the server configuration.
type Config struct {
	Env      string         `toml:"env"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Grid     GridConfig     `toml:"grid"`
	Perf     PerfConfig     `toml:"perf"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr               string   `toml:"addr"`
	CSRFKey            string   `toml:"csrf_key"` // 64 hex characters
	TrustedOrigins     []string `toml:"trusted_origins"`
	RateLimitPerSecond int      `toml:"rate_limit_per_second"`
	ShutdownTimeoutMs  int      `toml:"shutdown_timeout_ms"`
}

// DatabaseConfig selects the store backend. For sqlite the DSN is a file path.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// GridConfig holds rotation grid settings.
type GridConfig struct {
	SaveDelayMs int `toml:"save_delay_ms"` // quiet period before a layout save
}

// PerfConfig holds timing instrumentation settings.
type PerfConfig struct {
	RingSize      int `toml:"ring_size"`
	SlowQueryMs   int `toml:"slow_query_ms"`
	SlowRequestMs int `toml:"slow_request_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Addr:               ":8080",
			TrustedOrigins:     []string{"localhost:8080", "127.0.0.1:8080"},
			RateLimitPerSecond: 20,
			ShutdownTimeoutMs:  10000,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "clubgrid.db",
		},
		Grid: GridConfig{SaveDelayMs: 500},
		Perf: PerfConfig{
			RingSize:      10000,
			SlowQueryMs:   50,
			SlowRequestMs: 200,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "clubgrid.toml"

// LoadFrom starts with defaults, overlays the file at path if it exists,
// then applies environment overrides and validates.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"CLUBGRID_ENV":       &cfg.Env,
		"CLUBGRID_ADDR":      &cfg.Server.Addr,
		"CLUBGRID_CSRF_KEY":  &cfg.Server.CSRFKey,
		"CLUBGRID_DB_DRIVER": &cfg.Database.Driver,
		"CLUBGRID_DB_DSN":    &cfg.Database.DSN,
		"CLUBGRID_LOG_LEVEL": &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CLUBGRID_SAVE_DELAY_MS":   &cfg.Grid.SaveDelayMs,
		"CLUBGRID_SLOW_QUERY_MS":   &cfg.Perf.SlowQueryMs,
		"CLUBGRID_SLOW_REQUEST_MS": &cfg.Perf.SlowRequestMs,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
	}

	if v := os.Getenv("CLUBGRID_TRUSTED_ORIGINS"); v != "" {
		cfg.Server.TrustedOrigins = strings.Split(v, ",")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.CSRFKey != "" {
		if key, err := hex.DecodeString(c.Server.CSRFKey); err != nil || len(key) != 32 {
			return errors.New("server.csrf_key must be 64 hex characters (32 bytes)")
		}
	} else if c.IsProduction() {
		return errors.New("server.csrf_key is required in production")
	}
	if c.Server.RateLimitPerSecond < 0 || c.Server.ShutdownTimeoutMs < 0 {
		return errors.New("server limits must not be negative")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}

	if c.Grid.SaveDelayMs < 0 || c.Perf.RingSize < 0 || c.Perf.SlowQueryMs < 0 || c.Perf.SlowRequestMs < 0 {
		return errors.New("durations and sizes must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// CSRFKeyBytes decodes the CSRF key. Without a configured key (development
// only, Validate enforces it) a random key is returned and generated is true.
func (c *Config) CSRFKeyBytes() (key []byte, generated bool, err error) {
	if c.Server.CSRFKey != "" {
		key, err = hex.DecodeString(c.Server.CSRFKey)
		return key, false, err
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generating CSRF key: %w", err)
	}
	return key, true, nil
}

// SaveDelay is the layout save quiet period.
func (c *Config) SaveDelay() time.Duration {
	return time.Duration(c.Grid.SaveDelayMs) * time.Millisecond
}

// SlowQuery is the threshold for slow_query warnings.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.Perf.SlowQueryMs) * time.Millisecond
}

// SlowRequest is the threshold for slow_request warnings.
func (c *Config) SlowRequest() time.Duration {
	return time.Duration(c.Perf.SlowRequestMs) * time.Millisecond
}

// ShutdownTimeout bounds graceful shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutMs) * time.Millisecond
}
