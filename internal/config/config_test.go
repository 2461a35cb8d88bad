package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.DSN != "clubgrid.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.SaveDelay() != 500*time.Millisecond {
		t.Errorf("SaveDelay = %v, want 500ms", cfg.SaveDelay())
	}
	if cfg.SlowQuery() != 50*time.Millisecond || cfg.SlowRequest() != 200*time.Millisecond {
		t.Errorf("thresholds = %v / %v", cfg.SlowQuery(), cfg.SlowRequest())
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clubgrid.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadFrom_ValidFile(t *testing.T) {
	path := writeConfig(t, `
env = "production"

[server]
addr = ":9090"
csrf_key = "`+strings.Repeat("ab", 32)+`"
trusted_origins = ["grid.example.org"]

[database]
driver = "postgres"
dsn = "postgres://clubgrid@localhost/clubgrid?sslmode=disable"

[grid]
save_delay_ms = 750

[log]
level = "debug"
format = "json"
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() || cfg.Server.Addr != ":9090" {
		t.Errorf("server = %+v env %s", cfg.Server, cfg.Env)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("driver = %s", cfg.Database.Driver)
	}
	if cfg.SaveDelay() != 750*time.Millisecond {
		t.Errorf("SaveDelay = %v", cfg.SaveDelay())
	}
	if cfg.Perf.SlowQueryMs != 50 {
		t.Errorf("unset keys should keep defaults, slow_query_ms = %d", cfg.Perf.SlowQueryMs)
	}
	key, generated, err := cfg.CSRFKeyBytes()
	if err != nil || generated || len(key) != 32 || key[0] != 0xab {
		t.Errorf("CSRFKeyBytes = %x, %v, %v", key, generated, err)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	if _, err := LoadFrom(writeConfig(t, "this is = = not toml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9090"
`)
	t.Setenv("CLUBGRID_ADDR", ":7070")
	t.Setenv("CLUBGRID_DB_DSN", "/tmp/grid.db")
	t.Setenv("CLUBGRID_SAVE_DELAY_MS", "100")
	t.Setenv("CLUBGRID_SLOW_REQUEST_MS", "900")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("env should beat file, addr = %s", cfg.Server.Addr)
	}
	if cfg.Database.DSN != "/tmp/grid.db" || cfg.Grid.SaveDelayMs != 100 || cfg.Perf.SlowRequestMs != 900 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFrom_BadEnvInt(t *testing.T) {
	t.Setenv("CLUBGRID_SLOW_QUERY_MS", "fast")
	if _, err := LoadFrom(""); err == nil || !strings.Contains(err.Error(), "CLUBGRID_SLOW_QUERY_MS") {
		t.Errorf("err = %v, want mention of CLUBGRID_SLOW_QUERY_MS", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"badEnv", func(c *Config) { c.Env = "staging" }, "env"},
		{"prodWithoutKey", func(c *Config) { c.Env = EnvProduction }, "required in production"},
		{"shortKey", func(c *Config) { c.Server.CSRFKey = "abcd" }, "64 hex"},
		{"badDriver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"emptyDSN", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"negativeDelay", func(c *Config) { c.Grid.SaveDelayMs = -1 }, "negative"},
		{"badLevel", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"badFormat", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCSRFKeyBytes_Generated(t *testing.T) {
	key, generated, err := Default().CSRFKeyBytes()
	if err != nil || !generated || len(key) != 32 {
		t.Errorf("CSRFKeyBytes = %d bytes, %v, %v", len(key), generated, err)
	}
}
