package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tgienger/tasktrack/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvDB, "")
	t.Setenv(config.EnvDSN, "")
}

func TestLoad_NotFound(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Errorf("Backend = %q, expected sqlite", cfg.Storage.Backend)
	}
	if cfg.Projects.DeletePolicy != config.DeleteRestrict {
		t.Errorf("DeletePolicy = %q, expected restrict", cfg.Projects.DeletePolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_DefaultPathUsesXDG(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := config.DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "tasktrack", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, expected %q", path, want)
	}

	if _, err := config.Load(""); err != nil {
		t.Errorf("loading missing default file: %v", err)
	}
}

func TestLoad_Full(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[storage]
backend = "Postgres"
dsn = "postgres://localhost/tasks"

[projects]
delete-policy = "cascade"

[log]
file = "/tmp/tasktrack.log"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Storage.Backend != config.BackendPostgres {
		t.Errorf("Backend = %q, expected postgres", cfg.Storage.Backend)
	}
	if cfg.Storage.DSN != "postgres://localhost/tasks" {
		t.Errorf("DSN = %q", cfg.Storage.DSN)
	}
	if cfg.Projects.DeletePolicy != config.DeleteCascade {
		t.Errorf("DeletePolicy = %q, expected cascade", cfg.Projects.DeletePolicy)
	}
	if cfg.Log.File != "/tmp/tasktrack.log" {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "[storage\nbackend = 1", "parse config file"},
		{"unknown key", "[storage]\nbakend = \"memory\"", "unknown keys: storage.bakend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "[storage]\nbackend = \"sqlite\"\npath = \"/from/file.db\"\n")
	t.Setenv(config.EnvBackend, "memory")
	t.Setenv(config.EnvDB, "/from/env.db")
	t.Setenv(config.EnvDSN, "")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != config.BackendMemory {
		t.Errorf("Backend = %q, expected memory", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "/from/env.db" {
		t.Errorf("Path = %q, expected env override", cfg.Storage.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"memory", func(c *config.Config) { c.Storage.Backend = config.BackendMemory }, ""},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "redis" }, "unknown storage backend"},
		{"postgres without dsn", func(c *config.Config) { c.Storage.Backend = config.BackendPostgres }, "requires a dsn"},
		{"unknown policy", func(c *config.Config) { c.Projects.DeletePolicy = "orphan" }, "unknown project delete-policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
