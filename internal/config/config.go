// Package config handles loading the tasktrack config.toml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backend names a kv.Store implementation
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// DeletePolicy decides what happens to tasks when their project is deleted
type DeletePolicy string

const (
	// DeleteRestrict refuses to delete a project that tasks still reference.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes the project's tasks along with it.
	DeleteCascade DeletePolicy = "cascade"
)

// Environment variables that override the file
const (
	EnvBackend = "TASKTRACK_BACKEND"
	EnvDB      = "TASKTRACK_DB"
	EnvDSN     = "TASKTRACK_DSN"
)

// Config represents the config.toml file.
type Config struct {
	Storage  Storage  `toml:"storage"`
	Projects Projects `toml:"projects"`
	Log      Log      `toml:"log"`
}

// Storage selects and locates the key/value store.
type Storage struct {
	// Backend is one of sqlite, postgres or memory.
	Backend Backend `toml:"backend"`

	// Path is the SQLite database file. Empty means the XDG data directory.
	Path string `toml:"path"`

	// DSN is the Postgres connection string.
	DSN string `toml:"dsn"`
}

type Projects struct {
	DeletePolicy DeletePolicy `toml:"delete-policy"`
}

type Log struct {
	// File receives diagnostics. Empty means stderr for the CLI and nowhere
	// for the TUI.
	File string `toml:"file"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Storage:  Storage{Backend: BackendSQLite},
		Projects: Projects{DeletePolicy: DeleteRestrict},
	}
}

// DefaultPath returns ~/.config/tasktrack/config.toml
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tasktrack", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tasktrack", "config.toml"), nil
}

// Load reads the config file at path, or the default location when path is
// empty, then applies environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.normalize()
	return cfg, nil
}

// ApplyEnv overrides storage settings from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBackend); v != "" {
		c.Storage.Backend = Backend(v)
	}
	if v := getenv(EnvDB); v != "" {
		c.Storage.Path = v
	}
	if v := getenv(EnvDSN); v != "" {
		c.Storage.DSN = v
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.Storage.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Storage.Backend))))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	c.Projects.DeletePolicy = DeletePolicy(strings.ToLower(strings.TrimSpace(string(c.Projects.DeletePolicy))))
	if c.Projects.DeletePolicy == "" {
		c.Projects.DeletePolicy = DeleteRestrict
	}
}

// Validate reports settings that cannot be used to open a store
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage backend %q requires a dsn (set storage.dsn or %s)", c.Storage.Backend, EnvDSN)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want sqlite, postgres or memory)", c.Storage.Backend)
	}

	switch c.Projects.DeletePolicy {
	case DeleteRestrict, DeleteCascade:
	default:
		return fmt.Errorf("unknown project delete-policy %q (want restrict or cascade)", c.Projects.DeletePolicy)
	}
	return nil
}
