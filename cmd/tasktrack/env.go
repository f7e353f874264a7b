package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tgienger/tasktrack/internal/app"
	"github.com/tgienger/tasktrack/internal/config"
	"github.com/tgienger/tasktrack/internal/db"
	"github.com/tgienger/tasktrack/internal/kv"
)

// env is an opened store and the service over it
type env struct {
	svc     *app.Service
	closers []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

// loadConfig reads the config file and applies the persistent flags over it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(func(key string) string {
		switch key {
		case config.EnvBackend:
			return flagBackend
		case config.EnvDB:
			return flagDB
		case config.EnvDSN:
			return flagDSN
		}
		return ""
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openEnv opens the configured store. The CLI logs to stderr by default; the
// full-screen interface logs nowhere unless a log file is configured.
func openEnv(ctx context.Context, cli bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	e := &env{}
	logger := log.New(io.Discard, "", 0)
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.closers = append(e.closers, f)
		logger = log.New(f, "tasktrack: ", log.LstdFlags)
	case cli:
		logger = log.New(os.Stderr, "tasktrack: ", 0)
	}

	store, err := openStore(ctx, cfg.Storage, e)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.svc = app.New(store, app.Options{
		Logger:       logger,
		DeletePolicy: cfg.Projects.DeletePolicy,
	})
	return e, nil
}

func openStore(ctx context.Context, cfg config.Storage, e *env) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kv.NewMemory(), nil

	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		store := db.NewPgStore(pool)
		e.closers = append(e.closers, store)
		if err := store.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("create postgres table: %w", err)
		}
		return store, nil

	default:
		path := cfg.Path
		if path == "" {
			p, err := db.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		database, err := db.New(path)
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		e.closers = append(e.closers, database)
		return database, nil
	}
}
