package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"archscope/internal/config"
	"archscope/internal/discovery"
	"archscope/internal/engine"
	"archscope/internal/logging"
	"archscope/internal/ontology"
	"archscope/internal/store"
)

var (
	engineOnce   sync.Once
	sharedEngine *engine.Engine
	sharedConfig *config.Config
	engineErr    error

	storeOnce   sync.Once
	sharedStore *store.Store
	storeErr    error
)

// getEngine returns a shared engine over the loaded workspace.
// The engine is lazily initialized on first use.
func getEngine(workspaceRoot string, logger *logging.Logger) (*engine.Engine, error) {
	engineOnce.Do(func() {
		cfg, err := config.LoadConfig(workspaceRoot)
		if err != nil {
			logger.Warn("Failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}
		if err := cfg.Validate(); err != nil {
			engineErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		sharedConfig = cfg

		ws, err := ontology.LoadWorkspace(workspaceRoot)
		if err != nil {
			engineErr = fmt.Errorf("failed to load workspace: %w", err)
			return
		}

		eng := engine.New(ws, cfg, logger)

		if cfg.Discovery.Backend == "fts" {
			backend, err := openFTSBackend(workspaceRoot, cfg, ws.Catalog)
			if err != nil {
				logger.Warn("FTS discovery unavailable, falling back to in-memory search", map[string]interface{}{
					"error": err.Error(),
				})
			} else {
				eng.UseDiscovery(backend)
			}
		}

		sharedEngine = eng
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared engine or exits on error.
func mustGetEngine(workspaceRoot string, logger *logging.Logger) *engine.Engine {
	eng, err := getEngine(workspaceRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return eng
}

func openFTSBackend(workspaceRoot string, cfg *config.Config, catalog *ontology.Catalog) (discovery.Backend, error) {
	dbPath := filepath.Join(workspaceRoot, ".archscope", "discovery.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	backend := discovery.NewFTSBackend(db, catalog, discovery.Weights{
		Name:     cfg.Discovery.NameWeight,
		Domain:   cfg.Discovery.DomainWeight,
		Fragment: cfg.Discovery.FragmentWeight,
	})
	if err := backend.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := backend.Sync(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return backend, nil
}

// getStore returns the shared session store, opened lazily.
func getStore(workspaceRoot string, logger *logging.Logger) (*store.Store, error) {
	storeOnce.Do(func() {
		cfg := sharedConfig
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
		if !cfg.Storage.Enabled {
			storeErr = fmt.Errorf("session storage is disabled in the configuration")
			return
		}
		sharedStore, storeErr = store.Open(filepath.Join(workspaceRoot, cfg.Storage.Path), logger)
	})
	return sharedStore, storeErr
}

// mustGetStore returns the shared session store or exits on error.
func mustGetStore(workspaceRoot string, logger *logging.Logger) *store.Store {
	st, err := getStore(workspaceRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session store: %v\n", err)
		os.Exit(1)
	}
	return st
}

// getWorkspaceRoot returns the workspace root directory.
func getWorkspaceRoot() (string, error) {
	if workspaceFlag != "" {
		return workspaceFlag, nil
	}
	return os.Getwd()
}

// mustGetWorkspaceRoot returns the workspace root or exits on error.
func mustGetWorkspaceRoot() string {
	root, err := getWorkspaceRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger with the specified format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	level := logging.InfoLevel
	if sharedConfig != nil {
		level = logging.ParseLevel(sharedConfig.Logging.Level)
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  level,
	})
}
