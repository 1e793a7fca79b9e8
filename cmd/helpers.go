package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ziadkadry99/webgl-serve/internal/config"
	"github.com/ziadkadry99/webgl-serve/internal/db"
	"github.com/ziadkadry99/webgl-serve/internal/logging"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `webglserve init` to create a config file", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// setupLogger builds the process logger from cfg and makes it the default.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// openRecords opens the record store named by cfg. The caller closes the
// returned database.
func openRecords(cfg *config.Config) (*db.DB, *store.RecordStore, error) {
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, store.NewRecordStore(database), nil
}
