package database

import (
	"fmt"
	"os"
	"path/filepath"

	"sitekeeper/internal/config"
)

// NewAccountStoreFromConfig creates an account store based on the database
// config type. The in-memory variant backs tests and throwaway runs; it is
// migrated on open since nothing persists between processes.
func NewAccountStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteAccountStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteAccountStore(filepath.Join(cfg.DataDir, "accounts.db"))
	case "memory":
		store, err := NewSQLiteAccountStore(":memory:")
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
