package database_test

import (
	"path/filepath"
	"testing"

	"sitekeeper/internal/config"
	"sitekeeper/internal/database"
)

func TestNewAccountStoreFromConfig(t *testing.T) {
	t.Run("sqlite type creates the data dir", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "db")
		store, err := database.NewAccountStoreFromConfig(config.DatabaseConfig{
			Type:    "sqlite",
			DataDir: dataDir,
		})
		if err != nil {
			t.Fatalf("NewAccountStoreFromConfig() error = %v", err)
		}
		defer store.Close()

		if err := store.Migrate(); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		if err := store.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() after migrate: %v", err)
		}
	})

	t.Run("sqlite type requires data_dir", func(t *testing.T) {
		if _, err := database.NewAccountStoreFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("NewAccountStoreFromConfig() expected error for missing data_dir")
		}
	})

	t.Run("memory type is migrated on open", func(t *testing.T) {
		store, err := database.NewAccountStoreFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewAccountStoreFromConfig() error = %v", err)
		}
		defer store.Close()

		if err := store.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() on fresh memory store: %v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := database.NewAccountStoreFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("NewAccountStoreFromConfig() expected error for unknown type")
		}
	})
}
