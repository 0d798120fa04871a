package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/sitekeeper",
		LogDir:  "/home/user/.local/share/sitekeeper/log",
		Storage: StorageConfig{
			Root:           "/home/user/.local/share/sitekeeper/sites",
			QuarantineRoot: "/home/user/.local/share/sitekeeper/banned_sites",
		},
		Quota: QuotaConfig{MaxSpace: 5 << 20},
		Content: ContentConfig{
			EntryPage:         "index.html",
			AllowedExtensions: []string{"html", "css"},
			AllowedMIMETypes:  []string{"text/html", "text/css"},
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/sitekeeper/db"},
		Screenshots: ScreenshotConfig{
			Type:      "redis",
			RedisAddr: "localhost:6379",
			QueueKey:  "sitekeeper:screenshots",
		},
		Network: NetworkPolicyConfig{
			Type:         "denylist",
			DenylistPath: "/home/user/.local/share/sitekeeper/denylist",
		},
		OpTimeoutSeconds: 10,
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Storage.Root != original.Storage.Root {
		t.Errorf("Storage.Root = %q, want %q", got.Storage.Root, original.Storage.Root)
	}
	if got.Storage.QuarantineRoot != original.Storage.QuarantineRoot {
		t.Errorf("Storage.QuarantineRoot = %q, want %q", got.Storage.QuarantineRoot, original.Storage.QuarantineRoot)
	}
	if got.Quota.MaxSpace != original.Quota.MaxSpace {
		t.Errorf("Quota.MaxSpace = %d, want %d", got.Quota.MaxSpace, original.Quota.MaxSpace)
	}
	if got.Content.EntryPage != original.Content.EntryPage {
		t.Errorf("Content.EntryPage = %q, want %q", got.Content.EntryPage, original.Content.EntryPage)
	}
	if len(got.Content.AllowedExtensions) != 2 {
		t.Errorf("len(AllowedExtensions) = %d, want 2", len(got.Content.AllowedExtensions))
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Screenshots.RedisAddr != original.Screenshots.RedisAddr {
		t.Errorf("Screenshots.RedisAddr = %q, want %q", got.Screenshots.RedisAddr, original.Screenshots.RedisAddr)
	}
	if got.Network.Type != "denylist" {
		t.Errorf("Network.Type = %q, want %q", got.Network.Type, "denylist")
	}
	if got.OpTimeoutSeconds != 10 {
		t.Errorf("OpTimeoutSeconds = %d, want 10", got.OpTimeoutSeconds)
	}
}

func TestManager_Read_Validation(t *testing.T) {
	t.Run("rejects a missing base dir", func(t *testing.T) {
		cfg := NewConfig("/home/user/.local/share/sitekeeper")
		cfg.BaseDir = ""

		var buf bytes.Buffer
		m := &Manager{}
		if err := m.Write(&buf, cfg); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if _, err := m.Read(&buf); err == nil {
			t.Error("Read() expected validation error for empty base_dir")
		}
	})

	t.Run("rejects an unknown database type", func(t *testing.T) {
		cfg := NewConfig("/home/user/.local/share/sitekeeper")
		cfg.Database.Type = "postgres"

		var buf bytes.Buffer
		m := &Manager{}
		if err := m.Write(&buf, cfg); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if _, err := m.Read(&buf); err == nil {
			t.Error("Read() expected validation error for unknown database type")
		}
	})

	t.Run("rejects a non-positive quota", func(t *testing.T) {
		cfg := NewConfig("/home/user/.local/share/sitekeeper")
		cfg.Quota.MaxSpace = 0

		var buf bytes.Buffer
		m := &Manager{}
		if err := m.Write(&buf, cfg); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if _, err := m.Read(&buf); err == nil {
			t.Error("Read() expected validation error for zero quota")
		}
	})
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("/data/sitekeeper")

	if cfg.Storage.Root != filepath.Join("/data/sitekeeper", "sites") {
		t.Errorf("Storage.Root = %q", cfg.Storage.Root)
	}
	if cfg.Storage.QuarantineRoot != filepath.Join("/data/sitekeeper", "banned_sites") {
		t.Errorf("Storage.QuarantineRoot = %q", cfg.Storage.QuarantineRoot)
	}
	if cfg.Quota.MaxSpace != DefaultMaxSpace {
		t.Errorf("Quota.MaxSpace = %d, want %d", cfg.Quota.MaxSpace, DefaultMaxSpace)
	}
	if cfg.Content.EntryPage != "index.html" {
		t.Errorf("Content.EntryPage = %q", cfg.Content.EntryPage)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates a new config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "sitekeeper.toml")
		cfg := NewConfig("/data/sitekeeper")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BaseDir != cfg.BaseDir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, cfg.BaseDir)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sitekeeper.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("seeding file: %v", err)
		}
		if err := Init(path, NewConfig("/data/sitekeeper")); err == nil {
			t.Error("Init() expected error for existing file")
		}
	})
}
