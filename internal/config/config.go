package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultMaxSpace is the stock per-account byte budget (10 MiB).
const DefaultMaxSpace = 10 << 20

// Config represents the main configuration for sitekeeper.
type Config struct {
	BaseDir     string              `toml:"base_dir" validate:"required"`
	LogDir      string              `toml:"log_dir" validate:"required"`
	Storage     StorageConfig       `toml:"storage"`
	Quota       QuotaConfig         `toml:"quota"`
	Content     ContentConfig       `toml:"content"`
	Database    DatabaseConfig      `toml:"database"`
	Screenshots ScreenshotConfig    `toml:"screenshots"`
	Network     NetworkPolicyConfig `toml:"network"`
	// OpTimeoutSeconds bounds each storage operation; zero disables the bound.
	OpTimeoutSeconds int `toml:"op_timeout_seconds" validate:"gte=0"`
}

// StorageConfig locates the on-disk site trees.
type StorageConfig struct {
	Root           string `toml:"root" validate:"required"`
	QuarantineRoot string `toml:"quarantine_root" validate:"required"`
}

// QuotaConfig holds the per-account byte budget.
type QuotaConfig struct {
	MaxSpace int64 `toml:"max_space" validate:"gt=0"`
}

// ContentConfig holds the entry page name and the upload allow-lists.
// Empty lists fall back to the built-in defaults.
type ContentConfig struct {
	EntryPage         string   `toml:"entry_page" validate:"required"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	AllowedMIMETypes  []string `toml:"allowed_mime_types"`
}

// DatabaseConfig represents configuration for the account database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type" validate:"oneof=sqlite memory"`
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ScreenshotConfig represents configuration for the screenshot job queue.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ScreenshotConfig struct {
	Type string `toml:"type" validate:"oneof=redis memory"`

	// Redis-specific fields (only used when Type == "redis")
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	QueueKey      string `toml:"queue_key,omitempty"`
}

// NetworkPolicyConfig represents configuration for IP blocking on ban.
type NetworkPolicyConfig struct {
	Type         string `toml:"type" validate:"oneof=denylist none"`
	DenylistPath string `toml:"denylist_path,omitempty"` // only used for type=denylist
}

// NewConfig creates a Config with defaults rooted under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Root:           filepath.Join(baseDir, "sites"),
			QuarantineRoot: filepath.Join(baseDir, "banned_sites"),
		},
		Quota: QuotaConfig{MaxSpace: DefaultMaxSpace},
		Content: ContentConfig{
			EntryPage: "index.html",
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Screenshots: ScreenshotConfig{
			Type:      "redis",
			RedisAddr: "localhost:6379",
			QueueKey:  "sitekeeper:screenshots",
		},
		Network: NetworkPolicyConfig{
			Type:         "denylist",
			DenylistPath: filepath.Join(baseDir, "denylist"),
		},
		OpTimeoutSeconds: 10,
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes and validates a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
