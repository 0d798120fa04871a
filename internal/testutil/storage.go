package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"sitekeeper/internal/model"
	"sitekeeper/internal/site"
)

// MemorySiteStorage is an in-memory site.SiteStorage for testing. Files are
// keyed by "username/filename"; site directories are tracked separately so
// an empty site is distinguishable from a missing one.
type MemorySiteStorage struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte

	// FailNext, when set, makes the next mutation return this error.
	FailNext error
}

var _ site.SiteStorage = (*MemorySiteStorage)(nil)

// NewMemorySiteStorage creates an empty in-memory storage.
func NewMemorySiteStorage() *MemorySiteStorage {
	return &MemorySiteStorage{
		dirs:  make(map[string]bool),
		files: make(map[string][]byte),
	}
}

func (m *MemorySiteStorage) key(username, filename string) string {
	return username + "/" + filename
}

func (m *MemorySiteStorage) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MemorySiteStorage) CreateSiteDir(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if m.dirs[username] {
		return fmt.Errorf("site directory %q: %w", username, site.ErrAlreadyExists)
	}
	m.dirs[username] = true
	return nil
}

func (m *MemorySiteStorage) SiteDirExists(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[username], nil
}

func (m *MemorySiteStorage) FileSize(ctx context.Context, username, filename string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[m.key(username, filename)]
	if !ok {
		return 0, fmt.Errorf("file %q: %w", filename, site.ErrNotFound)
	}
	return int64(len(data)), nil
}

func (m *MemorySiteStorage) PlaceUpload(ctx context.Context, username, filename, tempPath string, declaredSize int64) error {
	data, err := os.ReadFile(tempPath)
	if err != nil {
		return fmt.Errorf("reading temp file: %w", err)
	}
	if int64(len(data)) != declaredSize {
		return fmt.Errorf("temp file is %d bytes, expected %d", len(data), declaredSize)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.files[m.key(username, filename)] = data
	os.Remove(tempPath)
	return nil
}

func (m *MemorySiteStorage) WriteFile(ctx context.Context, username, filename string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.files[m.key(username, filename)] = append([]byte(nil), data...)
	return nil
}

func (m *MemorySiteStorage) CreateFile(ctx context.Context, username, filename string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	key := m.key(username, filename)
	if _, ok := m.files[key]; ok {
		return fmt.Errorf("file %q: %w", filename, site.ErrAlreadyExists)
	}
	m.files[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemorySiteStorage) DeleteFile(ctx context.Context, username, filename string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return 0, err
	}
	key := m.key(username, filename)
	data, ok := m.files[key]
	if !ok {
		return 0, fmt.Errorf("file %q: %w", filename, site.ErrNotFound)
	}
	delete(m.files, key)
	return int64(len(data)), nil
}

func (m *MemorySiteStorage) ReadFile(ctx context.Context, username, filename string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[m.key(username, filename)]
	if !ok {
		return nil, fmt.Errorf("file %q: %w", filename, site.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemorySiteStorage) ListFiles(ctx context.Context, username string) ([]model.FileEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirs[username] {
		return nil, fmt.Errorf("site directory %q: %w", username, site.ErrNotFound)
	}

	prefix := username + "/"
	var entries []model.FileEntry
	for key, data := range m.files {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, model.FileEntry{
				Name: strings.TrimPrefix(key, prefix),
				Size: int64(len(data)),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemorySiteStorage) RenameSiteDir(ctx context.Context, oldUsername, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if !m.dirs[oldUsername] {
		return fmt.Errorf("site directory %q: %w", oldUsername, site.ErrNotFound)
	}
	if m.dirs[newUsername] {
		return fmt.Errorf("site directory %q: %w", newUsername, site.ErrAlreadyExists)
	}

	oldPrefix := oldUsername + "/"
	for key, data := range m.files {
		if strings.HasPrefix(key, oldPrefix) {
			m.files[newUsername+"/"+strings.TrimPrefix(key, oldPrefix)] = data
			delete(m.files, key)
		}
	}
	delete(m.dirs, oldUsername)
	m.dirs[newUsername] = true
	return nil
}

func (m *MemorySiteStorage) QuarantineSiteDir(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if !m.dirs[username] {
		return fmt.Errorf("site directory %q: %w", username, site.ErrNotFound)
	}

	prefix := username + "/"
	for key := range m.files {
		if strings.HasPrefix(key, prefix) {
			delete(m.files, key)
		}
	}
	delete(m.dirs, username)
	return nil
}

// FileContent returns a stored file's bytes, or nil if absent.
func (m *MemorySiteStorage) FileContent(username, filename string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[m.key(username, filename)]
}

// HasSiteDir reports whether the site directory exists.
func (m *MemorySiteStorage) HasSiteDir(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[username]
}
