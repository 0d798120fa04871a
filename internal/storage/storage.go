package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sitekeeper/internal/model"
	"sitekeeper/internal/site"
)

// OSSiteStorage is the real filesystem implementation of site.SiteStorage.
//
// Layout:
//
//	<root>/
//	  <username>/          (one directory per account)
//	    index.html
//	    ...
//	<quarantineRoot>/
//	  <username>/          (directories of banned accounts, moved not copied)
//
// Writes are staged as a temp file in the destination directory and
// committed with a single rename, so a crash or a concurrent reader never
// observes a half-written file under its final name. Context is checked
// before I/O starts; an operation already past that point runs to
// completion.
type OSSiteStorage struct {
	root           string
	quarantineRoot string
}

// stagingPrefix names in-flight temp files staged next to their destination.
// Listings skip it so a concurrent write never leaks into results.
const stagingPrefix = ".sitekeeper-"

// NewOSSiteStorage creates the storage roots if needed and returns the store.
func NewOSSiteStorage(root, quarantineRoot string) (*OSSiteStorage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	if err := os.MkdirAll(quarantineRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating quarantine root: %w", err)
	}
	return &OSSiteStorage{root: root, quarantineRoot: quarantineRoot}, nil
}

// Root returns the active storage root.
func (s *OSSiteStorage) Root() string { return s.root }

func (s *OSSiteStorage) siteDir(username string) string {
	return filepath.Join(s.root, username)
}

func (s *OSSiteStorage) filePath(username, filename string) string {
	return filepath.Join(s.root, username, filename)
}

func (s *OSSiteStorage) CreateSiteDir(ctx context.Context, username string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := os.Mkdir(s.siteDir(username), 0755); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("site directory %s: %w", username, site.ErrAlreadyExists)
		}
		return fmt.Errorf("creating site directory: %w", err)
	}
	return nil
}

func (s *OSSiteStorage) SiteDirExists(ctx context.Context, username string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	info, err := os.Stat(s.siteDir(username))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat site directory: %w", err)
	}
	return info.IsDir(), nil
}

func (s *OSSiteStorage) FileSize(ctx context.Context, username, filename string) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	info, err := os.Stat(s.filePath(username, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("file %s: %w", filename, site.ErrNotFound)
		}
		return 0, fmt.Errorf("stat file: %w", err)
	}
	return info.Size(), nil
}

func (s *OSSiteStorage) PlaceUpload(ctx context.Context, username, filename, tempPath string, declaredSize int64) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	info, err := os.Stat(tempPath)
	if err != nil {
		return fmt.Errorf("stat upload temp file: %w", err)
	}
	if info.Size() != declaredSize {
		return fmt.Errorf("upload size mismatch: declared %d bytes, temp file has %d", declaredSize, info.Size())
	}

	destPath := s.filePath(username, filename)
	if err := os.Rename(tempPath, destPath); err != nil {
		// Rename fails across filesystems; fall back to copy + rename
		// within the destination directory so the final move stays atomic.
		if copyErr := s.copyIntoPlace(tempPath, destPath); copyErr != nil {
			return fmt.Errorf("placing upload: %w", copyErr)
		}
		os.Remove(tempPath)
	}
	return nil
}

func (s *OSSiteStorage) WriteFile(ctx context.Context, username, filename string, data []byte) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	return s.writeAtomic(s.filePath(username, filename), data)
}

func (s *OSSiteStorage) CreateFile(ctx context.Context, username, filename string, data []byte) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	destPath := s.filePath(username, filename)
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("file %s: %w", filename, site.ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat file: %w", err)
	}
	return s.writeAtomic(destPath, data)
}

func (s *OSSiteStorage) DeleteFile(ctx context.Context, username, filename string) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	path := s.filePath(username, filename)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("file %s: %w", filename, site.ErrNotFound)
		}
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return 0, fmt.Errorf("removing file: %w", err)
	}
	return info.Size(), nil
}

func (s *OSSiteStorage) ReadFile(ctx context.Context, username, filename string) (io.ReadCloser, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	f, err := os.Open(s.filePath(username, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", filename, site.ErrNotFound)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

func (s *OSSiteStorage) ListFiles(ctx context.Context, username string) ([]model.FileEntry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.siteDir(username))
	if err != nil {
		return nil, fmt.Errorf("reading site directory: %w", err)
	}

	files := make([]model.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), stagingPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, model.FileEntry{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *OSSiteStorage) RenameSiteDir(ctx context.Context, oldUsername, newUsername string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	oldPath := s.siteDir(oldUsername)
	newPath := s.siteDir(newUsername)

	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("site directory %s: %w", newUsername, site.ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat target directory: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("site directory %s: %w", oldUsername, site.ErrNotFound)
		}
		return fmt.Errorf("renaming site directory: %w", err)
	}
	return nil
}

func (s *OSSiteStorage) QuarantineSiteDir(ctx context.Context, username string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	src := s.siteDir(username)
	dest := filepath.Join(s.quarantineRoot, username)

	if err := os.Rename(src, dest); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("site directory %s: %w", username, site.ErrNotFound)
		}
		return fmt.Errorf("moving site directory to quarantine: %w", err)
	}
	return nil
}

// writeAtomic stages data in a temp file next to destPath and commits it
// with a rename.
func (s *OSSiteStorage) writeAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, stagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// copyIntoPlace copies srcPath into destPath's directory as a temp file and
// renames it over destPath.
func (s *OSSiteStorage) copyIntoPlace(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer src.Close()

	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, stagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, src); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copying content: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// checkCtx maps an expired context to the timeout error before any I/O runs.
func checkCtx(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return site.ErrTimeout
	}
	return err
}

// Compile-time check that OSSiteStorage implements site.SiteStorage
var _ site.SiteStorage = (*OSSiteStorage)(nil)
