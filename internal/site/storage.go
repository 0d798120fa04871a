package site

import (
	"context"
	"io"

	"sitekeeper/internal/model"
)

// SiteStorage owns the on-disk layout for account directories: one directory
// per account under the storage root, named by username, plus a sibling
// quarantine root for banned accounts.
//
// Mutations must be as atomic as the filesystem allows. A failed operation
// leaves the prior state intact; no half-written file is ever observable
// under its final name. All operations honor context cancellation before
// starting I/O; once a write has begun it runs to completion.
type SiteStorage interface {
	// CreateSiteDir creates the account's root directory.
	// Returns ErrAlreadyExists if the directory is present.
	CreateSiteDir(ctx context.Context, username string) error

	// SiteDirExists reports whether the account directory exists.
	SiteDirExists(ctx context.Context, username string) (bool, error)

	// FileSize returns the size of a stored file, or ErrNotFound.
	FileSize(ctx context.Context, username, filename string) (int64, error)

	// PlaceUpload moves the temp file at tempPath into the account
	// directory under filename with a single rename, replacing any
	// existing file. The temp file must be on the same filesystem.
	// declaredSize is verified against the temp file before the move.
	PlaceUpload(ctx context.Context, username, filename, tempPath string, declaredSize int64) error

	// WriteFile atomically replaces filename with data (temp file + rename).
	WriteFile(ctx context.Context, username, filename string, data []byte) error

	// CreateFile writes data to filename, failing with ErrAlreadyExists
	// if the file is already present.
	CreateFile(ctx context.Context, username, filename string, data []byte) error

	// DeleteFile removes a stored file and returns the bytes freed.
	// Returns ErrNotFound if the file is absent.
	DeleteFile(ctx context.Context, username, filename string) (int64, error)

	// ReadFile opens a stored file for reading, or ErrNotFound.
	ReadFile(ctx context.Context, username, filename string) (io.ReadCloser, error)

	// ListFiles enumerates the account's stored files, sorted by name.
	ListFiles(ctx context.Context, username string) ([]model.FileEntry, error)

	// RenameSiteDir moves the whole account directory to a new username
	// with a single rename. Returns ErrAlreadyExists if the target
	// directory exists, ErrNotFound if the source does not.
	RenameSiteDir(ctx context.Context, oldUsername, newUsername string) error

	// QuarantineSiteDir moves the account directory under the quarantine
	// root. The directory is moved, never deleted.
	QuarantineSiteDir(ctx context.Context, username string) error
}
