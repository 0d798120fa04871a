package site

import (
	"context"
	"time"

	"sitekeeper/internal/model"
)

// AccountStore persists account records. The storage core reads and writes
// only the fields it owns: usage accounting, the changed counter, the
// site_changed flag, and the banned/NSFW markers.
type AccountStore interface {
	// FindByUsername returns the account record, or nil if none exists.
	FindByUsername(ctx context.Context, username string) (*model.Account, error)

	// FindByIP returns every account registered from the given address.
	FindByIP(ctx context.Context, ip string) ([]*model.Account, error)

	// Create inserts a new account record.
	// Returns ErrAlreadyExists if the username is taken.
	Create(ctx context.Context, account *model.Account) error

	// CommitUsage records the accounting outcome of a successful mutation:
	// the new byte total, the changed counter, and the mutation time.
	CommitUsage(ctx context.Context, username string, totalSpaceUsed, changedCount int64, updatedAt time.Time) error

	// SetSiteChanged sets or clears the entry-page-changed flag.
	SetSiteChanged(ctx context.Context, username string, changed bool) error

	// SetBanned marks the account banned.
	SetBanned(ctx context.Context, username string) error

	// SetNSFW marks the account as not-safe-for-work.
	SetNSFW(ctx context.Context, username string) error

	// Rename changes the account's username.
	// Returns ErrAlreadyExists if the new username is taken.
	Rename(ctx context.Context, oldUsername, newUsername string) error

	// Close releases the underlying connection.
	Close() error
}
