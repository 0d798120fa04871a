package testutil

import (
	"context"
	"testing"
	"time"

	"sitekeeper/internal/config"
	"sitekeeper/internal/database"
	"sitekeeper/internal/site"
)

// NewTestAccountStore creates an in-memory SQLite account store with the
// schema applied. The store is automatically closed when the test completes.
func NewTestAccountStore(t *testing.T) site.AccountStore {
	t.Helper()

	store, err := database.NewAccountStoreFromConfig(config.DatabaseConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("failed to open account store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// FailingAccountStore wraps an AccountStore and makes CommitUsage return
// CommitErr while it is set. Every other method passes through.
type FailingAccountStore struct {
	site.AccountStore

	CommitErr error
}

var _ site.AccountStore = (*FailingAccountStore)(nil)

func (f *FailingAccountStore) CommitUsage(ctx context.Context, username string, totalSpaceUsed, changedCount int64, updatedAt time.Time) error {
	if f.CommitErr != nil {
		return f.CommitErr
	}
	return f.AccountStore.CommitUsage(ctx, username, totalSpaceUsed, changedCount, updatedAt)
}
