package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sitekeeper/internal/database/migrations"
	"sitekeeper/internal/model"
	"sitekeeper/internal/site"

	"github.com/mattn/go-sqlite3"
)

// SQLiteAccountStore implements site.AccountStore using SQLite.
type SQLiteAccountStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteAccountStore opens a SQLite-backed account store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteAccountStore(path string) (*SQLiteAccountStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteAccountStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the store relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// CheckMigrations verifies the schema is at the latest version.
func (s *SQLiteAccountStore) CheckMigrations() error {
	return migrations.Check(s.db)
}

// Migrate brings the schema to the latest version.
func (s *SQLiteAccountStore) Migrate() error {
	return migrations.Up(s.db)
}

const accountColumns = `id, username, email, ip, total_space_used, changed_count, site_changed, is_banned, is_nsfw, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.IP, &a.TotalSpaceUsed,
		&a.ChangedCount, &a.SiteChanged, &a.IsBanned, &a.IsNSFW, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteAccountStore) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding account by username: %w", err)
	}
	return account, nil
}

func (s *SQLiteAccountStore) FindByIP(ctx context.Context, ip string) ([]*model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE ip = ? ORDER BY username`, ip)
	if err != nil {
		return nil, fmt.Errorf("finding accounts by address: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

func (s *SQLiteAccountStore) Create(ctx context.Context, account *model.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Username, account.Email, account.IP,
		account.TotalSpaceUsed, account.ChangedCount, account.SiteChanged,
		account.IsBanned, account.IsNSFW, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", account.Username, site.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

func (s *SQLiteAccountStore) CommitUsage(ctx context.Context, username string, totalSpaceUsed, changedCount int64, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET total_space_used = ?, changed_count = ?, updated_at = ? WHERE username = ?`,
		totalSpaceUsed, changedCount, updatedAt, username)
	if err != nil {
		return fmt.Errorf("updating usage: %w", err)
	}
	return requireRow(res, username)
}

func (s *SQLiteAccountStore) SetSiteChanged(ctx context.Context, username string, changed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET site_changed = ? WHERE username = ?`, changed, username)
	if err != nil {
		return fmt.Errorf("updating site_changed: %w", err)
	}
	return requireRow(res, username)
}

func (s *SQLiteAccountStore) SetBanned(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET is_banned = 1 WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("updating is_banned: %w", err)
	}
	return requireRow(res, username)
}

func (s *SQLiteAccountStore) SetNSFW(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET is_nsfw = 1 WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("updating is_nsfw: %w", err)
	}
	return requireRow(res, username)
}

func (s *SQLiteAccountStore) Rename(ctx context.Context, oldUsername, newUsername string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET username = ? WHERE username = ?`, newUsername, oldUsername)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", newUsername, site.ErrAlreadyExists)
		}
		return fmt.Errorf("renaming account: %w", err)
	}
	return requireRow(res, oldUsername)
}

func (s *SQLiteAccountStore) Close() error {
	return s.db.Close()
}

// requireRow converts a zero-row update into ErrAccountNotFound so callers
// notice updates against records that vanished underneath them.
func requireRow(res sql.Result, username string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("username %q: %w", username, site.ErrAccountNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Compile-time check that SQLiteAccountStore implements site.AccountStore
var _ site.AccountStore = (*SQLiteAccountStore)(nil)
