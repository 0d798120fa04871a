package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"sitekeeper/internal/config"
	"sitekeeper/internal/database"
	"sitekeeper/internal/model"
	"sitekeeper/internal/netpolicy"
	"sitekeeper/internal/queue"
	"sitekeeper/internal/site"
	"sitekeeper/internal/sniff"
	"sitekeeper/internal/storage"
)

// SiteApp is the application layer between the CLI and SiteService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings and local paths, and manages resource lifecycles
// on Close. Each operation runs under the configured storage timeout.
type SiteApp struct {
	cfg         *config.Config
	accounts    *database.SQLiteAccountStore
	storage     *storage.OSSiteStorage
	screenshots site.ScreenshotQueue
	service     *site.SiteService
	tmpDir      string
	logFile     *os.File
}

// NewSiteApp creates a fully wired SiteApp from the given config.
// operation identifies the CLI command being run (e.g. "UploadFile", "BanAccount").
// The caller must call Close when done.
func NewSiteApp(cfg *config.Config, operation string) (*SiteApp, error) {
	store, err := storage.NewOSSiteStorage(cfg.Storage.Root, cfg.Storage.QuarantineRoot)
	if err != nil {
		return nil, fmt.Errorf("creating site storage: %w", err)
	}

	accounts, err := database.NewAccountStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating account store: %w", err)
	}

	if cfg.Database.Type == "sqlite" {
		if err := accounts.Migrate(); err != nil {
			accounts.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		if err := accounts.CheckMigrations(); err != nil {
			accounts.Close()
			return nil, fmt.Errorf("database schema out of date: %w", err)
		}
	}

	screenshots, err := queue.NewQueueFromConfig(context.Background(), cfg.Screenshots)
	if err != nil {
		accounts.Close()
		return nil, fmt.Errorf("creating screenshot queue: %w", err)
	}

	policy, err := netpolicy.NewPolicyFromConfig(cfg.Network)
	if err != nil {
		accounts.Close()
		return nil, fmt.Errorf("creating network policy: %w", err)
	}

	tmpDir := filepath.Join(cfg.BaseDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		accounts.Close()
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID+" "+operation)
	if err != nil {
		accounts.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	validator := site.NewContentValidator(sniff.NewMagicSniffer(),
		cfg.Content.AllowedExtensions, cfg.Content.AllowedMIMETypes)
	svc := site.NewSiteService(
		accounts,
		store,
		site.NewQuotaLedger(cfg.Quota.MaxSpace),
		validator,
		site.NewChangeSignal(cfg.Content.EntryPage),
		screenshots,
		policy,
		&slogAdapter{l: logger},
		site.RealClock{},
		site.UUIDGenerator{},
	)

	return &SiteApp{
		cfg:         cfg,
		accounts:    accounts,
		storage:     store,
		screenshots: screenshots,
		service:     svc,
		tmpDir:      tmpDir,
		logFile:     logFile,
	}, nil
}

// opCtx returns a context bounded by the configured storage timeout.
func (a *SiteApp) opCtx() (context.Context, context.CancelFunc) {
	if a.cfg.OpTimeoutSeconds <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), time.Duration(a.cfg.OpTimeoutSeconds)*time.Second)
}

// CreateAccount registers a new account and scaffolds its site with the
// generated entry and not-found pages.
func (a *SiteApp) CreateAccount(username, email, ip string, nsfw bool) error {
	ctx, cancel := a.opCtx()
	defer cancel()

	account := &model.Account{
		Username: username,
		Email:    email,
		IP:       ip,
		IsNSFW:   nsfw,
	}
	return a.service.CreateAccount(ctx, account,
		[]byte(renderEntryPage(username)), []byte(notFoundPage))
}

// CreatePage scaffolds a new page and returns the filename created.
func (a *SiteApp) CreatePage(username, rawName string) (string, error) {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.CreatePage(ctx, username, rawName, []byte(renderEntryPage(username)))
}

// UploadFile copies the local file at sourcePath into a temp file and runs
// the upload pipeline, mirroring how an HTTP multipart upload arrives as a
// temp file plus a declared name and size. Returns the stored filename.
func (a *SiteApp) UploadFile(username, sourcePath string) (string, error) {
	ctx, cancel := a.opCtx()
	defer cancel()

	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("stat source file: %w", err)
	}

	tempPath, err := a.stageTemp(sourcePath)
	if err != nil {
		return "", err
	}
	defer os.Remove(tempPath) // gone already if the upload succeeded

	return a.service.UploadFile(ctx, username, tempPath, filepath.Base(sourcePath), info.Size())
}

// SaveFile replaces a stored file's content with the bytes of a local file.
func (a *SiteApp) SaveFile(username, filename, sourcePath string) error {
	ctx, cancel := a.opCtx()
	defer cancel()

	body, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}
	return a.service.SaveFile(ctx, username, filename, body)
}

// DeleteFile removes a stored file.
func (a *SiteApp) DeleteFile(username, filename string) error {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.DeleteFile(ctx, username, filename)
}

// ListFiles enumerates an account's stored files.
func (a *SiteApp) ListFiles(username string) ([]model.FileEntry, error) {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.ListFiles(ctx, username)
}

// DownloadFile writes a stored file's content to w.
func (a *SiteApp) DownloadFile(username, filename string, w io.Writer) error {
	ctx, cancel := a.opCtx()
	defer cancel()

	rc, err := a.service.ReadFile(ctx, username, filename)
	if err != nil {
		return err
	}
	defer rc.Close()

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("copying file content: %w", err)
	}
	return nil
}

// ExportArchive returns a zip of the account's current files.
func (a *SiteApp) ExportArchive(username string) ([]byte, error) {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.ExportArchive(ctx, username)
}

// RenameAccount moves an account to a new username.
func (a *SiteApp) RenameAccount(oldUsername, newUsername string) error {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.RenameAccount(ctx, oldUsername, newUsername)
}

// BanAccount quarantines an account's site and marks it banned.
func (a *SiteApp) BanAccount(username string) error {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.BanAccount(ctx, username)
}

// BanAccountsByIP bans every account sharing the given account's registered
// address and returns how many were banned.
func (a *SiteApp) BanAccountsByIP(username string) (int, error) {
	ctx, cancel := a.opCtx()
	defer cancel()

	account, err := a.accounts.FindByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("finding account: %w", err)
	}
	if account == nil {
		return 0, fmt.Errorf("username %q: %w", username, site.ErrAccountNotFound)
	}
	if account.IP == "" {
		return 0, fmt.Errorf("account %q has no recorded address", username)
	}
	return a.service.BanAccountsByIP(ctx, account.IP)
}

// MarkNSFW flags an account as not-safe-for-work.
func (a *SiteApp) MarkNSFW(username string) error {
	ctx, cancel := a.opCtx()
	defer cancel()
	return a.service.MarkNSFW(ctx, username)
}

// stageTemp copies sourcePath into the app temp directory, which lives on
// the same filesystem as the storage root so the final move is one rename.
func (a *SiteApp) stageTemp(sourcePath string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp(a.tmpDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, src); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("staging upload: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return tmpPath, nil
}

// Close releases the log file, queue connection, and database.
func (a *SiteApp) Close() error {
	var firstErr error

	if closer, ok := a.screenshots.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing screenshot queue: %w", err)
		}
	}
	if err := a.accounts.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing account store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
