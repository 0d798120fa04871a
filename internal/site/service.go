package site

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sitekeeper/internal/model"
)

// SiteService is the orchestration layer for account file storage. Every
// mutating operation owns its full sanitize -> validate -> reserve quota ->
// write -> commit accounting sequence under a per-account lock, so the quota
// invariant (total_space_used equals the sum of on-disk sizes) holds after
// every call.
//
// Ordering discipline: the filesystem write always happens before the
// accounting update. A failure between the two surfaces as an error and is
// never silently dropped; the mismatch is an operator-reconciliation
// concern, not something the service guesses its way out of.
type SiteService struct {
	accounts    AccountStore
	storage     SiteStorage
	quota       *QuotaLedger
	validator   *ContentValidator
	signal      *ChangeSignal
	screenshots ScreenshotQueue
	netpolicy   NetworkPolicy
	locks       *accountLocks
	logger      Logger
	clock       Clock
	idgen       IDGenerator
}

// NewSiteService creates a SiteService with the provided dependencies.
func NewSiteService(accounts AccountStore, storage SiteStorage, quota *QuotaLedger, validator *ContentValidator, signal *ChangeSignal, screenshots ScreenshotQueue, netpolicy NetworkPolicy, logger Logger, clock Clock, idgen IDGenerator) *SiteService {
	return &SiteService{
		accounts:    accounts,
		storage:     storage,
		quota:       quota,
		validator:   validator,
		signal:      signal,
		screenshots: screenshots,
		netpolicy:   netpolicy,
		locks:       newAccountLocks(),
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
	}
}

// CreateAccount creates the account's storage directory, writes the two
// generated template files (entry page and not-found page), then inserts the
// account record. Template rendering happens elsewhere; the service only
// writes the bytes it is given. Scaffolding skips the quota check but its
// bytes still count toward total_space_used, keeping the accounting invariant
// intact. The record insert follows the scaffold writes, so a failed scaffold
// never leaves a record claiming usage for files that do not exist.
func (s *SiteService) CreateAccount(ctx context.Context, account *model.Account, entryPage, notFoundPage []byte) error {
	username, err := SanitizeFilename(account.Username)
	if err != nil || username != account.Username {
		return fmt.Errorf("username %q: %w", account.Username, ErrInvalidName)
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	if existing, err := s.accounts.FindByUsername(ctx, username); err != nil {
		return fmt.Errorf("checking username: %w", err)
	} else if existing != nil {
		return fmt.Errorf("username %q: %w", username, ErrAlreadyExists)
	}

	if err := s.storage.CreateSiteDir(ctx, username); err != nil {
		return fmt.Errorf("creating site directory: %w", err)
	}
	if err := s.storage.CreateFile(ctx, username, s.signal.EntryPage(), entryPage); err != nil {
		return fmt.Errorf("writing entry page template: %w", err)
	}
	if err := s.storage.CreateFile(ctx, username, "not_found.html", notFoundPage); err != nil {
		return fmt.Errorf("writing not-found template: %w", err)
	}

	now := s.clock.Now()
	account.ID = s.idgen.New()
	account.TotalSpaceUsed = int64(len(entryPage) + len(notFoundPage))
	account.ChangedCount = 0
	account.CreatedAt = now
	account.UpdatedAt = now
	if err := s.accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("account record insert after scaffold: %w", err)
	}

	s.logger.Info("account created", "username", username)
	return nil
}

// CreatePage scaffolds a new page from a caller-supplied template. The raw
// name is sanitized, any ".html" suffix dropped, and the suffix re-appended,
// so "about" and "About.HTML" both create "about.html". Fails with
// ErrAlreadyExists if the page is present. Like account creation, scaffolding
// skips the quota check; the template bytes still count toward usage, and the
// changed counter stays put since no user content was written.
func (s *SiteService) CreatePage(ctx context.Context, username, rawName string, template []byte) (string, error) {
	name, err := SanitizePageName(rawName)
	if err != nil {
		return "", err
	}
	filename := name + ".html"

	unlock := s.locks.Lock(username)
	defer unlock()

	account, err := s.lookupAccount(ctx, username)
	if err != nil {
		return "", err
	}
	if err := s.storage.CreateFile(ctx, username, filename, template); err != nil {
		return "", err
	}
	newTotal := account.TotalSpaceUsed + int64(len(template))
	if err := s.accounts.CommitUsage(ctx, username, newTotal, account.ChangedCount, s.clock.Now()); err != nil {
		return "", fmt.Errorf("accounting update after scaffold: %w", err)
	}

	s.logger.Info("page created", "username", username, "filename", filename)
	return filename, nil
}

// UploadFile runs the full upload pipeline: sanitize the declared name,
// validate the content, reserve quota (crediting any same-named file being
// replaced), move the temp file into place with a single rename, then commit
// accounting and raise the change signal if the entry page was written.
// Returns the sanitized filename actually used.
func (s *SiteService) UploadFile(ctx context.Context, username, tempPath, declaredName string, declaredSize int64) (string, error) {
	if declaredSize == 0 {
		return "", ErrEmptyUpload
	}
	filename, err := SanitizeFilename(declaredName)
	if err != nil {
		return "", err
	}
	if err := s.validator.Validate(tempPath, filename); err != nil {
		return "", err
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	account, err := s.lookupAccount(ctx, username)
	if err != nil {
		return "", err
	}

	replacing, err := s.existingSize(ctx, username, filename)
	if err != nil {
		return "", err
	}
	newTotal, err := s.quota.Reserve(account.TotalSpaceUsed, declaredSize, replacing)
	if err != nil {
		return "", err
	}

	if err := s.storage.PlaceUpload(ctx, username, filename, tempPath, declaredSize); err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	if err := s.commitMutation(ctx, account, newTotal, filename); err != nil {
		return "", err
	}

	s.logger.Info("file uploaded", "username", username, "filename", filename, "size", declaredSize)
	return filename, nil
}

// SaveFile replaces a file's content with raw bytes, as the in-browser text
// editor does. Quota and change-signal semantics match UploadFile; content
// validation is skipped because the file was validated when it was created.
func (s *SiteService) SaveFile(ctx context.Context, username, rawName string, body []byte) error {
	filename, err := SanitizeFilename(rawName)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	account, err := s.lookupAccount(ctx, username)
	if err != nil {
		return err
	}

	replacing, err := s.existingSize(ctx, username, filename)
	if err != nil {
		return err
	}
	newTotal, err := s.quota.Reserve(account.TotalSpaceUsed, int64(len(body)), replacing)
	if err != nil {
		return err
	}

	if err := s.storage.WriteFile(ctx, username, filename, body); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	if err := s.commitMutation(ctx, account, newTotal, filename); err != nil {
		return err
	}

	s.logger.Info("file saved", "username", username, "filename", filename, "size", len(body))
	return nil
}

// DeleteFile removes a stored file and decrements the account's usage.
// ErrNotFound means the file was already gone; the caller treats it as a
// soft outcome, and no accounting field changes.
func (s *SiteService) DeleteFile(ctx context.Context, username, rawName string) error {
	filename, err := SanitizeFilename(rawName)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	account, err := s.lookupAccount(ctx, username)
	if err != nil {
		return err
	}

	freed, err := s.storage.DeleteFile(ctx, username, filename)
	if err != nil {
		return err
	}

	// Deletion is not a content change, so the changed counter stays put.
	if err := s.accounts.CommitUsage(ctx, username, account.TotalSpaceUsed-freed, account.ChangedCount, s.clock.Now()); err != nil {
		return fmt.Errorf("accounting update after delete: %w", err)
	}

	s.logger.Info("file deleted", "username", username, "filename", filename, "freed", freed)
	return nil
}

// ReadFile opens a stored file for the text editor or a download.
// Returns ErrNotFound if the file is absent.
func (s *SiteService) ReadFile(ctx context.Context, username, rawName string) (io.ReadCloser, error) {
	filename, err := SanitizeFilename(rawName)
	if err != nil {
		return nil, err
	}
	return s.storage.ReadFile(ctx, username, filename)
}

// ListFiles enumerates the account's stored files with sizes.
func (s *SiteService) ListFiles(ctx context.Context, username string) ([]model.FileEntry, error) {
	return s.storage.ListFiles(ctx, username)
}

// ExportArchive packs the account's current files into a zip and returns
// its bytes. The caller transmits and discards the archive; nothing is
// retained server side. The snapshot may be stale by delivery time, which
// is acceptable for a user-requested download.
func (s *SiteService) ExportArchive(ctx context.Context, username string) ([]byte, error) {
	if _, err := s.lookupAccount(ctx, username); err != nil {
		return nil, err
	}
	data, err := buildArchive(ctx, s.storage, username)
	if err != nil {
		return nil, err
	}
	s.logger.Info("archive exported", "username", username, "bytes", len(data))
	return data, nil
}

// RenameAccount moves the whole account, directory and record, to a new
// username. The directory move is a single rename, so there is never a
// moment where neither name holds the content. The record update follows
// the move; a failure between the two surfaces to the caller.
func (s *SiteService) RenameAccount(ctx context.Context, oldUsername, newUsername string) error {
	sanitized, err := SanitizeFilename(newUsername)
	if err != nil || sanitized != newUsername {
		return fmt.Errorf("username %q: %w", newUsername, ErrInvalidName)
	}
	if oldUsername == newUsername {
		return fmt.Errorf("username unchanged: %w", ErrAlreadyExists)
	}

	unlock := s.locks.Lock2(oldUsername, newUsername)
	defer unlock()

	if _, err := s.lookupAccount(ctx, oldUsername); err != nil {
		return err
	}
	if existing, err := s.accounts.FindByUsername(ctx, newUsername); err != nil {
		return fmt.Errorf("checking target username: %w", err)
	} else if existing != nil {
		return fmt.Errorf("username %q: %w", newUsername, ErrAlreadyExists)
	}

	if err := s.storage.RenameSiteDir(ctx, oldUsername, newUsername); err != nil {
		return err
	}
	if err := s.accounts.Rename(ctx, oldUsername, newUsername); err != nil {
		return fmt.Errorf("account record rename after directory move: %w", err)
	}

	s.logger.Info("account renamed", "old", oldUsername, "new", newUsername)
	return nil
}

// BanAccount moves the account's directory into quarantine, marks the record
// banned, and blocks the address it registered from. The directory is moved,
// not deleted. Banning an already-banned account returns ErrAlreadyBanned
// and performs no filesystem move.
func (s *SiteService) BanAccount(ctx context.Context, username string) error {
	unlock := s.locks.Lock(username)
	defer unlock()
	return s.banLocked(ctx, username)
}

func (s *SiteService) banLocked(ctx context.Context, username string) error {
	account, err := s.lookupAccount(ctx, username)
	if err != nil {
		return err
	}
	if account.IsBanned {
		return ErrAlreadyBanned
	}

	if err := s.storage.QuarantineSiteDir(ctx, username); err != nil {
		return fmt.Errorf("quarantining site directory: %w", err)
	}
	if err := s.accounts.SetBanned(ctx, username); err != nil {
		return fmt.Errorf("account record update after quarantine: %w", err)
	}

	if blockable(account.IP) {
		if err := s.netpolicy.BlockIP(account.IP); err != nil {
			// The ban itself stands; the block is retried by the operator.
			s.logger.Warn("blocking banned account address failed", "username", username, "ip", account.IP, "error", err)
		}
	}

	s.logger.Info("account banned", "username", username)
	return nil
}

// BanAccountsByIP bans every non-banned account registered from the given
// address and returns how many were banned. Accounts already banned are
// skipped, not errors.
func (s *SiteService) BanAccountsByIP(ctx context.Context, ip string) (int, error) {
	accounts, err := s.accounts.FindByIP(ctx, ip)
	if err != nil {
		return 0, fmt.Errorf("finding accounts by address: %w", err)
	}

	banned := 0
	for _, account := range accounts {
		unlock := s.locks.Lock(account.Username)
		err := s.banLocked(ctx, account.Username)
		unlock()
		if err != nil {
			if errors.Is(err, ErrAlreadyBanned) {
				continue
			}
			return banned, err
		}
		banned++
	}
	return banned, nil
}

// MarkNSFW flags the account as not-safe-for-work.
func (s *SiteService) MarkNSFW(ctx context.Context, username string) error {
	unlock := s.locks.Lock(username)
	defer unlock()

	if _, err := s.lookupAccount(ctx, username); err != nil {
		return err
	}
	if err := s.accounts.SetNSFW(ctx, username); err != nil {
		return fmt.Errorf("marking account NSFW: %w", err)
	}
	s.logger.Info("account marked NSFW", "username", username)
	return nil
}

// lookupAccount fetches the account record, mapping a missing record to
// ErrAccountNotFound.
func (s *SiteService) lookupAccount(ctx context.Context, username string) (*model.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("finding account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("username %q: %w", username, ErrAccountNotFound)
	}
	return account, nil
}

// existingSize returns the size of a same-named stored file, or zero when
// the write is not replacing anything.
func (s *SiteService) existingSize(ctx context.Context, username, filename string) (int64, error) {
	size, err := s.storage.FileSize(ctx, username, filename)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("checking existing file: %w", err)
	}
	return size, nil
}

// commitMutation records the accounting for a successful content write and
// raises the change signal when the entry page was touched. The filesystem
// write has already succeeded by the time this runs; any error here is
// surfaced so the books can be reconciled rather than silently diverging.
func (s *SiteService) commitMutation(ctx context.Context, account *model.Account, newTotal int64, filename string) error {
	if err := s.accounts.CommitUsage(ctx, account.Username, newTotal, account.ChangedCount+1, s.clock.Now()); err != nil {
		return fmt.Errorf("accounting update after write: %w", err)
	}

	if !s.signal.IsEntryPage(filename) {
		return nil
	}

	if err := s.accounts.SetSiteChanged(ctx, account.Username, true); err != nil {
		return fmt.Errorf("flagging site change: %w", err)
	}
	job := model.ScreenshotJob{
		ID:         s.idgen.New(),
		Username:   account.Username,
		EnqueuedAt: s.clock.Now(),
	}
	if err := s.screenshots.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueueing screenshot job: %w", err)
	}

	s.logger.Debug("site change signaled", "username", account.Username, "job", job.ID)
	return nil
}

// blockable reports whether an address is worth handing to the network
// policy. Loopback and empty addresses are skipped.
func blockable(ip string) bool {
	return ip != "" && ip != "127.0.0.1" && ip != "::1"
}
