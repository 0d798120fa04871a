package model

import "time"

// Account represents a registered site owner. The username doubles as the
// name of the account's storage directory.
type Account struct {
	ID             string // UUID
	Username       string
	Email          string
	IP             string // address the account registered from; may be empty
	TotalSpaceUsed int64  // bytes occupied by the account's files on disk
	ChangedCount   int64  // number of successful content mutations
	SiteChanged    bool   // entry page has been written since the last screenshot
	IsBanned       bool
	IsNSFW         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FileEntry describes one stored file in an account directory.
type FileEntry struct {
	Name string
	Size int64
}

// ScreenshotJob is the payload handed to the asynchronous screenshot worker
// when an account's entry page changes.
type ScreenshotJob struct {
	ID         string    `json:"jid"`
	Username   string    `json:"username"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
