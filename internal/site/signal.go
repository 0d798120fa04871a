package site

import "strings"

// ChangeSignal decides whether a write touched the account's published entry
// page. It is a pure predicate: setting the site_changed flag and queueing
// the screenshot job are the caller's responsibility.
type ChangeSignal struct {
	entryPage string
}

// NewChangeSignal creates a signal for the given entry page name,
// conventionally "index.html".
func NewChangeSignal(entryPage string) *ChangeSignal {
	return &ChangeSignal{entryPage: entryPage}
}

// EntryPage returns the configured entry page name.
func (s *ChangeSignal) EntryPage() string {
	return s.entryPage
}

// IsEntryPage reports whether filename names the entry page. The match is
// case-insensitive and exact: "Index.HTML" matches, "my_index.html" does not.
func (s *ChangeSignal) IsEntryPage(filename string) bool {
	return strings.EqualFold(filename, s.entryPage)
}
