package testutil

import "sync"

// StubSniffer reports a canned MIME type per path, falling back to Default.
type StubSniffer struct {
	mu      sync.Mutex
	Default string
	byPath  map[string]string
}

// NewStubSniffer creates a StubSniffer that reports mimeType for every path.
func NewStubSniffer(mimeType string) *StubSniffer {
	return &StubSniffer{
		Default: mimeType,
		byPath:  make(map[string]string),
	}
}

// SetType overrides the reported type for one path.
func (s *StubSniffer) SetType(path, mimeType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPath[path] = mimeType
}

func (s *StubSniffer) Sniff(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byPath[path]; ok {
		return t, nil
	}
	return s.Default, nil
}
