package site

import (
	"fmt"
	"strings"
)

// safeNameChar reports whether c is allowed in a stored filename.
// The allow-list matches [A-Za-z0-9_.-]; everything else is stripped,
// which guarantees the result is a single path segment.
func safeNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-':
		return true
	}
	return false
}

// SanitizeFilename reduces a raw, untrusted filename to the safe character
// set. Stripping is removal, not replacement, so sanitizing an already-clean
// name is a no-op. An empty result is ErrInvalidName.
func SanitizeFilename(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if safeNameChar(raw[i]) {
			b.WriteByte(raw[i])
		}
	}
	name := b.String()
	if name == "" {
		return "", fmt.Errorf("filename %q: %w", raw, ErrInvalidName)
	}
	return name, nil
}

// SanitizePageName sanitizes a raw page name and drops one trailing ".html"
// suffix (any case). Page creation re-appends the suffix itself, so
// "about.html" and "about" name the same page.
func SanitizePageName(raw string) (string, error) {
	name, err := SanitizeFilename(raw)
	if err != nil {
		return "", err
	}
	if n := len(name) - len(".html"); n >= 0 && strings.EqualFold(name[n:], ".html") {
		name = name[:n]
	}
	if name == "" {
		return "", fmt.Errorf("page name %q: %w", raw, ErrInvalidName)
	}
	return name, nil
}
