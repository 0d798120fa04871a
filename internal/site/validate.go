package site

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sniffer detects the actual media type of a file from its content.
// Implementations return a bare media type like "image/png", without
// parameters. The declared Content-Type of an upload is never trusted;
// only the sniffed type counts.
type Sniffer interface {
	Sniff(path string) (string, error)
}

// DefaultExtensions is the stock allow-list of file extensions.
var DefaultExtensions = []string{
	"html", "htm", "txt", "text", "css", "js", "md", "markdown",
	"jpg", "jpeg", "png", "gif", "svg",
}

// DefaultMIMETypes is the stock allow-list of sniffed media types. Any
// "text/*" type is additionally accepted without being listed.
var DefaultMIMETypes = []string{
	"text/plain", "text/html", "text/css",
	"application/javascript", "text/javascript",
	"image/png", "image/jpeg", "image/gif", "image/svg+xml",
	"application/xml",
}

// ContentValidator checks uploaded content against the extension and media
// type allow-lists. Size is the quota's concern and filename safety the
// sanitizer's; the validator does neither.
type ContentValidator struct {
	sniffer    Sniffer
	extensions map[string]bool
	mimeTypes  map[string]bool
}

// NewContentValidator creates a validator with the given allow-lists.
// Empty slices fall back to the defaults.
func NewContentValidator(sniffer Sniffer, extensions, mimeTypes []string) *ContentValidator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(mimeTypes) == 0 {
		mimeTypes = DefaultMIMETypes
	}
	v := &ContentValidator{
		sniffer:    sniffer,
		extensions: make(map[string]bool, len(extensions)),
		mimeTypes:  make(map[string]bool, len(mimeTypes)),
	}
	for _, ext := range extensions {
		v.extensions[strings.ToLower(ext)] = true
	}
	for _, mt := range mimeTypes {
		v.mimeTypes[strings.ToLower(mt)] = true
	}
	return v
}

// Validate checks the file at tempPath against both allow-lists using the
// sanitized declared filename for the extension. Both checks must pass.
// Failures are *ValidationError with a reason the caller can show the user;
// sniffing failures are plain errors (storage trouble, not bad content).
func (v *ContentValidator) Validate(tempPath, filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !v.extensions[ext] {
		return &ValidationError{
			Kind:   RejectExtension,
			Reason: fmt.Sprintf("file extension %q is not supported", ext),
		}
	}

	mediaType, err := v.sniffer.Sniff(tempPath)
	if err != nil {
		return fmt.Errorf("sniffing content type: %w", err)
	}
	mediaType = strings.ToLower(mediaType)
	if !v.mimeTypes[mediaType] && !strings.HasPrefix(mediaType, "text/") {
		return &ValidationError{
			Kind:   RejectContentType,
			Reason: fmt.Sprintf("file type %q is not supported", mediaType),
		}
	}

	return nil
}
