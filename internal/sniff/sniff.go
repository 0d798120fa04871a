package sniff

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"sitekeeper/internal/site"
)

// MagicSniffer detects media types from file content using magic bytes.
// It implements site.Sniffer; the declared Content-Type of an upload never
// reaches it.
type MagicSniffer struct{}

func NewMagicSniffer() *MagicSniffer { return &MagicSniffer{} }

// Sniff returns the bare media type of the file at path, without parameters,
// e.g. "image/png" rather than "text/html; charset=utf-8".
func (*MagicSniffer) Sniff(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detecting content type: %w", err)
	}
	mediaType := mtype.String()
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType, nil
}

// Compile-time check that MagicSniffer implements site.Sniffer
var _ site.Sniffer = (*MagicSniffer)(nil)
