package site

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
)

// buildArchive packs every current file of the account into a zip held in
// memory. The listing is a point-in-time snapshot; a file deleted between
// the listing and the read is skipped rather than failing the export.
func buildArchive(ctx context.Context, storage SiteStorage, username string) ([]byte, error) {
	entries, err := storage.ListFiles(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range entries {
		rc, err := storage.ReadFile(ctx, username, entry.Name)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			zw.Close()
			return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
		}

		w, err := zw.Create(entry.Name)
		if err != nil {
			rc.Close()
			zw.Close()
			return nil, fmt.Errorf("adding %s to archive: %w", entry.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()
			zw.Close()
			return nil, fmt.Errorf("writing %s to archive: %w", entry.Name, err)
		}
		rc.Close()
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}
