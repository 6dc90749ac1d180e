package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

// DirScanner lists image files directly inside a directory
type DirScanner struct {
	extensions map[string]struct{}
}

// NewDirScanner matches file extensions exactly, so ".JPG" and ".jpg"
// must be listed separately
func NewDirScanner(extensions []string) *DirScanner {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[ext] = struct{}{}
	}
	return &DirScanner{extensions: set}
}

// Matches reports whether name has one of the configured extensions
func (s *DirScanner) Matches(name string) bool {
	_, ok := s.extensions[filepath.Ext(name)]
	return ok
}

// Scan returns entries sorted by filename. Sub-directories are not descended.
func (s *DirScanner) Scan(ctx context.Context, dir string) ([]domain.ImageEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var entries []domain.ImageEntry
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() || !s.Matches(de.Name()) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info
			slog.Warn("skipping unreadable file", "file", de.Name(), "err", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		entries = append(entries, domain.NewImageEntry(de.Name(), info.Size()))
	}

	slog.Debug("scanned source directory", "dir", dir, "images", len(entries))
	return entries, nil
}
