package domain

import (
	"path/filepath"
	"strings"
)

// ImageEntry is one scanned source image tracked for the whole session.
type ImageEntry struct {
	ID          string // Source filename, e.g. "IMG_0042.JPG"
	Ext         string // Original extension taken verbatim, e.g. ".JPG"
	DesiredName string // Output base name without extension
	Export      bool
	Renamed     bool  // True once the user committed a name explicitly
	Size        int64 // Bytes, as seen at scan time
}

// NewImageEntry creates an entry with the default naming state:
// the filename stem as desired name, flagged for export, not renamed.
func NewImageEntry(filename string, size int64) ImageEntry {
	return ImageEntry{
		ID:          filename,
		Ext:         filepath.Ext(filename),
		DesiredName: Stem(filename),
		Export:      true,
		Renamed:     false,
		Size:        size,
	}
}

// Stem returns the filename without its extension.
// "photo.jpeg" -> "photo", "archive.tar.gz" -> "archive.tar"
func Stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// OutputFilename is the name the entry is exported under.
func (e ImageEntry) OutputFilename() string {
	return e.DesiredName + e.Ext
}

// IsDefaultName reports whether the desired name still matches the source stem.
func (e ImageEntry) IsDefaultName() bool {
	return e.DesiredName == Stem(e.ID)
}
