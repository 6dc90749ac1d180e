package copier

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

var ErrSameFile = errors.New("source and destination are the same file")

// FileCopier copies whole files and carries the source modification time
// over to the copy
type FileCopier struct{}

func NewFileCopier() *FileCopier {
	return &FileCopier{}
}

// Copy writes src to dst, replacing dst if it exists. On failure the
// partially written dst is removed.
func (c *FileCopier) Copy(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if existing, statErr := os.Stat(dst); statErr == nil && os.SameFile(info, existing) {
		// Truncating dst would destroy src
		return ErrSameFile
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("failed to remove partial copy", "dest", dst, "err", rmErr)
			}
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy data: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to finish destination: %w", err)
	}

	mtime := info.ModTime()
	if chErr := os.Chtimes(dst, mtime, mtime); chErr != nil {
		slog.Warn("could not preserve timestamps", "dest", dst, "err", chErr)
	}
	return nil
}

// Existing returns the destinations of plan that are already present
func Existing(plan domain.ExportPlan) []string {
	var found []string
	for _, item := range plan.Items {
		if _, err := os.Stat(item.Dest); err == nil {
			found = append(found, item.Dest)
		}
	}
	return found
}
