package ports

import (
	"context"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

// Scanner defines the port for discovering source images
type Scanner interface {
	// Scan returns one entry per image file found directly in dir, sorted by filename
	Scan(ctx context.Context, dir string) ([]domain.ImageEntry, error)
}

// ConflictPrompt defines the port for asking the user how to resolve a name collision
type ConflictPrompt interface {
	// Ask blocks until the user submits a name or cancels.
	// validate reports whether a candidate is currently acceptable; prompts use it
	// to refuse submission (and show why) instead of returning an invalid name.
	// ok is false when the user cancelled.
	Ask(ctx context.Context, conflict domain.Conflict, validate func(candidate string) error) (name string, ok bool)
}

// DirectoryPicker defines the port for choosing the export destination
type DirectoryPicker interface {
	// Pick returns the chosen directory. ok is false when the user chose nothing.
	Pick(ctx context.Context, start string) (dir string, ok bool, err error)
}

// FileCopier defines the port for copying a single file
type FileCopier interface {
	// Copy copies src to dst, preserving timestamps where the platform allows.
	// It is never interrupted once started.
	Copy(src, dst string) error
}

// ProgressView defines the port the progress reporter renders to
type ProgressView interface {
	// Update is called on every poll while the job is running
	Update(snap domain.JobSnapshot)

	// Done is called once, after the worker has finished
	Done(snap domain.JobSnapshot)
}

// Watcher defines the port for observing changes in the source directory
type Watcher interface {
	// Events delivers changes until Close is called
	Events() <-chan domain.SourceChange

	// Close stops watching
	Close() error
}
