package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
)

var (
	ErrNoEntries         = errors.New("no images to browse")
	ErrIndexOutOfRange   = errors.New("image index out of range")
	ErrResolutionPending = errors.New("a name conflict is waiting to be resolved")
	ErrNoPendingConflict = errors.New("no name conflict is pending")
	ErrJobActive         = errors.New("an export is still running")
	ErrNothingToExport   = errors.New("no images are marked for export")
)

// CommitResult reports what a navigation step did to the outgoing entry
type CommitResult struct {
	ID       string             // Outgoing entry
	State    domain.NamingState // Its state after the step
	Name     string             // Its committed name after the step
	Conflict *domain.Conflict   // Set while State is StateConflictPending
	Moved    bool               // Whether the current index changed
	Index    int                // Current index after the step
}

type pendingCommit struct {
	index    int
	target   int
	conflict domain.Conflict
}

// Session holds the entries of one browsing session and runs the naming
// commit protocol whenever the user navigates away from an entry.
//
// A Session belongs to the interactive goroutine. While a conflict is
// pending every mutating call fails with ErrResolutionPending, so the
// registry only ever has a single writer.
type Session struct {
	sourceDir   string
	entries     []domain.ImageEntry
	states      []domain.NamingState
	registry    *NameRegistry
	resolver    *ConflictResolver
	current     int
	hideRenamed bool
	pending     *pendingCommit
	job         *ExportJob
}

// NewSession starts a session over the scanned entries. prompt may be nil
// when the caller drives conflicts itself through Begin and Settle.
func NewSession(sourceDir string, entries []domain.ImageEntry, prompt ports.ConflictPrompt) (*Session, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	owned := make([]domain.ImageEntry, len(entries))
	copy(owned, entries)

	registry := NewNameRegistry(owned)
	if dups := registry.Duplicates(); len(dups) > 0 {
		// Same stem with different extensions; output filenames still differ.
		slog.Warn("images share a default name", "names", dups)
	}

	return &Session{
		sourceDir: sourceDir,
		entries:   owned,
		states:    make([]domain.NamingState, len(owned)),
		registry:  registry,
		resolver:  NewConflictResolver(registry, prompt),
	}, nil
}

// SourceDir returns the browsed directory
func (s *Session) SourceDir() string { return s.sourceDir }

// Len returns the number of entries
func (s *Session) Len() int { return len(s.entries) }

// Index returns the current (0-based) position
func (s *Session) Index() int { return s.current }

// Current returns a copy of the displayed entry
func (s *Session) Current() domain.ImageEntry { return s.entries[s.current] }

// Entry returns a copy of the entry at i
func (s *Session) Entry(i int) domain.ImageEntry { return s.entries[i] }

// Entries returns a copy of all entries in display order
func (s *Session) Entries() []domain.ImageEntry {
	out := make([]domain.ImageEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// State returns the naming state of the entry at i
func (s *Session) State(i int) domain.NamingState { return s.states[i] }

// Registry exposes the name registry for read-only queries
func (s *Session) Registry() *NameRegistry { return s.registry }

// Resolver exposes the conflict resolver so interactive layers can
// validate candidates while the user types
func (s *Session) Resolver() *ConflictResolver { return s.resolver }

// Pending returns the unresolved conflict, if any
func (s *Session) Pending() (domain.Conflict, bool) {
	if s.pending == nil {
		return domain.Conflict{}, false
	}
	return s.pending.conflict, true
}

// HideRenamed reports whether Next/Prev skip already renamed entries
func (s *Session) HideRenamed() bool { return s.hideRenamed }

// SetHideRenamed toggles skipping of renamed entries
func (s *Session) SetHideRenamed(hide bool) { s.hideRenamed = hide }

// Edit records that the buffer of the current entry changed
func (s *Session) Edit(buffer string) {
	if s.pending != nil {
		return
	}
	committed, _ := s.registry.Get(s.entries[s.current].ID)
	if buffer != committed {
		s.states[s.current] = domain.StateEditing
	}
}

// NextIndex returns the position Next would move to
func (s *Session) NextIndex() int { return s.step(1) }

// PrevIndex returns the position Prev would move to
func (s *Session) PrevIndex() int { return s.step(-1) }

func (s *Session) step(dir int) int {
	n := len(s.entries)
	idx := s.current + dir
	if s.hideRenamed {
		// At most one full lap, so a fully renamed set still moves by one.
		for i := 0; i < n && s.entries[wrap(idx, n)].Renamed; i++ {
			idx += dir
		}
	}
	return wrap(idx, n)
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Next commits buffer for the current entry and moves forward
func (s *Session) Next(ctx context.Context, buffer string) (CommitResult, error) {
	return s.Navigate(ctx, buffer, s.NextIndex())
}

// Prev commits buffer for the current entry and moves backward
func (s *Session) Prev(ctx context.Context, buffer string) (CommitResult, error) {
	return s.Navigate(ctx, buffer, s.PrevIndex())
}

// Jump commits buffer and moves to the 1-based position pos
func (s *Session) Jump(ctx context.Context, buffer string, pos int) (CommitResult, error) {
	if pos < 1 || pos > len(s.entries) {
		return CommitResult{}, fmt.Errorf("%w: %d (1-%d)", ErrIndexOutOfRange, pos, len(s.entries))
	}
	return s.Navigate(ctx, buffer, pos-1)
}

// Navigate runs the full commit protocol, blocking on the conflict prompt
// when buffer collides, and moves to target once the outgoing entry has
// reached a terminal state.
func (s *Session) Navigate(ctx context.Context, buffer string, target int) (CommitResult, error) {
	res, err := s.Begin(buffer, target)
	if err != nil || res.State != domain.StateConflictPending {
		return res, err
	}
	resolution := s.resolver.Resolve(ctx, res.ID, res.Conflict.Requested)
	return s.Settle(resolution)
}

// Begin evaluates buffer for the current entry. Without a collision the
// step completes and the session moves to target. On a collision the
// session stays put and returns StateConflictPending; the caller must
// then call Settle with the user's decision.
func (s *Session) Begin(buffer string, target int) (CommitResult, error) {
	if s.pending != nil {
		return CommitResult{}, ErrResolutionPending
	}
	target = wrap(target, len(s.entries))

	idx := s.current
	entry := s.entries[idx]
	committed, _ := s.registry.Get(entry.ID)

	switch {
	case buffer == committed:
		// No-op: state and renamed flag stay as they are.

	case buffer == "":
		s.states[idx] = domain.StateReverted

	case domain.ValidateName(buffer) != nil:
		// Stay on the entry so the user can fix the name
		return CommitResult{}, fmt.Errorf("rename %s to %q: %w", entry.ID, buffer, domain.ErrInvalidName)

	case s.registry.WouldCollide(buffer, entry.ID):
		conflict := s.resolver.Conflict(entry.ID, buffer)
		s.states[idx] = domain.StateConflictPending
		s.pending = &pendingCommit{index: idx, target: target, conflict: conflict}
		return CommitResult{
			ID:       entry.ID,
			State:    domain.StateConflictPending,
			Name:     committed,
			Conflict: &conflict,
			Index:    s.current,
		}, nil

	default:
		s.commit(idx, buffer)
	}

	return s.moveFrom(idx, target), nil
}

// Settle finishes a pending conflict. Renamed commits the chosen name,
// Cancelled keeps the previously committed one. Either way the session
// then moves to the target given to Begin.
func (s *Session) Settle(res domain.Resolution) (CommitResult, error) {
	if s.pending == nil {
		return CommitResult{}, ErrNoPendingConflict
	}
	p := s.pending
	id := s.entries[p.index].ID

	if res.Outcome == domain.OutcomeRenamed && res.Name != "" {
		if err := s.resolver.Validate(id, res.Name); err != nil {
			return CommitResult{}, fmt.Errorf("resolve %q: %w", res.Name, err)
		}
		s.pending = nil
		s.commit(p.index, res.Name)
	} else {
		s.pending = nil
		s.states[p.index] = domain.StateReverted
	}

	return s.moveFrom(p.index, p.target), nil
}

func (s *Session) commit(idx int, name string) {
	id := s.entries[idx].ID
	s.registry.Commit(id, name)
	s.entries[idx].DesiredName = name
	s.entries[idx].Renamed = true
	s.states[idx] = domain.StateCommitted
	slog.Debug("name committed", "id", id, "name", name)
}

func (s *Session) moveFrom(idx, target int) CommitResult {
	name, _ := s.registry.Get(s.entries[idx].ID)
	res := CommitResult{
		ID:    s.entries[idx].ID,
		State: s.states[idx],
		Name:  name,
		Moved: target != s.current,
	}
	s.current = target
	res.Index = s.current
	return res
}

// ToggleExport flips the export flag of the current entry
func (s *Session) ToggleExport() bool {
	s.entries[s.current].Export = !s.entries[s.current].Export
	return s.entries[s.current].Export
}

// SetExport sets the export flag of the current entry
func (s *Session) SetExport(export bool) {
	s.entries[s.current].Export = export
}

// ExportCount returns how many entries are flagged and their total size
func (s *Session) ExportCount() (int, int64) {
	var n int
	var size int64
	for _, e := range s.entries {
		if e.Export {
			n++
			size += e.Size
		}
	}
	return n, size
}

// NewExportJob snapshots names and export flags into a job copying to dest.
// Only one job may exist at a time; it must be released once terminal.
func (s *Session) NewExportJob(dest string, copier ports.FileCopier) (*ExportJob, error) {
	if s.pending != nil {
		return nil, ErrResolutionPending
	}
	if s.job != nil {
		return nil, ErrJobActive
	}

	names := s.registry.Snapshot()
	entries := make([]domain.ImageEntry, len(s.entries))
	for i, e := range s.entries {
		e.DesiredName = names[e.ID]
		entries[i] = e
	}

	plan := domain.BuildPlan(s.sourceDir, dest, entries)
	if len(plan.Items) == 0 {
		return nil, ErrNothingToExport
	}

	s.job = NewExportJob(plan, copier)
	return s.job, nil
}

// ActiveJob returns the job that has not been released yet
func (s *Session) ActiveJob() *ExportJob { return s.job }

// ReleaseJob tears down a finished (or never started) job so a new
// export may start
func (s *Session) ReleaseJob(job *ExportJob) error {
	if job == nil || job != s.job {
		return nil
	}
	if job.Status() == domain.StatusRunning {
		return ErrJobActive
	}
	s.job = nil
	return nil
}
