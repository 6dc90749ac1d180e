package services

import (
	"context"
	"log/slog"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
)

// ConflictResolver computes unique name suggestions and runs the
// interactive accept/cancel exchange when a rename collides.
type ConflictResolver struct {
	registry *NameRegistry
	prompt   ports.ConflictPrompt
}

func NewConflictResolver(registry *NameRegistry, prompt ports.ConflictPrompt) *ConflictResolver {
	return &ConflictResolver{
		registry: registry,
		prompt:   prompt,
	}
}

// Suggest returns the first of base(1), base(2), ... that is not in inUse
func Suggest(base string, inUse map[string]struct{}) string {
	for n := 1; ; n++ {
		candidate := domain.NumberedName(base, n)
		if _, taken := inUse[candidate]; !taken {
			return candidate
		}
	}
}

// Validate checks a candidate name for entry id.
// The entry's own committed name is always acceptable.
func (r *ConflictResolver) Validate(id, candidate string) error {
	if err := domain.ValidateName(candidate); err != nil {
		return err
	}
	if r.registry.WouldCollide(candidate, id) {
		return domain.ErrNameTaken
	}
	return nil
}

// Conflict describes the collision of requested with another entry's name
func (r *ConflictResolver) Conflict(id, requested string) domain.Conflict {
	own, _ := r.registry.Get(id)
	return domain.Conflict{
		ID:         id,
		Requested:  requested,
		Suggestion: Suggest(requested, r.registry.NamesInUse()),
		OwnName:    own,
	}
}

// Resolve blocks on the prompt until the user accepts a valid name or cancels.
// An empty submission counts as cancel. The registry is not modified here.
func (r *ConflictResolver) Resolve(ctx context.Context, id, requested string) domain.Resolution {
	if r.prompt == nil {
		slog.Warn("no conflict prompt configured, keeping previous name", "id", id, "requested", requested)
		return domain.Cancelled()
	}

	conflict := r.Conflict(id, requested)
	validate := func(candidate string) error {
		return r.Validate(id, candidate)
	}

	for {
		if ctx.Err() != nil {
			return domain.Cancelled()
		}

		name, ok := r.prompt.Ask(ctx, conflict, validate)
		if !ok || name == "" {
			slog.Debug("conflict resolution cancelled", "id", id, "requested", requested)
			return domain.Cancelled()
		}

		if err := validate(name); err != nil {
			// The prompt let an unacceptable name through; ask again.
			slog.Debug("rejected conflict resolution", "id", id, "name", name, "err", err)
			continue
		}

		slog.Debug("conflict resolved", "id", id, "requested", requested, "name", name)
		return domain.Renamed(name)
	}
}
