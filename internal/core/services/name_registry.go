package services

import (
	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

// NameRegistry maps entry IDs to their committed output base names.
// It performs no validation and no I/O; callers resolve collisions first.
// Not safe for concurrent use: it is owned by the interactive goroutine.
type NameRegistry struct {
	names map[string]string // id -> desired name
	inUse map[string]int    // desired name -> number of entries holding it
}

// NewNameRegistry seeds the registry with the entries' current names
func NewNameRegistry(entries []domain.ImageEntry) *NameRegistry {
	r := &NameRegistry{
		names: make(map[string]string, len(entries)),
		inUse: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		r.Commit(e.ID, e.DesiredName)
	}
	return r
}

// Get returns the committed name for id
func (r *NameRegistry) Get(id string) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// WouldCollide reports whether an entry other than excludingID holds name
func (r *NameRegistry) WouldCollide(name, excludingID string) bool {
	holders := r.inUse[name]
	if own, ok := r.names[excludingID]; ok && own == name {
		holders--
	}
	return holders > 0
}

// Commit overwrites the mapping for id
func (r *NameRegistry) Commit(id, name string) {
	if old, ok := r.names[id]; ok {
		r.release(old)
	}
	r.names[id] = name
	r.inUse[name]++
}

func (r *NameRegistry) release(name string) {
	if r.inUse[name] <= 1 {
		delete(r.inUse, name)
		return
	}
	r.inUse[name]--
}

// NamesInUse returns a snapshot of every committed name
func (r *NameRegistry) NamesInUse() map[string]struct{} {
	set := make(map[string]struct{}, len(r.inUse))
	for name := range r.inUse {
		set[name] = struct{}{}
	}
	return set
}

// Snapshot returns a copy of the id -> name mapping
func (r *NameRegistry) Snapshot() map[string]string {
	out := make(map[string]string, len(r.names))
	for id, name := range r.names {
		out[id] = name
	}
	return out
}

// Duplicates returns the names held by more than one entry
func (r *NameRegistry) Duplicates() []string {
	var dups []string
	for name, n := range r.inUse {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	return dups
}

// Len returns the number of registered entries
func (r *NameRegistry) Len() int {
	return len(r.names)
}
