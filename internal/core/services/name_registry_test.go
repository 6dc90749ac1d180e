package services

import (
	"testing"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

func newTestEntries(names ...string) []domain.ImageEntry {
	entries := make([]domain.ImageEntry, len(names))
	for i, name := range names {
		entries[i] = domain.NewImageEntry(name, int64(10*(i+1)))
	}
	return entries
}

func TestNameRegistry_SeedsFromEntries(t *testing.T) {
	r := NewNameRegistry(newTestEntries("a.jpg", "b.png"))

	if r.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", r.Len())
	}
	name, ok := r.Get("a.jpg")
	if !ok || name != "a" {
		t.Errorf("Get(a.jpg) = %q, %v; want %q, true", name, ok, "a")
	}
	if _, ok := r.Get("missing.jpg"); ok {
		t.Error("Get should report unknown ids")
	}
}

func TestNameRegistry_WouldCollide(t *testing.T) {
	r := NewNameRegistry(newTestEntries("a.jpg", "b.jpg"))

	tests := []struct {
		name      string
		candidate string
		excluding string
		want      bool
	}{
		{"other entry holds name", "a", "b.jpg", true},
		{"own name is not a collision", "a", "a.jpg", false},
		{"free name", "c", "a.jpg", false},
		{"unknown excluding id", "b", "zzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.WouldCollide(tt.candidate, tt.excluding); got != tt.want {
				t.Errorf("WouldCollide(%q, %q) = %v, want %v", tt.candidate, tt.excluding, got, tt.want)
			}
		})
	}
}

func TestNameRegistry_CommitReleasesOldName(t *testing.T) {
	r := NewNameRegistry(newTestEntries("a.jpg", "b.jpg"))

	r.Commit("a.jpg", "sunset")

	if r.WouldCollide("a", "b.jpg") {
		t.Error("old name should be free after commit")
	}
	if !r.WouldCollide("sunset", "b.jpg") {
		t.Error("new name should be taken after commit")
	}

	inUse := r.NamesInUse()
	if _, ok := inUse["a"]; ok {
		t.Error("NamesInUse should not contain released name")
	}
	if len(inUse) != 2 {
		t.Errorf("expected 2 names in use, got %d", len(inUse))
	}
}

func TestNameRegistry_SnapshotIsCopy(t *testing.T) {
	r := NewNameRegistry(newTestEntries("a.jpg"))

	snap := r.Snapshot()
	snap["a.jpg"] = "changed"

	if name, _ := r.Get("a.jpg"); name != "a" {
		t.Errorf("registry mutated through snapshot: %q", name)
	}

	inUse := r.NamesInUse()
	delete(inUse, "a")
	if !r.WouldCollide("a", "other") {
		t.Error("registry mutated through NamesInUse")
	}
}

func TestNameRegistry_Duplicates(t *testing.T) {
	r := NewNameRegistry(newTestEntries("a.jpg", "a.png", "b.jpg"))

	dups := r.Duplicates()
	if len(dups) != 1 || dups[0] != "a" {
		t.Errorf("Duplicates() = %v, want [a]", dups)
	}

	r.Commit("a.png", "a2")
	if len(r.Duplicates()) != 0 {
		t.Errorf("expected no duplicates after rename, got %v", r.Duplicates())
	}
}
