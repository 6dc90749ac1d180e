package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
	"github.com/kamal-hamza/imgpick/internal/core/ports/mocks"
)

func newTestSession(t *testing.T, prompt ports.ConflictPrompt, names ...string) *Session {
	t.Helper()
	s, err := NewSession("/src", newTestEntries(names...), prompt)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func assertUniqueNames(t *testing.T, s *Session) {
	t.Helper()
	seen := make(map[string]string)
	for _, e := range s.Entries() {
		if other, ok := seen[e.DesiredName]; ok {
			t.Fatalf("name %q held by %s and %s", e.DesiredName, other, e.ID)
		}
		seen[e.DesiredName] = e.ID
	}
}

func TestNewSession_NoEntries(t *testing.T) {
	if _, err := NewSession("/src", nil, nil); !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries, got %v", err)
	}
}

func TestNewSession_CopiesEntries(t *testing.T) {
	entries := newTestEntries("a.jpg", "b.jpg")
	s, err := NewSession("/src", entries, nil)
	if err != nil {
		t.Fatal(err)
	}

	entries[0].DesiredName = "mutated"
	if s.Entry(0).DesiredName != "a" {
		t.Error("session shares the caller's slice")
	}
}

func TestSession_NavigateUnchangedIsNoop(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")

	res, err := s.Next(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}

	if res.State != domain.StateUnmodified {
		t.Errorf("state = %v, want unmodified", res.State)
	}
	if s.Entry(0).Renamed {
		t.Error("unchanged entry must not be marked renamed")
	}
	if s.Index() != 1 || !res.Moved {
		t.Errorf("expected move to 1, got index %d moved %v", s.Index(), res.Moved)
	}
}

func TestSession_CommitFreeName(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")

	s.Edit("beach")
	if s.State(0) != domain.StateEditing {
		t.Errorf("state after edit = %v, want editing", s.State(0))
	}

	res, err := s.Next(context.Background(), "beach")
	if err != nil {
		t.Fatal(err)
	}

	e := s.Entry(0)
	if res.State != domain.StateCommitted || res.Name != "beach" {
		t.Errorf("unexpected result %+v", res)
	}
	if e.DesiredName != "beach" || !e.Renamed {
		t.Errorf("entry not committed: %+v", e)
	}
	if e.OutputFilename() != "beach.jpg" {
		t.Errorf("OutputFilename = %q", e.OutputFilename())
	}
}

func TestSession_CommitIsIdempotent(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")
	ctx := context.Background()

	if _, err := s.Next(ctx, "beach"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Prev(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	before := s.Registry().Snapshot()

	res, err := s.Next(ctx, "beach")
	if err != nil {
		t.Fatal(err)
	}

	if res.Name != "beach" || s.Entry(0).DesiredName != "beach" {
		t.Errorf("recommit changed the name: %+v", res)
	}
	after := s.Registry().Snapshot()
	for id, name := range before {
		if after[id] != name {
			t.Errorf("registry changed for %s: %q -> %q", id, name, after[id])
		}
	}
}

func TestSession_EmptyBufferReverts(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")

	res, err := s.Next(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	if res.State != domain.StateReverted || res.Name != "a" {
		t.Errorf("unexpected result %+v", res)
	}
	if s.Entry(0).Renamed {
		t.Error("reverted entry must not be renamed")
	}
}

// User renames B to "A", which A already holds, and accepts the suggestion.
func TestSession_ConflictAcceptSuggestion(t *testing.T) {
	prompt := mocks.NewMockConflictPrompt(mocks.Accept("A(1)"))
	s := newTestSession(t, prompt, "A.jpg", "B.jpg")
	ctx := context.Background()

	if _, err := s.Next(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	res, err := s.Next(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}

	if len(prompt.Asked) != 1 {
		t.Fatalf("prompt asked %d times", len(prompt.Asked))
	}
	if got := prompt.Asked[0].Suggestion; got != "A(1)" {
		t.Errorf("suggestion = %q, want A(1)", got)
	}
	if res.State != domain.StateCommitted || res.Name != "A(1)" {
		t.Errorf("unexpected result %+v", res)
	}
	if a := s.Entry(0); a.DesiredName != "A" || a.Renamed {
		t.Errorf("A changed: %+v", a)
	}
	if b := s.Entry(1); b.DesiredName != "A(1)" || !b.Renamed {
		t.Errorf("B not renamed: %+v", b)
	}
	if s.Index() != 0 {
		t.Errorf("expected wrap to 0, got %d", s.Index())
	}
	assertUniqueNames(t, s)
}

// The user submits an empty name in the dialog.
func TestSession_ConflictEmptyAnswerReverts(t *testing.T) {
	prompt := mocks.NewMockConflictPrompt(mocks.Accept(""))
	s := newTestSession(t, prompt, "A.jpg", "B.jpg")
	ctx := context.Background()

	if _, err := s.Next(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	res, err := s.Next(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}

	if res.State != domain.StateReverted || res.Name != "B" {
		t.Errorf("unexpected result %+v", res)
	}
	if b := s.Entry(1); b.DesiredName != "B" || b.Renamed {
		t.Errorf("B changed: %+v", b)
	}
	if !res.Moved {
		t.Error("navigation should proceed after cancel")
	}
}

func TestSession_BeginSettle(t *testing.T) {
	s := newTestSession(t, nil, "A.jpg", "B.jpg", "C.jpg")
	ctx := context.Background()

	if _, err := s.Next(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	res, err := s.Begin("C", s.NextIndex())
	if err != nil {
		t.Fatal(err)
	}
	if res.State != domain.StateConflictPending || res.Conflict == nil {
		t.Fatalf("expected pending conflict, got %+v", res)
	}
	if res.Moved || s.Index() != 1 {
		t.Error("session must not move while a conflict is pending")
	}

	if _, err := s.Next(ctx, "x"); !errors.Is(err, ErrResolutionPending) {
		t.Errorf("Next while pending = %v, want ErrResolutionPending", err)
	}
	if _, err := s.NewExportJob("/dst", mocks.NewMockCopier()); !errors.Is(err, ErrResolutionPending) {
		t.Errorf("NewExportJob while pending = %v, want ErrResolutionPending", err)
	}

	if _, err := s.Settle(domain.Renamed("A")); !errors.Is(err, domain.ErrNameTaken) {
		t.Errorf("Settle with taken name = %v, want ErrNameTaken", err)
	}
	if _, ok := s.Pending(); !ok {
		t.Fatal("conflict should stay pending after an invalid settle")
	}

	res, err = s.Settle(domain.Renamed("B"))
	if err != nil {
		t.Fatalf("own name should be accepted: %v", err)
	}
	if res.Name != "B" || res.Index != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := s.Pending(); ok {
		t.Error("conflict should be cleared")
	}

	if _, err := s.Settle(domain.Cancelled()); !errors.Is(err, ErrNoPendingConflict) {
		t.Errorf("second Settle = %v, want ErrNoPendingConflict", err)
	}
}

func TestSession_EditIgnoredWhilePending(t *testing.T) {
	s := newTestSession(t, nil, "A.jpg", "B.jpg")

	if _, err := s.Begin("B", 1); err != nil {
		t.Fatal(err)
	}
	s.Edit("other")

	if s.State(0) != domain.StateConflictPending {
		t.Errorf("state = %v, want conflict-pending", s.State(0))
	}
}

func TestSession_NavigationWraps(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg", "c.jpg")
	ctx := context.Background()

	if _, err := s.Prev(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if s.Index() != 2 {
		t.Errorf("Prev from first = %d, want 2", s.Index())
	}
	if _, err := s.Next(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if s.Index() != 0 {
		t.Errorf("Next from last = %d, want 0", s.Index())
	}
}

func TestSession_Jump(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg", "c.jpg")
	ctx := context.Background()

	tests := []struct {
		pos     int
		wantErr bool
	}{
		{0, true},
		{4, true},
		{-1, true},
		{3, false},
		{1, false},
	}

	for _, tt := range tests {
		_, err := s.Jump(ctx, s.Current().DesiredName, tt.pos)
		if tt.wantErr {
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Jump(%d) = %v, want ErrIndexOutOfRange", tt.pos, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Jump(%d) failed: %v", tt.pos, err)
		}
		if s.Index() != tt.pos-1 {
			t.Errorf("Jump(%d) index = %d", tt.pos, s.Index())
		}
	}
}

func TestSession_HideRenamedSkips(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg", "c.jpg", "d.jpg")
	ctx := context.Background()

	// Rename b and c.
	if _, err := s.Next(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(ctx, "bee"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(ctx, "sea"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Jump(ctx, "d", 1); err != nil {
		t.Fatal(err)
	}

	s.SetHideRenamed(true)
	if got := s.NextIndex(); got != 3 {
		t.Errorf("NextIndex = %d, want 3", got)
	}
	if _, err := s.Next(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if got := s.PrevIndex(); got != 0 {
		t.Errorf("PrevIndex = %d, want 0", got)
	}

	s.SetHideRenamed(false)
	if got := s.PrevIndex(); got != 2 {
		t.Errorf("PrevIndex without hiding = %d, want 2", got)
	}
}

func TestSession_HideRenamedAllRenamed(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")
	ctx := context.Background()

	if _, err := s.Next(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(ctx, "y"); err != nil {
		t.Fatal(err)
	}

	s.SetHideRenamed(true)
	if got := s.NextIndex(); got != 1 {
		t.Errorf("NextIndex with everything renamed = %d, want 1", got)
	}
}

func TestSession_UniquenessUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{"a", "b", "c", "d", "a(1)", "beach", ""}

	var answers []mocks.Answer
	for i := 0; i < 200; i++ {
		switch rng.Intn(3) {
		case 0:
			answers = append(answers, mocks.Cancel())
		case 1:
			answers = append(answers, mocks.Accept(pool[rng.Intn(len(pool))]))
		default:
			answers = append(answers, mocks.Accept("fresh"+string(rune('a'+i%26))))
		}
	}
	prompt := mocks.NewMockConflictPrompt(answers...)
	s := newTestSession(t, prompt, "a.jpg", "b.jpg", "c.jpg", "d.png")
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		buffer := pool[rng.Intn(len(pool))]
		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = s.Next(ctx, buffer)
		case 1:
			_, err = s.Prev(ctx, buffer)
		default:
			_, err = s.Jump(ctx, buffer, rng.Intn(s.Len())+1)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertUniqueNames(t, s)
	}
}

func TestSession_ExportFlags(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg", "c.jpg")

	if n, size := s.ExportCount(); n != 3 || size != 60 {
		t.Errorf("new entries: ExportCount = %d, %d; want 3, 60", n, size)
	}

	if s.ToggleExport() {
		t.Error("first toggle should unflag the entry")
	}
	if _, err := s.Jump(context.Background(), "a", 3); err != nil {
		t.Fatal(err)
	}
	s.SetExport(false)

	n, size := s.ExportCount()
	if n != 1 || size != 20 {
		t.Errorf("ExportCount = %d, %d; want 1, 20", n, size)
	}

	if !s.ToggleExport() {
		t.Error("toggle should flag the entry again")
	}
}

func TestSession_NewExportJob(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg", "c.jpg")
	ctx := context.Background()
	copier := mocks.NewMockCopier()

	// Entries start flagged; clear every flag first.
	for _, name := range []string{"a", "b", "c"} {
		s.SetExport(false)
		if _, err := s.Next(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.NewExportJob("/dst", copier); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
	if s.ActiveJob() != nil {
		t.Fatal("a refused export must not occupy the job slot")
	}

	s.SetExport(true)
	if _, err := s.Next(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	s.SetExport(true)

	job, err := s.NewExportJob("/dst", copier)
	if err != nil {
		t.Fatal(err)
	}
	if s.ActiveJob() != job {
		t.Error("job should be active")
	}
	if _, err := s.NewExportJob("/dst", copier); !errors.Is(err, ErrJobActive) {
		t.Errorf("second job = %v, want ErrJobActive", err)
	}

	// Edits after job creation must not reach the plan.
	if _, err := s.Jump(ctx, "c", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(ctx, "changed"); err != nil {
		t.Fatal(err)
	}
	s.SetExport(false)

	plan := job.Plan()
	if len(plan.Items) != 2 {
		t.Fatalf("plan has %d items, want 2", len(plan.Items))
	}
	if plan.Items[0].Dest != "/dst/first.jpg" || plan.Items[1].Dest != "/dst/c.jpg" {
		t.Errorf("unexpected destinations %+v", plan.Items)
	}
	if plan.Items[0].Source != "/src/a.jpg" {
		t.Errorf("unexpected source %q", plan.Items[0].Source)
	}

	if err := job.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.ReleaseJob(job); err != nil {
		t.Fatal(err)
	}
	if s.ActiveJob() != nil {
		t.Error("job should be released")
	}
}

func TestSession_ReleaseIdleJob(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg")
	s.SetExport(true)

	job, err := s.NewExportJob("/dst", mocks.NewMockCopier())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReleaseJob(job); err != nil {
		t.Errorf("idle job should be releasable: %v", err)
	}
	if err := s.ReleaseJob(nil); err != nil {
		t.Errorf("releasing nil = %v", err)
	}
}

func TestSession_RejectsPathSeparator(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")
	s.Edit("../escape")

	if _, err := s.Next(context.Background(), "../escape"); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if s.Index() != 0 {
		t.Errorf("session moved to %d on an invalid name", s.Index())
	}
	if got := s.Entry(0); got.DesiredName != "a" || got.Renamed {
		t.Errorf("entry changed: %+v", got)
	}
	if s.State(0) != domain.StateEditing {
		t.Errorf("state = %v, want editing", s.State(0))
	}

	// Fixing the name commits normally
	if _, err := s.Next(context.Background(), "escape"); err != nil {
		t.Fatal(err)
	}
	if got := s.Entry(0).DesiredName; got != "escape" {
		t.Errorf("DesiredName = %q, want escape", got)
	}
}

func TestSession_ExportPlanUsesRegistryNames(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")
	if _, err := s.Next(context.Background(), "sunset"); err != nil {
		t.Fatal(err)
	}

	job, err := s.NewExportJob("/dst", mocks.NewMockCopier())
	if err != nil {
		t.Fatal(err)
	}
	names := s.Registry().Snapshot()
	for _, item := range job.Plan().Items {
		want := "/dst/" + names[item.ID] + ".jpg"
		if item.Dest != want {
			t.Errorf("%s: Dest = %q, want %q", item.ID, item.Dest, want)
		}
	}
}
