package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

// Answer is one scripted reply of MockConflictPrompt
type Answer struct {
	Name string
	OK   bool
}

// Accept scripts the user submitting name
func Accept(name string) Answer { return Answer{Name: name, OK: true} }

// Cancel scripts the user dismissing the prompt
func Cancel() Answer { return Answer{} }

// MockConflictPrompt replays scripted answers and records what it was asked
type MockConflictPrompt struct {
	mu          sync.Mutex
	answers     []Answer
	Asked       []domain.Conflict
	Validations []error // validate() result for each answer given
}

// NewMockConflictPrompt creates a prompt that returns answers in order,
// then cancels once they run out
func NewMockConflictPrompt(answers ...Answer) *MockConflictPrompt {
	return &MockConflictPrompt{answers: answers}
}

// Ask returns the next scripted answer
func (m *MockConflictPrompt) Ask(ctx context.Context, conflict domain.Conflict, validate func(string) error) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Asked = append(m.Asked, conflict)
	if len(m.answers) == 0 {
		return "", false
	}
	a := m.answers[0]
	m.answers = m.answers[1:]
	m.Validations = append(m.Validations, validate(a.Name))
	return a.Name, a.OK
}

// Copy records one call of MockCopier
type Copy struct {
	Src string
	Dst string
}

// MockCopier records copies without touching the filesystem.
// When Gate is set every Copy announces itself on Started and then waits
// for a value on Gate, which lets tests step the worker file by file.
type MockCopier struct {
	mu      sync.Mutex
	Copies  []Copy
	Fail    map[string]error // by source path
	Started chan string
	Gate    chan struct{}
}

// NewMockCopier creates a copier that succeeds for every file
func NewMockCopier() *MockCopier {
	return &MockCopier{Fail: make(map[string]error)}
}

// NewGatedMockCopier creates a copier that blocks on each file until released
func NewGatedMockCopier() *MockCopier {
	c := NewMockCopier()
	c.Started = make(chan string)
	c.Gate = make(chan struct{})
	return c
}

// Copy records the call and returns the configured failure, if any
func (m *MockCopier) Copy(src, dst string) error {
	if m.Started != nil {
		m.Started <- src
	}
	if m.Gate != nil {
		<-m.Gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Fail[src]; ok {
		return err
	}
	m.Copies = append(m.Copies, Copy{Src: src, Dst: dst})
	return nil
}

// Calls returns a copy of the recorded successful copies
func (m *MockCopier) Calls() []Copy {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Copy, len(m.Copies))
	copy(out, m.Copies)
	return out
}

// MockScanner returns a fixed set of entries per directory
type MockScanner struct {
	Dirs map[string][]domain.ImageEntry
}

// NewMockScanner creates an empty scanner
func NewMockScanner() *MockScanner {
	return &MockScanner{Dirs: make(map[string][]domain.ImageEntry)}
}

// Scan returns the entries registered for dir
func (m *MockScanner) Scan(ctx context.Context, dir string) ([]domain.ImageEntry, error) {
	entries, ok := m.Dirs[dir]
	if !ok {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	return entries, nil
}

// MockProgressView records every rendered snapshot
type MockProgressView struct {
	mu      sync.Mutex
	Updates []domain.JobSnapshot
	Final   *domain.JobSnapshot
	Dones   int
}

// NewMockProgressView creates an empty view
func NewMockProgressView() *MockProgressView {
	return &MockProgressView{}
}

func (m *MockProgressView) Update(snap domain.JobSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, snap)
}

func (m *MockProgressView) Done(snap domain.JobSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Final = &snap
	m.Dones++
}

// MockPicker returns a fixed choice
type MockPicker struct {
	Dir    string
	OK     bool
	Err    error
	Starts []string
}

func (m *MockPicker) Pick(ctx context.Context, start string) (string, bool, error) {
	m.Starts = append(m.Starts, start)
	return m.Dir, m.OK, m.Err
}
