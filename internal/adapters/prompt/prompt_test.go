package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

func takenValidator(taken ...string) func(string) error {
	return func(name string) error {
		if name == "" {
			return domain.ErrEmptyName
		}
		for _, t := range taken {
			if name == t {
				return domain.ErrNameTaken
			}
		}
		return nil
	}
}

func TestLinePrompt_Ask(t *testing.T) {
	conflict := domain.Conflict{ID: "b.jpg", Requested: "a", Suggestion: "a(1)", OwnName: "b"}

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"blank accepts suggestion", "\n", "a(1)", true},
		{"typed name", "sunset\n", "sunset", true},
		{"trims whitespace", "  sunset  \n", "sunset", true},
		{"own name", "b\n", "b", true},
		{"cancel marker", "!\n", "", false},
		{"eof cancels", "", "", false},
		{"taken then free", "a\nfree\n", "free", true},
		{"taken then eof", "a\n", "", false},
		{"last line without newline", "sunset", "sunset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompt(NewLineReader(strings.NewReader(tt.input)), &out)

			got, ok := p.Ask(context.Background(), conflict, takenValidator("a"))
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Ask() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLinePrompt_ShowsValidationError(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompt(NewLineReader(strings.NewReader("a\nok\n")), &out)
	conflict := domain.Conflict{Requested: "a", Suggestion: "a(1)", OwnName: "b"}

	p.Ask(context.Background(), conflict, takenValidator("a"))

	if !strings.Contains(out.String(), domain.ErrNameTaken.Error()) {
		t.Errorf("expected validation message in output:\n%s", out.String())
	}
	if strings.Count(out.String(), "New name") != 2 {
		t.Errorf("expected two prompts:\n%s", out.String())
	}
}

func TestLinePrompt_CancelledContext(t *testing.T) {
	p := NewLinePrompt(NewLineReader(strings.NewReader("x\n")), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := p.Ask(ctx, domain.Conflict{}, takenValidator()); ok {
		t.Error("cancelled context should cancel the prompt")
	}
}

func TestLinePrompt_InterruptWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	p := NewLinePrompt(NewLineReader(pr), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())

	type answer struct {
		name string
		ok   bool
	}
	done := make(chan answer, 1)
	go func() {
		name, ok := p.Ask(ctx, domain.Conflict{Requested: "a", Suggestion: "a(1)"}, takenValidator("a"))
		done <- answer{name, ok}
	}()

	cancel()

	select {
	case got := <-done:
		if got.ok {
			t.Errorf("Ask() = %q, true after interrupt; want cancel", got.name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ask did not return after the context was cancelled")
	}
}

func TestLineReader_ReadLine(t *testing.T) {
	r := NewLineReader(strings.NewReader("one\ntwo"))
	ctx := context.Background()

	line, err := r.ReadLine(ctx)
	if line != "one\n" || err != nil {
		t.Errorf("ReadLine() = %q, %v; want %q, nil", line, err, "one\n")
	}

	line, err = r.ReadLine(ctx)
	if line != "two" || err != io.EOF {
		t.Errorf("ReadLine() = %q, %v; want %q, EOF", line, err, "two")
	}
}

func TestLineReader_KeepsLateLine(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := r.ReadLine(ctx)
		errs <- err
	}()
	cancel()

	select {
	case err := <-errs:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLine did not return after cancel")
	}

	go func() { _, _ = pw.Write([]byte("late\n")) }()

	line, err := r.ReadLine(context.Background())
	if line != "late\n" || err != nil {
		t.Errorf("ReadLine() = %q, %v; want the late line", line, err)
	}
}
