package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

// CancelInput dismisses the prompt and keeps the previous name
const CancelInput = "!"

// LinePrompt asks for a replacement name on a line-based terminal.
// An empty line accepts the suggestion; CancelInput or EOF cancels.
type LinePrompt struct {
	in  *LineReader
	out io.Writer
}

// NewLinePrompt reads answers from r. Share r with other line readers
// through Reader so buffered input is not lost.
func NewLinePrompt(r *LineReader, w io.Writer) *LinePrompt {
	return &LinePrompt{in: r, out: w}
}

// Reader returns the line reader answers are read from
func (p *LinePrompt) Reader() *LineReader { return p.in }

// Ask implements ports.ConflictPrompt
func (p *LinePrompt) Ask(ctx context.Context, conflict domain.Conflict, validate func(string) error) (string, bool) {
	fmt.Fprintln(p.out, ui.FormatWarning(fmt.Sprintf("%q is already used by another image", conflict.Requested)))
	fmt.Fprintln(p.out, ui.FormatMuted(fmt.Sprintf("Current name: %s  (enter %s to keep it)", conflict.OwnName, CancelInput)))

	for {
		fmt.Fprintf(p.out, "%s [%s]: ", ui.StyleAccent.Render("New name"), conflict.Suggestion)
		line, err := p.in.ReadLine(ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", false
		}
		eof := errors.Is(err, io.EOF)

		answer := strings.TrimSpace(line)
		if eof && answer == "" {
			fmt.Fprintln(p.out)
			return "", false
		}

		switch answer {
		case CancelInput:
			return "", false
		case "":
			answer = conflict.Suggestion
		}

		if verr := validate(answer); verr != nil {
			fmt.Fprintln(p.out, ui.StyleInvalid.Render(fmt.Sprintf("  %s: %v", answer, verr)))
			if eof {
				return "", false
			}
			continue
		}
		return answer, true
	}
}
