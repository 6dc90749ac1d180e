package prompt

import (
	"bufio"
	"context"
	"io"
)

type lineResult struct {
	line string
	err  error
}

// LineReader reads lines from a terminal without ignoring cancellation.
// Reads happen on a helper goroutine so ReadLine can return as soon as the
// context ends. A line that arrives after that is handed to the next call.
// A LineReader is meant for a single interactive goroutine.
type LineReader struct {
	r       *bufio.Reader
	pending chan lineResult
}

// NewLineReader wraps r, reusing it when it already is a *bufio.Reader
func NewLineReader(r io.Reader) *LineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &LineReader{r: br}
}

// ReadLine returns the next line including its newline. It returns
// ctx.Err() when ctx ends first, and io.EOF with the trailing text once
// input is exhausted.
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if l.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := l.r.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		l.pending = ch
	}

	select {
	case res := <-l.pending:
		l.pending = nil
		// Input racing an interrupt is dropped
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
