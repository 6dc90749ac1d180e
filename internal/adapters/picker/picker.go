package picker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
)

// DefaultMaxDepth limits how far below the start directory candidates are listed
const DefaultMaxDepth = 3

// FindFunc selects one of n items; it mirrors fuzzyfinder.Find
type FindFunc func(ctx context.Context, items []string) (int, error)

// FuzzyPicker lets the user choose a destination among the start
// directory and its sub-directories
type FuzzyPicker struct {
	MaxDepth int
	find     FindFunc
}

func NewFuzzyPicker() *FuzzyPicker {
	return &FuzzyPicker{MaxDepth: DefaultMaxDepth, find: fuzzyFind}
}

// NewFuzzyPickerWith uses find instead of the terminal finder
func NewFuzzyPickerWith(find FindFunc) *FuzzyPicker {
	return &FuzzyPicker{MaxDepth: DefaultMaxDepth, find: find}
}

func fuzzyFind(ctx context.Context, items []string) (int, error) {
	return fuzzyfinder.Find(
		items,
		func(i int) string { return items[i] },
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithHeader("Export destination (esc to cancel)"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return previewDir(items[i], h)
		}),
	)
}

// Pick implements ports.DirectoryPicker. Aborting the finder is not an
// error; it reports ok == false.
func (p *FuzzyPicker) Pick(ctx context.Context, start string) (string, bool, error) {
	dirs, err := Candidates(start, p.MaxDepth)
	if err != nil {
		return "", false, err
	}

	idx, err := p.find(ctx, dirs)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) || errors.Is(err, context.Canceled) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("directory picker failed: %w", err)
	}
	return dirs[idx], true, nil
}

// Candidates lists start followed by its non-hidden sub-directories down
// to maxDepth, sorted by path
func Candidates(start string, maxDepth int) ([]string, error) {
	root := filepath.Clean(start)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open start directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	var dirs []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable sub-directories are skipped
			if path == root {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		rel, _ := filepath.Rel(root, path)
		if strings.Count(rel, string(filepath.Separator))+1 > maxDepth {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(dirs)
	return append([]string{root}, dirs...), nil
}

func previewDir(dir string, height int) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", dir)
	for i, e := range entries {
		if i >= height-3 {
			fmt.Fprintf(&b, "… %d more\n", len(entries)-i)
			break
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		b.WriteString(name + "\n")
	}
	return b.String()
}

// Static always returns Dir, creating it first when Create is set.
// It backs --dest and the default_destination setting.
type Static struct {
	Dir    string
	Create bool
}

func (s Static) Pick(ctx context.Context, start string) (string, bool, error) {
	if s.Dir == "" {
		return "", false, nil
	}
	if s.Create {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", false, fmt.Errorf("failed to create destination: %w", err)
		}
	}
	info, err := os.Stat(s.Dir)
	if err != nil {
		return "", false, fmt.Errorf("destination unavailable: %w", err)
	}
	if !info.IsDir() {
		return "", false, fmt.Errorf("destination is not a directory: %s", s.Dir)
	}
	return s.Dir, true, nil
}
