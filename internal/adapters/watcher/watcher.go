package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
)

// SourceWatcher reports image files that appear, change or disappear in the
// browsed directory while a session is open. The session itself is never
// rescanned; callers only warn the user.
type SourceWatcher struct {
	fs     *fsnotify.Watcher
	match  func(name string) bool
	events chan domain.SourceChange
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// New watches dir. match filters file names; nil accepts everything.
func New(dir string, match func(name string) bool) (*SourceWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if match == nil {
		match = func(string) bool { return true }
	}

	w := &SourceWatcher{
		fs:     fw,
		match:  match,
		events: make(chan domain.SourceChange, 16),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *SourceWatcher) loop() {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			base := filepath.Base(event.Name)
			if strings.HasPrefix(base, ".") || !w.match(base) {
				continue
			}

			op := describe(event)
			if op == "" {
				continue
			}

			select {
			case w.events <- domain.SourceChange{Path: event.Name, Op: op}:
			case <-w.done:
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "err", err)

		case <-w.done:
			return
		}
	}
}

func describe(event fsnotify.Event) string {
	switch {
	case event.Has(fsnotify.Create):
		return "created"
	case event.Has(fsnotify.Remove):
		return "removed"
	case event.Has(fsnotify.Rename):
		return "renamed"
	case event.Has(fsnotify.Write):
		return "modified"
	default:
		return ""
	}
}

// Events implements ports.Watcher; the channel closes after Close
func (w *SourceWatcher) Events() <-chan domain.SourceChange { return w.events }

// Close stops the watcher and waits for the event loop to exit
func (w *SourceWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
