package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kamal-hamza/imgpick/internal/adapters/copier"
	"github.com/kamal-hamza/imgpick/internal/adapters/prompt"
	"github.com/kamal-hamza/imgpick/internal/adapters/scanner"
	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
	"github.com/kamal-hamza/imgpick/internal/core/services"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var ErrSameDirectory = errors.New("destination must differ from the source directory")

// sourceDir resolves the optional directory argument, defaulting to the
// working directory
func sourceDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

func newScanner() *scanner.DirScanner {
	return scanner.NewDirScanner(appConfig.Extensions)
}

// scanSource lists the images of dir with the configured scanner
func scanSource(ctx context.Context, s ports.Scanner, dir string) ([]domain.ImageEntry, error) {
	entries, err := s.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w in %s (extensions: %s)",
			services.ErrNoEntries, dir, strings.Join(appConfig.Extensions, " "))
	}
	return entries, nil
}

// openSession scans dir and starts a naming session over it
func openSession(ctx context.Context, dir string, conflicts ports.ConflictPrompt) (*services.Session, error) {
	entries, err := scanSource(ctx, newScanner(), dir)
	if err != nil {
		return nil, err
	}

	session, err := services.NewSession(dir, entries, conflicts)
	if err != nil {
		return nil, err
	}
	session.SetHideRenamed(appConfig.HideRenamed)
	return session, nil
}

func pollInterval() time.Duration {
	return time.Duration(appConfig.PollIntervalMS) * time.Millisecond
}

// checkDestination rejects exporting into the browsed directory, where a
// copy could overwrite its own source
func checkDestination(source, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("invalid destination %q: %w", dest, err)
	}
	if filepath.Clean(abs) == filepath.Clean(source) {
		return "", ErrSameDirectory
	}
	return abs, nil
}

// confirmOverwrite lists existing destination files and asks before they
// are replaced. It returns true when the export may proceed.
func confirmOverwrite(ctx context.Context, in *prompt.LineReader, out io.Writer, plan domain.ExportPlan) bool {
	if !appConfig.ConfirmOverwrite {
		return true
	}

	existing := copier.Existing(plan)
	if len(existing) == 0 {
		return true
	}

	fmt.Fprintln(out, ui.FormatWarning(fmt.Sprintf("%d file(s) already exist in %s:", len(existing), plan.DestDir)))
	names := make([]string, len(existing))
	for i, path := range existing {
		names[i] = filepath.Base(path)
	}
	fmt.Fprint(out, ui.RenderSimpleList(names))
	fmt.Fprint(out, ui.StyleWarning.Render("Overwrite them? (y/n): "))

	response, err := in.ReadLine(ctx)
	if err != nil && response == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}
