package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgpick/internal/adapters/copier"
	"github.com/kamal-hamza/imgpick/internal/adapters/picker"
	"github.com/kamal-hamza/imgpick/internal/adapters/prompt"
	"github.com/kamal-hamza/imgpick/internal/adapters/watcher"
	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
	"github.com/kamal-hamza/imgpick/internal/core/services"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var (
	renameDest        string
	renameHideRenamed bool
)

const renameHelp = `Step through the images of a directory (default: current directory) on a
plain terminal. Type a new name and press Enter to rename the image and move
on; an empty line keeps the current name.

Commands:
  :n            Next image            :p     Previous image
  :<number>     Jump to image         :f     Fuzzy-find an image
  :x            Toggle export mark    :+ :-  Mark / unmark for export
  :h            Toggle hide-renamed   :l     List all images
  :e            Export marked images  :q     Quit
  :?            Show this help

Examples:
  imgpick rename ~/Pictures/holiday
  imgpick rename --dest /mnt/usb/photos`

var renameCmd = &cobra.Command{
	Use:   "rename [dir]",
	Short: "Rename and export images from a line-based prompt",
	Long:  renameHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRename,
}

func init() {
	renameCmd.Flags().StringVarP(&renameDest, "dest", "d", "", "Export destination (default: fuzzy pick)")
	renameCmd.Flags().BoolVar(&renameHideRenamed, "hide-renamed", false, "Skip renamed images when stepping")
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)

	dir, err := sourceDir(args)
	if err != nil {
		return err
	}

	in := prompt.NewLineReader(os.Stdin)
	out := cmd.OutOrStdout()
	linePrompt := prompt.NewLinePrompt(in, out)

	session, err := openSession(ctx, dir, linePrompt)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("hide-renamed") {
		session.SetHideRenamed(renameHideRenamed)
	}

	ls := newLineSession(session, in, out)
	ls.picker = destinationPicker(renameDest)

	if appConfig.WatchSource {
		w, err := watcher.New(dir, newScanner().Matches)
		if err != nil {
			fmt.Fprintln(out, ui.FormatWarning("Not watching source: "+err.Error()))
		} else {
			defer w.Close()
			ls.changes = w.Events()
		}
	}

	return ls.run(ctx)
}

// destinationPicker returns a fixed destination when one is configured and
// the fuzzy finder otherwise
func destinationPicker(flagDest string) ports.DirectoryPicker {
	dest := flagDest
	if dest == "" {
		dest = appConfig.DefaultDestination
	}
	if dest != "" {
		return picker.Static{Dir: dest}
	}
	return picker.NewFuzzyPicker()
}

// lineSession drives a Session from line input
type lineSession struct {
	session   *services.Session
	in        *prompt.LineReader
	out       io.Writer
	picker    ports.DirectoryPicker
	copier    ports.FileCopier
	changes   <-chan domain.SourceChange
	findEntry func(ctx context.Context, entries []domain.ImageEntry) (int, error)
}

func newLineSession(session *services.Session, in *prompt.LineReader, out io.Writer) *lineSession {
	return &lineSession{
		session:   session,
		in:        in,
		out:       out,
		picker:    picker.NewFuzzyPicker(),
		copier:    copier.NewFileCopier(),
		findEntry: fuzzyFindEntry,
	}
}

func (l *lineSession) run(ctx context.Context) error {
	fmt.Fprintln(l.out, ui.FormatTitle(fmt.Sprintf("%d images in %s", l.session.Len(), l.session.SourceDir())))
	fmt.Fprintln(l.out, ui.FormatMuted("Enter a new name, an empty line to keep it, :? for help"))

	for {
		l.reportChanges()
		l.printCurrent()

		line, err := l.in.ReadLine(ctx)
		if ctx.Err() != nil {
			fmt.Fprintln(l.out)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)
		if eof && line == "" {
			fmt.Fprintln(l.out)
			return nil
		}

		quit, herr := l.handle(ctx, strings.TrimSpace(line))
		if herr != nil {
			fmt.Fprintln(l.out, ui.FormatError(herr.Error()))
		}
		if quit || eof {
			return nil
		}
	}
}

func (l *lineSession) printCurrent() {
	s := l.session
	e := s.Current()

	mark := ui.IconUnmarked + " skip"
	if e.Export {
		mark = ui.IconMarked + " export"
	}
	renamed := ""
	if e.Renamed {
		renamed = " " + ui.IconRenamed
	}

	fmt.Fprintln(l.out)
	fmt.Fprintf(l.out, "%s %s  %s  %s%s\n",
		ui.StyleAccent.Render(fmt.Sprintf("[%d/%d]", s.Index()+1, s.Len())),
		ui.StyleBold.Render(e.ID),
		ui.FormatMuted(ui.FormatBytes(e.Size)),
		mark,
		renamed,
	)
	fmt.Fprintf(l.out, "%s [%s]: ", ui.StyleHeader.Render("name"), e.DesiredName)
}

// handle applies one input line. quit is true once the user asked to leave.
func (l *lineSession) handle(ctx context.Context, line string) (quit bool, err error) {
	s := l.session
	current := s.Current().DesiredName

	if !strings.HasPrefix(line, ":") {
		buffer := line
		if buffer == "" {
			buffer = current
		}
		res, err := s.Next(ctx, buffer)
		if err != nil {
			return false, err
		}
		l.reportCommit(res)
		return false, nil
	}

	switch command := strings.TrimPrefix(line, ":"); command {
	case "n":
		_, err = s.Next(ctx, current)
	case "p":
		_, err = s.Prev(ctx, current)
	case "x":
		s.ToggleExport()
	case "+":
		s.SetExport(true)
	case "-":
		s.SetExport(false)
	case "h":
		s.SetHideRenamed(!s.HideRenamed())
		fmt.Fprintln(l.out, ui.FormatInfo(fmt.Sprintf("Hide renamed: %v", s.HideRenamed())))
	case "l":
		l.printList()
	case "f":
		err = l.fuzzyJump(ctx, current)
	case "e":
		err = l.export(ctx)
	case "q":
		return true, nil
	case "?":
		fmt.Fprintln(l.out, renameHelp)
	default:
		pos, convErr := strconv.Atoi(command)
		if convErr != nil {
			return false, fmt.Errorf("unknown command %q (:? for help)", line)
		}
		_, err = s.Jump(ctx, current, pos)
	}
	return false, err
}

func (l *lineSession) reportCommit(res services.CommitResult) {
	switch res.State {
	case domain.StateCommitted:
		fmt.Fprintln(l.out, ui.FormatSuccess(fmt.Sprintf("%s → %s", res.ID, res.Name)))
	case domain.StateReverted:
		fmt.Fprintln(l.out, ui.FormatInfo(fmt.Sprintf("%s keeps %s", res.ID, res.Name)))
	}
}

func (l *lineSession) reportChanges() {
	if l.changes == nil {
		return
	}
	for {
		select {
		case change, ok := <-l.changes:
			if !ok {
				l.changes = nil
				return
			}
			fmt.Fprintln(l.out, ui.FormatWarning(fmt.Sprintf("Source changed: %s %s (not rescanned)", change.Path, change.Op)))
		default:
			return
		}
	}
}

func (l *lineSession) printList() {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Width: 3, Align: "right"},
		{Header: "File", Width: 25},
		{Header: "Name", Width: 25},
		{Header: "Export", Width: 6},
	})
	for i, e := range l.session.Entries() {
		mark := ""
		if e.Export {
			mark = ui.IconMarked
		}
		name := e.DesiredName
		if e.Renamed {
			name += " " + ui.IconRenamed
		}
		table.AddRow([]string{strconv.Itoa(i + 1), e.ID, name, mark})
	}
	fmt.Fprint(l.out, table.Render())
}

func (l *lineSession) fuzzyJump(ctx context.Context, buffer string) error {
	idx, err := l.findEntry(ctx, l.session.Entries())
	if err != nil {
		fmt.Fprintln(l.out, ui.FormatInfo("Selection cancelled."))
		return nil
	}
	_, err = l.session.Jump(ctx, buffer, idx+1)
	return err
}

func fuzzyFindEntry(ctx context.Context, entries []domain.ImageEntry) (int, error) {
	return fuzzyfinder.Find(
		entries,
		func(i int) string {
			return entries[i].ID + "  " + entries[i].DesiredName
		},
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			e := entries[i]
			return fmt.Sprintf("File: %s\nName: %s\nSize: %s\nExport: %v\nRenamed: %v",
				e.ID, e.OutputFilename(), ui.FormatBytes(e.Size), e.Export, e.Renamed)
		}),
	)
}

func (l *lineSession) export(ctx context.Context) error {
	s := l.session
	if n, _ := s.ExportCount(); n == 0 {
		return services.ErrNothingToExport
	}

	dest, ok, err := l.picker.Pick(ctx, s.SourceDir())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(l.out, ui.FormatInfo("No destination chosen."))
		return nil
	}
	if dest, err = checkDestination(s.SourceDir(), dest); err != nil {
		return err
	}

	job, err := s.NewExportJob(dest, l.copier)
	if err != nil {
		return err
	}

	plan := job.Plan()
	if !confirmOverwrite(ctx, l.in, l.out, plan) {
		_ = s.ReleaseJob(job)
		fmt.Fprintln(l.out, ui.FormatInfo("Export aborted."))
		return nil
	}

	fmt.Fprintln(l.out, ui.FormatExport(fmt.Sprintf("Copying %d images (%s) to %s, Ctrl+C stops after the current file",
		len(plan.Items), ui.FormatBytes(plan.TotalBytes()), plan.DestDir)))
	runExport(ctx, s, job, l.out)
	return nil
}
