package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgpick/internal/adapters/copier"
	"github.com/kamal-hamza/imgpick/internal/adapters/picker"
	"github.com/kamal-hamza/imgpick/internal/adapters/watcher"
	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
	"github.com/kamal-hamza/imgpick/internal/core/services"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var (
	browseDest        string
	browseHideRenamed bool
	browseNoWatch     bool
)

var browseCmd = &cobra.Command{
	Use:     "browse [dir]",
	Aliases: []string{"b"},
	Short:   "Rename and export images in a full-screen browser",
	Long: `Open the images of a directory (default: current directory) in a
full-screen browser. Edit the name of the current image and move on; a name
already used by another image opens a dialog with a suggested alternative.

Keyboard Shortcuts:
  Navigation:
    Tab / Enter / Ctrl+N   Next image
    Shift+Tab / Ctrl+P     Previous image
    Ctrl+G                 Jump to image number
    Ctrl+R                 Toggle hide-renamed

  Export:
    ↑ / ↓                  Mark / unmark for export
    Ctrl+T                 Toggle export mark
    Ctrl+S                 Export marked images
    Ctrl+K                 Cancel running export

  General:
    Esc                    Restore the committed name
    Ctrl+Y                 Copy output filename
    F1                     Help
    Ctrl+C                 Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseDest, "dest", "d", "", "Pre-fill the export destination")
	browseCmd.Flags().BoolVar(&browseHideRenamed, "hide-renamed", false, "Skip renamed images when stepping")
	browseCmd.Flags().BoolVar(&browseNoWatch, "no-watch", false, "Do not watch the source directory for changes")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)

	dir, err := sourceDir(args)
	if err != nil {
		return err
	}

	session, err := openSession(ctx, dir, nil)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("hide-renamed") {
		session.SetHideRenamed(browseHideRenamed)
	}

	dest := browseDest
	if dest == "" {
		dest = appConfig.DefaultDestination
	}

	m := newBrowseModel(ctx, session, browseOptions{
		dest:             dest,
		copier:           copier.NewFileCopier(),
		picker:           picker.NewFuzzyPicker(),
		interval:         pollInterval(),
		confirmOverwrite: appConfig.ConfirmOverwrite,
	})

	if appConfig.WatchSource && !browseNoWatch {
		w, err := watcher.New(dir, newScanner().Matches)
		if err != nil {
			slog.Warn("not watching source directory", "dir", dir, "err", err)
		} else {
			defer w.Close()
			m.changes = w.Events()
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}

	if fm, ok := final.(browseModel); ok {
		fmt.Fprintln(cmd.OutOrStdout(), fm.summary())
	}
	return nil
}

type browseMode int

const (
	modeBrowse browseMode = iota
	modeConflict
	modeJump
	modeDestination
	modeHelp
)

type browseOptions struct {
	dest             string
	copier           ports.FileCopier
	picker           ports.DirectoryPicker
	interval         time.Duration
	confirmOverwrite bool
}

type browseModel struct {
	ctx     context.Context
	session *services.Session
	opts    browseOptions
	mode    browseMode

	editor    textinput.Model // name of the current image
	dialog    textinput.Model // conflict replacement name
	dialogErr error
	jumpInput textinput.Model
	destInput textinput.Model
	inputErr  string
	armedDest string // destination whose overwrite warning was shown

	reporter   *services.ProgressReporter
	view       *tuiProgressView
	bar        progress.Model
	lastExport *domain.JobSnapshot
	quitting   bool

	changes <-chan domain.SourceChange

	help          help.Model
	keys          browseKeyMap
	width         int
	height        int
	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time
}

type browseKeyMap struct {
	Next         key.Binding
	Prev         key.Binding
	Jump         key.Binding
	HideRenamed  key.Binding
	Mark         key.Binding
	Unmark       key.Binding
	ToggleMark   key.Binding
	Export       key.Binding
	CancelExport key.Binding
	Reset        key.Binding
	Copy         key.Binding
	Help         key.Binding
	Quit         key.Binding
	Confirm      key.Binding
	Escape       key.Binding
	Browse       key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Mark, k.Unmark, k.Export, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Jump, k.HideRenamed},
		{k.Mark, k.Unmark, k.ToggleMark, k.Export, k.CancelExport},
		{k.Reset, k.Copy, k.Help, k.Quit},
	}
}

var browseKeys = browseKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "enter", "ctrl+n"),
		key.WithHelp("tab/enter", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "ctrl+p"),
		key.WithHelp("shift+tab", "previous"),
	),
	Jump: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "jump to #"),
	),
	HideRenamed: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "hide renamed"),
	),
	Mark: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "export"),
	),
	Unmark: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "skip"),
	),
	ToggleMark: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "toggle export"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "export marked"),
	),
	CancelExport: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "cancel export"),
	),
	Reset: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "restore name"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy filename"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Browse: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "browse folders"),
	),
}

func newBrowseModel(ctx context.Context, session *services.Session, opts browseOptions) browseModel {
	if opts.interval <= 0 {
		opts.interval = services.DefaultPollInterval
	}

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 255
	editor.Width = 40
	editor.Focus()

	dialog := textinput.New()
	dialog.Prompt = ""
	dialog.CharLimit = 255
	dialog.Width = 40

	jump := textinput.New()
	jump.Prompt = "# "
	jump.Placeholder = fmt.Sprintf("1-%d", session.Len())
	jump.CharLimit = 10
	jump.Width = 12

	dest := textinput.New()
	dest.Prompt = ""
	dest.Placeholder = "destination directory"
	dest.Width = 50

	m := browseModel{
		ctx:          ctx,
		session:      session,
		opts:         opts,
		mode:         modeBrowse,
		editor:       editor,
		dialog:       dialog,
		jumpInput:    jump,
		destInput:    dest,
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:         help.New(),
		keys:         browseKeys,
		messageStyle: ui.StyleInfo,
	}
	m.loadCurrent()
	return m
}

// Messages

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type pollMsg struct{}

type sourceChangedMsg struct {
	change domain.SourceChange
	ok     bool
}

type destinationPickedMsg struct {
	dir string
	ok  bool
	err error
}

// tuiProgressView keeps the latest snapshot for View
type tuiProgressView struct {
	snap domain.JobSnapshot
	done bool
}

func (v *tuiProgressView) Update(snap domain.JobSnapshot) { v.snap = snap }

func (v *tuiProgressView) Done(snap domain.JobSnapshot) {
	v.snap = snap
	v.done = true
}

// pickerExec runs a DirectoryPicker through tea.Exec so the finder gets the
// terminal while the program is suspended
type pickerExec struct {
	ctx    context.Context
	picker ports.DirectoryPicker
	start  string
	dir    string
	ok     bool
	err    error
}

func (p *pickerExec) Run() error {
	p.dir, p.ok, p.err = p.picker.Pick(p.ctx, p.start)
	return p.err
}

func (p *pickerExec) SetStdin(io.Reader)  {}
func (p *pickerExec) SetStdout(io.Writer) {}
func (p *pickerExec) SetStderr(io.Writer) {}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

func waitForChange(changes <-chan domain.SourceChange) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-changes
		return sourceChangedMsg{change: change, ok: ok}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = clamp(msg.Width-30, 10, 60)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeConflict:
			return m.updateConflict(msg)
		case modeJump:
			return m.updateJump(msg)
		case modeDestination:
			return m.updateDestination(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateBrowse(msg)
		}

	case statusMsg:
		return m, m.flash(msg.message, msg.style)

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case pollMsg:
		return m.pollExport()

	case sourceChangedMsg:
		if !msg.ok {
			m.changes = nil
			return m, nil
		}
		text := fmt.Sprintf("Source changed: %s %s (not rescanned)", msg.change.Path, msg.change.Op)
		return m, tea.Batch(m.flash(text, ui.StyleWarning), waitForChange(m.changes))

	case destinationPickedMsg:
		if msg.err != nil {
			m.inputErr = msg.err.Error()
			return m, nil
		}
		if msg.ok {
			m.destInput.SetValue(msg.dir)
			m.destInput.CursorEnd()
			m.inputErr = ""
		}
		return m, nil
	}

	return m, nil
}

func (m browseModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.exportRunning() {
			m.quitting = true
			m.reporter.Cancel()
			return m, m.flash("Cancelling export, quitting after the current file...", ui.StyleWarning)
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m.navigate(m.session.NextIndex())

	case key.Matches(msg, m.keys.Prev):
		return m.navigate(m.session.PrevIndex())

	case key.Matches(msg, m.keys.Mark):
		m.session.SetExport(true)

	case key.Matches(msg, m.keys.Unmark):
		m.session.SetExport(false)

	case key.Matches(msg, m.keys.ToggleMark):
		m.session.ToggleExport()

	case key.Matches(msg, m.keys.HideRenamed):
		m.session.SetHideRenamed(!m.session.HideRenamed())
		state := "off"
		if m.session.HideRenamed() {
			state = "on"
		}
		return m, m.flash("Hide renamed: "+state, ui.StyleInfo)

	case key.Matches(msg, m.keys.Jump):
		m.mode = modeJump
		m.inputErr = ""
		m.jumpInput.SetValue("")
		m.jumpInput.Focus()
		m.editor.Blur()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Export):
		return m.openDestination()

	case key.Matches(msg, m.keys.CancelExport):
		if !m.exportRunning() {
			return m, m.flash("No export is running", ui.StyleMuted)
		}
		m.reporter.Cancel()
		return m, m.flash("Cancelling export after the current file...", ui.StyleWarning)

	case key.Matches(msg, m.keys.Reset):
		m.loadCurrent()

	case key.Matches(msg, m.keys.Copy):
		name := m.editor.Value() + m.session.Current().Ext
		if err := clipboard.WriteAll(name); err != nil {
			return m, m.flash("Clipboard unavailable: "+err.Error(), ui.StyleError)
		}
		return m, m.flash("Copied "+name, ui.StyleSuccess)

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp

	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		m.session.Edit(m.editor.Value())
		return m, cmd
	}

	return m, nil
}

// navigate commits the editor buffer and moves to target, or opens the
// conflict dialog when the buffer collides
func (m browseModel) navigate(target int) (tea.Model, tea.Cmd) {
	res, err := m.session.Begin(m.editor.Value(), target)
	if err != nil {
		return m, m.flash(err.Error(), ui.StyleError)
	}

	if res.State == domain.StateConflictPending {
		m.openConflict(*res.Conflict)
		return m, textinput.Blink
	}

	m.loadCurrent()
	return m, m.commitStatus(res)
}

func (m *browseModel) openConflict(c domain.Conflict) {
	m.mode = modeConflict
	m.editor.Blur()
	m.dialog.SetValue(c.Suggestion)
	m.dialog.CursorEnd()
	m.dialog.Focus()
	m.validateDialog()
}

func (m *browseModel) validateDialog() {
	c, ok := m.session.Pending()
	if !ok {
		m.dialogErr = nil
		return
	}
	m.dialogErr = m.session.Resolver().Validate(c.ID, m.dialog.Value())
	if m.dialogErr != nil {
		m.dialog.TextStyle = ui.StyleInvalid
	} else {
		m.dialog.TextStyle = ui.StyleInput
	}
}

func (m browseModel) updateConflict(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		name := m.dialog.Value()
		if name == "" {
			return m.settle(domain.Cancelled())
		}
		if m.dialogErr != nil {
			// Rename stays disabled while the name is taken
			return m, nil
		}
		return m.settle(domain.Renamed(name))

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		return m.settle(domain.Cancelled())
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)
	m.validateDialog()
	return m, cmd
}

func (m browseModel) settle(res domain.Resolution) (tea.Model, tea.Cmd) {
	out, err := m.session.Settle(res)
	if err != nil {
		m.dialogErr = err
		return m, nil
	}

	m.mode = modeBrowse
	m.dialog.Blur()
	m.dialogErr = nil
	m.loadCurrent()
	return m, m.commitStatus(out)
}

func (m browseModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeBrowse
		m.jumpInput.Blur()
		m.editor.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.jumpInput.Value())
		target := m.session.Index()
		if value != "" {
			pos, err := strconv.Atoi(value)
			if err != nil || pos < 1 || pos > m.session.Len() {
				m.inputErr = fmt.Sprintf("enter a number from 1 to %d", m.session.Len())
				return m, nil
			}
			target = pos - 1
		}
		m.mode = modeBrowse
		m.jumpInput.Blur()
		m.inputErr = ""
		return m.navigate(target)
	}

	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	m.inputErr = ""
	return m, cmd
}

func (m browseModel) openDestination() (tea.Model, tea.Cmd) {
	if m.exportRunning() {
		return m, m.flash("An export is already running", ui.StyleWarning)
	}
	if n, _ := m.session.ExportCount(); n == 0 {
		return m, m.flash("No images are marked for export", ui.StyleWarning)
	}

	m.mode = modeDestination
	m.inputErr = ""
	m.armedDest = ""
	m.destInput.SetValue(m.opts.dest)
	m.destInput.CursorEnd()
	m.destInput.Focus()
	m.editor.Blur()
	return m, textinput.Blink
}

func (m browseModel) updateDestination(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
		m.destInput.Blur()
		m.editor.Focus()
		return m, m.flash("No destination chosen, nothing exported", ui.StyleMuted)

	case key.Matches(msg, m.keys.Browse):
		if m.opts.picker == nil {
			return m, nil
		}
		run := &pickerExec{ctx: m.ctx, picker: m.opts.picker, start: m.session.SourceDir()}
		return m, tea.Exec(run, func(err error) tea.Msg {
			return destinationPickedMsg{dir: run.dir, ok: run.ok, err: err}
		})

	case key.Matches(msg, m.keys.Confirm):
		return m.startExport(strings.TrimSpace(m.destInput.Value()))
	}

	var cmd tea.Cmd
	m.destInput, cmd = m.destInput.Update(msg)
	m.inputErr = ""
	m.armedDest = ""
	return m, cmd
}

func (m browseModel) startExport(dest string) (tea.Model, tea.Cmd) {
	if dest == "" {
		m.inputErr = "enter a directory or press tab to browse"
		return m, nil
	}

	dest, err := checkDestination(m.session.SourceDir(), dest)
	if err == nil {
		dest, _, err = picker.Static{Dir: dest}.Pick(m.ctx, m.session.SourceDir())
	}
	if err != nil {
		m.inputErr = err.Error()
		return m, nil
	}

	job, err := m.session.NewExportJob(dest, m.opts.copier)
	if err != nil {
		m.inputErr = err.Error()
		return m, nil
	}

	if m.opts.confirmOverwrite && m.armedDest != dest {
		if existing := copier.Existing(job.Plan()); len(existing) > 0 {
			_ = m.session.ReleaseJob(job)
			m.armedDest = dest
			m.inputErr = fmt.Sprintf("%d file(s) already exist, press enter again to overwrite", len(existing))
			return m, nil
		}
	}

	view := &tuiProgressView{}
	session := m.session
	m.view = view
	m.reporter = services.NewProgressReporter(job, view, m.opts.interval, func() {
		_ = session.ReleaseJob(job)
	})
	m.lastExport = nil
	m.mode = modeBrowse
	m.destInput.Blur()
	m.editor.Focus()
	m.armedDest = ""

	job.Start(context.Background())
	slog.Info("export requested", "job", job.ID(), "dest", dest)
	return m, tea.Batch(m.tick(), m.flash(fmt.Sprintf("Exporting to %s", dest), ui.StyleInfo))
}

func (m browseModel) tick() tea.Cmd {
	return tea.Tick(m.opts.interval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m browseModel) exportRunning() bool {
	return m.reporter != nil
}

func (m browseModel) pollExport() (tea.Model, tea.Cmd) {
	if m.reporter == nil {
		return m, nil
	}

	snap, finished := m.reporter.Poll()
	if !finished {
		return m, m.tick()
	}

	m.reporter = nil
	m.lastExport = &snap
	if m.quitting {
		return m, tea.Quit
	}
	return m, m.flash(exportSummary(snap), lipgloss.NewStyle())
}

func (m browseModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
	}
	return m, nil
}

// loadCurrent puts the committed name of the current image into the editor
func (m *browseModel) loadCurrent() {
	m.editor.SetValue(m.session.Current().DesiredName)
	m.editor.CursorEnd()
	m.editor.Focus()
}

func (m *browseModel) flash(text string, style lipgloss.Style) tea.Cmd {
	m.message = text
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(3 * time.Second)
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearMessageMsg{} })
}

func (m *browseModel) commitStatus(res services.CommitResult) tea.Cmd {
	switch res.State {
	case domain.StateCommitted:
		return m.flash(fmt.Sprintf("%s %s → %s", ui.IconRenamed, res.ID, res.Name), ui.StyleSuccess)
	case domain.StateReverted:
		return m.flash(fmt.Sprintf("%s keeps %s", res.ID, res.Name), ui.StyleMuted)
	}
	return nil
}

func (m browseModel) summary() string {
	renamed := 0
	for _, e := range m.session.Entries() {
		if e.Renamed {
			renamed++
		}
	}
	marked, size := m.session.ExportCount()
	text := ui.FormatInfo(fmt.Sprintf("%d of %d images renamed, %d marked (%s)", renamed, m.session.Len(), marked, ui.FormatBytes(size)))
	if m.lastExport != nil {
		text += "\n" + exportSummary(*m.lastExport)
	}
	return text
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m browseModel) View() string {
	if m.mode == modeHelp {
		return m.helpView()
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(m.currentView())
	b.WriteString("\n")

	switch m.mode {
	case modeConflict:
		b.WriteString(m.conflictView())
		b.WriteString("\n")
	case modeJump:
		b.WriteString(ui.StyleHeader.Render("Jump to "))
		b.WriteString(m.jumpInput.View())
		b.WriteString("\n")
		b.WriteString(m.inputErrView())
	case modeDestination:
		b.WriteString(m.destinationView())
	}

	if m.exportRunning() {
		b.WriteString(m.progressView())
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(m.messageStyle.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m browseModel) headerView() string {
	s := m.session
	title := ui.StyleTitle.Render(ui.IconImage + " imgpick")
	pos := ui.StyleAccent.Render(fmt.Sprintf("[%d/%d]", s.Index()+1, s.Len()))
	marked, size := s.ExportCount()
	info := ui.FormatMuted(fmt.Sprintf("%s  %d marked (%s)", s.SourceDir(), marked, ui.FormatBytes(size)))
	if s.HideRenamed() {
		info += ui.StyleWarning.Render("  hide renamed")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", pos, " ", info)
}

// listView shows a window of entries around the current one
func (m browseModel) listView() string {
	s := m.session
	rows := 9
	if m.height > 0 {
		rows = clamp(m.height-16, 3, 25)
	}

	start := clamp(s.Index()-rows/2, 0, max(0, s.Len()-rows))
	end := min(s.Len(), start+rows)

	var b strings.Builder
	for i := start; i < end; i++ {
		e := s.Entry(i)
		name := e.DesiredName
		if i == s.Index() {
			name = m.editor.Value()
		}

		mark := ui.StyleMuted.Render(ui.IconUnmarked)
		if e.Export {
			mark = ui.StyleSuccess.Render(ui.IconMarked)
		}
		renamed := " "
		if e.Renamed {
			renamed = ui.StyleInfo.Render(ui.IconRenamed)
		}

		line := fmt.Sprintf("%s %s %4d  %-30s → %s", mark, renamed, i+1, e.ID, name+e.Ext)
		if i == s.Index() {
			b.WriteString(ui.StylePrimary.Render("> ") + ui.StyleBold.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) currentView() string {
	e := m.session.Current()

	export := ui.StyleMuted.Render(ui.IconUnmarked + " skip")
	if e.Export {
		export = ui.StyleSuccess.Render(ui.IconMarked + " export")
	}

	var b strings.Builder
	b.WriteString(ui.RenderKeyValue("File", fmt.Sprintf("%s (%s)", e.ID, ui.FormatBytes(e.Size))))
	b.WriteString("\n")
	b.WriteString(ui.StyleHeader.Render("Name: "))
	b.WriteString(ui.StyleInput.Render(m.editor.View()))
	b.WriteString(ui.StyleMuted.Render(e.Ext))
	b.WriteString("\n")
	b.WriteString(ui.RenderKeyValue("Export", export))
	b.WriteString("\n")
	return b.String()
}

func (m browseModel) conflictView() string {
	c, ok := m.session.Pending()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.StyleWarning.Render(fmt.Sprintf("%s %q is already used by another image", ui.IconWarning, c.Requested)))
	b.WriteString("\n\n")
	b.WriteString("New name: ")
	b.WriteString(m.dialog.View())
	b.WriteString("\n\n")
	if m.dialogErr != nil && m.dialog.Value() != "" {
		b.WriteString(ui.StyleInvalid.Render(m.dialogErr.Error()))
	} else {
		b.WriteString(ui.FormatMuted(fmt.Sprintf("enter rename · esc keep %q", c.OwnName)))
	}
	return ui.StyleDialog.Render(b.String())
}

func (m browseModel) destinationView() string {
	n, size := m.session.ExportCount()

	var b strings.Builder
	b.WriteString(ui.StyleHeader.Render(fmt.Sprintf("%s Export %d images (%s) to ", ui.IconExport, n, ui.FormatBytes(size))))
	b.WriteString(m.destInput.View())
	b.WriteString("\n")
	b.WriteString(m.inputErrView())
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Confirm, m.keys.Browse, m.keys.Escape}))
	b.WriteString("\n")
	return b.String()
}

func (m browseModel) inputErrView() string {
	if m.inputErr == "" {
		return ""
	}
	return ui.StyleInvalid.Render(m.inputErr) + "\n"
}

func (m browseModel) progressView() string {
	snap := m.view.snap
	if snap.JobID == "" {
		snap = m.reporter.Job().Snapshot()
	}
	label := fmt.Sprintf(" %d/%d files  %s / %s", snap.FilesCopied, snap.FilesTotal,
		ui.FormatBytes(snap.BytesCopied), ui.FormatBytes(snap.TotalBytes))
	return m.bar.ViewAs(snap.Fraction()) + ui.FormatMuted(label)
}

func (m browseModel) helpView() string {
	var b strings.Builder
	b.WriteString(ui.FormatTitle("imgpick keys"))
	b.WriteString("\n\n")
	full := help.New()
	full.ShowAll = true
	full.Width = m.width
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(ui.FormatMuted("esc or f1 to return"))
	return b.String()
}
