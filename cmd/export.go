package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgpick/internal/adapters/copier"
	"github.com/kamal-hamza/imgpick/internal/adapters/picker"
	"github.com/kamal-hamza/imgpick/internal/adapters/prompt"
	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
	"github.com/kamal-hamza/imgpick/internal/core/services"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var (
	exportDest     string
	exportExclude  []string
	exportYes      bool
	exportDryRun   bool
	exportMkdir    bool
	exportPickDest bool
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Copy all images to a destination without renaming",
	Long: `Copy every image of a directory (default: current directory) to a
destination under its current file name, skipping files that match an
--exclude pattern. Press Ctrl+C to stop after the file being copied.

Examples:
  imgpick export --dest /mnt/usb/photos
  imgpick export ~/Pictures/raw --dest ./picked --exclude 'IMG_00*' --exclude '*.png'
  imgpick export --pick`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExportCmd,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDest, "dest", "d", "", "Destination directory (default: default_destination from config)")
	exportCmd.Flags().StringSliceVarP(&exportExclude, "exclude", "x", nil, "Glob pattern of file names to skip (repeatable)")
	exportCmd.Flags().BoolVarP(&exportYes, "yes", "y", false, "Overwrite existing files without asking")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Print the copy plan without copying")
	exportCmd.Flags().BoolVar(&exportMkdir, "mkdir", false, "Create the destination if it does not exist")
	exportCmd.Flags().BoolVar(&exportPickDest, "pick", false, "Choose the destination with the fuzzy finder")
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)
	out := cmd.OutOrStdout()

	dir, err := sourceDir(args)
	if err != nil {
		return err
	}

	entries, err := scanSource(ctx, newScanner(), dir)
	if err != nil {
		return err
	}
	excluded, err := applyExcludes(entries, exportExclude)
	if err != nil {
		return err
	}

	dest := exportDest
	if dest == "" {
		dest = appConfig.DefaultDestination
	}
	var chooser ports.DirectoryPicker
	switch {
	case exportPickDest:
		chooser = picker.NewFuzzyPicker()
	case dest != "":
		chooser = picker.Static{Dir: dest, Create: exportMkdir}
	default:
		return fmt.Errorf("no destination: pass --dest, --pick or set default_destination")
	}

	chosen, ok, err := chooser.Pick(ctx, dir)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, ui.FormatInfo("No destination chosen, nothing exported."))
		return nil
	}
	if chosen, err = checkDestination(dir, chosen); err != nil {
		return err
	}

	session, err := services.NewSession(dir, entries, nil)
	if err != nil {
		return err
	}
	job, err := session.NewExportJob(chosen, copier.NewFileCopier())
	if err != nil {
		if errors.Is(err, services.ErrNothingToExport) {
			fmt.Fprintln(out, ui.FormatWarning("Every image is excluded, nothing to export."))
			return nil
		}
		return err
	}

	plan := job.Plan()
	if exportDryRun {
		printPlan(cmd, plan, excluded)
		return nil
	}

	if !exportYes && !confirmOverwrite(ctx, prompt.NewLineReader(os.Stdin), out, plan) {
		fmt.Fprintln(out, ui.FormatInfo("Export aborted."))
		return nil
	}

	fmt.Fprintln(out, ui.FormatExport(fmt.Sprintf("Copying %d images (%s) to %s",
		len(plan.Items), ui.FormatBytes(plan.TotalBytes()), plan.DestDir)))
	if excluded > 0 {
		fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("%d excluded", excluded)))
	}

	snap := runExport(ctx, session, job, out)
	if snap.Status == domain.StatusFailed {
		return snap.Err
	}
	return nil
}

// applyExcludes clears the export flag of entries whose file name matches
// a pattern and returns how many were excluded
func applyExcludes(entries []domain.ImageEntry, patterns []string) (int, error) {
	excluded := 0
	for i := range entries {
		for _, pattern := range patterns {
			matched, err := filepath.Match(pattern, entries[i].ID)
			if err != nil {
				return 0, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
			if matched {
				entries[i].Export = false
				excluded++
				break
			}
		}
	}
	return excluded, nil
}

func printPlan(cmd *cobra.Command, plan domain.ExportPlan, excluded int) {
	out := cmd.OutOrStdout()
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Source", Width: 30},
		{Header: "Destination", Width: 40},
		{Header: "Size", Width: 8, Align: "right"},
	})
	for _, item := range plan.Items {
		table.AddRow([]string{filepath.Base(item.Source), item.Dest, ui.FormatBytes(item.Size)})
	}
	fmt.Fprint(out, table.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("%d to copy (%s), %d excluded",
		len(plan.Items), ui.FormatBytes(plan.TotalBytes()), excluded)))
}
