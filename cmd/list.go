package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgpick/internal/core/services"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

var listCmd = &cobra.Command{
	Use:     "list [dir]",
	Short:   "List the images imgpick would browse",
	Aliases: []string{"ls"},
	Long: `List the images in a directory (default: current directory) that match the
configured extensions, in browse order, with their default names and sizes.

Examples:
  imgpick list
  imgpick ls ~/Pictures/holiday`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	dir, err := sourceDir(args)
	if err != nil {
		return err
	}

	entries, err := scanSource(getContext(cmd), newScanner(), dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.FormatTitle("Images in "+dir))
	fmt.Fprintln(out)

	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Width: 3, Align: "right"},
		{Header: "File", Width: 30, Align: "left"},
		{Header: "Name", Width: 25, Align: "left"},
		{Header: "Size", Width: 8, Align: "right"},
	})

	var total int64
	for i, e := range entries {
		table.AddRow([]string{
			strconv.Itoa(i + 1),
			e.ID,
			e.DesiredName,
			ui.FormatBytes(e.Size),
		})
		total += e.Size
	}

	fmt.Fprint(out, table.Render())
	fmt.Fprintln(out)

	if dups := services.NewNameRegistry(entries).Duplicates(); len(dups) > 0 {
		fmt.Fprintln(out, ui.FormatWarning(fmt.Sprintf("%d default name(s) shared by several files", len(dups))))
		fmt.Fprint(out, ui.RenderSimpleList(dups))
	}

	fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("Total: %d images, %s", len(entries), ui.FormatBytes(total))))
	return nil
}
