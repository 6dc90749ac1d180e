package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in SI units ("12 MB")
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// RenderProgress draws a plain text bar with a byte and file summary,
// e.g. "[=====>    ] 52%  1.2 MB / 2.3 MB  (3/6 files)"
func RenderProgress(done, total int64, files, totalFiles, width int) string {
	if width < 3 {
		width = 3
	}

	fraction := 1.0
	if total > 0 {
		fraction = float64(done) / float64(total)
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	inner := width - 2
	filled := int(fraction * float64(inner))
	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(strings.Repeat("=", filled))
	if filled < inner {
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", inner-filled-1))
	}
	bar.WriteString("]")

	return fmt.Sprintf("%s %3d%%  %s / %s  (%d/%d files)",
		StyleAccent.Render(bar.String()),
		int(fraction*100),
		FormatBytes(done),
		FormatBytes(total),
		files, totalFiles,
	)
}
