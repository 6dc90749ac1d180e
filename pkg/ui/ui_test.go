package ui

import (
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{-4, "0 B"},
		{999, "999 B"},
		{1500, "1.5 kB"},
		{2_300_000, "2.3 MB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.input); got != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name    string
		done    int64
		total   int64
		percent string
	}{
		{"start", 0, 100, "  0%"},
		{"half", 50, 100, " 50%"},
		{"done", 100, 100, "100%"},
		{"empty job", 0, 0, "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := RenderProgress(tt.done, tt.total, 1, 2, 12)
			if !strings.Contains(line, tt.percent) {
				t.Errorf("RenderProgress() = %q, want %q", line, tt.percent)
			}
			if !strings.Contains(line, "(1/2 files)") {
				t.Errorf("missing file count in %q", line)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "#", Align: "right"},
		{Header: "FILE"},
		{Header: "SIZE", Align: "right"},
	})
	table.AddRow([]string{"1", "beach.jpg", "1.2 MB"})
	table.AddRow([]string{"2", "a.png", "10 B"})

	out := table.Render()
	for _, want := range []string{"FILE", "beach.jpg", "a.png", "1.2 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Errorf("expected 4 lines (header, separator, 2 rows), got %d", lines)
	}

	if NewTable(nil).Render() != "" {
		t.Error("table without columns should render empty")
	}
}
