package domain

import (
	"fmt"
	"path/filepath"
)

// CopyItem is one file of an export plan.
type CopyItem struct {
	ID     string
	Source string
	Dest   string
	Size   int64
}

// ExportPlan is the immutable list of copies captured when an export starts.
type ExportPlan struct {
	SourceDir string
	DestDir   string
	Items     []CopyItem
}

// BuildPlan snapshots the flagged entries, in order, into a plan.
// The entries slice is not retained.
func BuildPlan(sourceDir, destDir string, entries []ImageEntry) ExportPlan {
	plan := ExportPlan{
		SourceDir: sourceDir,
		DestDir:   destDir,
		Items:     make([]CopyItem, 0, len(entries)),
	}
	for _, e := range entries {
		if !e.Export {
			continue
		}
		plan.Items = append(plan.Items, CopyItem{
			ID:     e.ID,
			Source: filepath.Join(sourceDir, e.ID),
			Dest:   filepath.Join(destDir, e.OutputFilename()),
			Size:   e.Size,
		})
	}
	return plan
}

// TotalBytes sums the sizes of all planned copies.
func (p ExportPlan) TotalBytes() int64 {
	var total int64
	for _, item := range p.Items {
		total += item.Size
	}
	return total
}

// JobStatus is the lifecycle state of an export job.
type JobStatus int

const (
	StatusIdle JobStatus = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
	StatusFailed
)

func (s JobStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// IsTerminal reports whether no further progress can happen.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// JobSnapshot is a consistent read of an export job's state.
type JobSnapshot struct {
	JobID       string
	Status      JobStatus
	BytesCopied int64
	TotalBytes  int64
	FilesCopied int
	FilesTotal  int
	Err         error
}

// Fraction returns progress in [0, 1]. An empty job counts as done.
func (s JobSnapshot) Fraction() float64 {
	if s.TotalBytes <= 0 {
		if s.Status.IsTerminal() {
			return 1
		}
		return 0
	}
	return float64(s.BytesCopied) / float64(s.TotalBytes)
}

// Percent returns progress as an integer percentage.
func (s JobSnapshot) Percent() int {
	return int(s.Fraction() * 100)
}

// CopyError wraps the I/O failure that stopped an export.
type CopyError struct {
	Item CopyItem
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Item.Source, e.Item.Dest, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
