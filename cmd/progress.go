package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/services"
	"github.com/kamal-hamza/imgpick/pkg/ui"
)

const progressBarWidth = 30

// lineProgressView redraws a single terminal line on every poll
type lineProgressView struct {
	out io.Writer
}

func (v *lineProgressView) Update(snap domain.JobSnapshot) {
	fmt.Fprintf(v.out, "\r%s", ui.RenderProgress(snap.BytesCopied, snap.TotalBytes, snap.FilesCopied, snap.FilesTotal, progressBarWidth))
}

func (v *lineProgressView) Done(snap domain.JobSnapshot) {
	v.Update(snap)
	fmt.Fprintln(v.out)
	fmt.Fprintln(v.out, exportSummary(snap))
}

// exportSummary describes how a finished job ended
func exportSummary(snap domain.JobSnapshot) string {
	copied := fmt.Sprintf("%d/%d files, %s", snap.FilesCopied, snap.FilesTotal, ui.FormatBytes(snap.BytesCopied))
	switch snap.Status {
	case domain.StatusCompleted:
		return ui.FormatSuccess("Export complete: " + copied)
	case domain.StatusCancelled:
		return ui.FormatWarning("Export cancelled after " + copied)
	case domain.StatusFailed:
		return ui.FormatError(fmt.Sprintf("Export failed after %s: %v", copied, snap.Err))
	default:
		return ui.FormatInfo(snap.Status.String())
	}
}

// runExport starts job and blocks until it is finished, redrawing progress
// on out. Cancelling ctx stops the job after the file in progress.
func runExport(ctx context.Context, session *services.Session, job *services.ExportJob, out io.Writer) domain.JobSnapshot {
	reporter := services.NewProgressReporter(job, &lineProgressView{out: out}, pollInterval(), func() {
		if session != nil {
			_ = session.ReleaseJob(job)
		}
	})

	// Cancellation reaches the worker through the reporter
	job.Start(context.Background())
	return reporter.Watch(ctx)
}
