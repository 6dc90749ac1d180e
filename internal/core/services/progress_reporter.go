package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
)

const DefaultPollInterval = 100 * time.Millisecond

// ProgressReporter polls an export job from the interactive goroutine,
// renders to a view and tears the job down once it reaches a terminal state.
// It never writes job state except through RequestCancel.
type ProgressReporter struct {
	job      *ExportJob
	view     ports.ProgressView
	interval time.Duration
	teardown func()
	finished bool
	last     domain.JobSnapshot
}

// NewProgressReporter creates a reporter. view and teardown may be nil;
// interval <= 0 selects DefaultPollInterval.
func NewProgressReporter(job *ExportJob, view ports.ProgressView, interval time.Duration, teardown func()) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ProgressReporter{
		job:      job,
		view:     view,
		interval: interval,
		teardown: teardown,
	}
}

// Interval returns the polling period
func (r *ProgressReporter) Interval() time.Duration { return r.interval }

// Job returns the observed job
func (r *ProgressReporter) Job() *ExportJob { return r.job }

// Cancel forwards a user cancel request to the job
func (r *ProgressReporter) Cancel() {
	r.job.RequestCancel()
}

// Poll performs one polling step. finished is true once the job reached a
// terminal state and teardown ran; later calls return the final snapshot.
func (r *ProgressReporter) Poll() (snap domain.JobSnapshot, finished bool) {
	if r.finished {
		return r.last, true
	}

	snap = r.job.Snapshot()
	if !snap.Status.IsTerminal() {
		if r.view != nil {
			r.view.Update(snap)
		}
		r.last = snap
		return snap, false
	}

	<-r.job.Done()
	snap = r.job.Snapshot()
	r.finished = true
	r.last = snap

	if r.teardown != nil {
		r.teardown()
	}
	if r.view != nil {
		r.view.Done(snap)
	}
	slog.Debug("export reporter finished", "job", snap.JobID, "status", snap.Status, "bytes", snap.BytesCopied)
	return snap, true
}

// Watch polls until the job is finished. Cancelling ctx requests a
// cooperative cancel and keeps polling until the worker stops.
func (r *ProgressReporter) Watch(ctx context.Context) domain.JobSnapshot {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	ctxDone := ctx.Done()
	for {
		if snap, finished := r.Poll(); finished {
			return snap
		}

		select {
		case <-ticker.C:
		case <-ctxDone:
			slog.Info("cancel requested", "job", r.job.ID())
			r.Cancel()
			ctxDone = nil
		}
	}
}
