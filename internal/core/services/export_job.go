package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports"
)

var ErrJobStarted = errors.New("export job already started")

// ExportJob copies a snapshot of flagged entries to the destination on a
// single worker goroutine.
//
// The worker and the interactive goroutine share bytesCopied and
// cancelRequested (plus the status fields derived from them) under mu.
// Cancellation is cooperative: it is checked before each file and never
// interrupts a copy in progress.
type ExportJob struct {
	id     string
	plan   domain.ExportPlan
	copier ports.FileCopier
	total  int64
	done   chan struct{}

	mu              sync.Mutex
	bytesCopied     int64
	filesCopied     int
	cancelRequested bool
	started         bool
	status          domain.JobStatus
	err             error
}

// NewExportJob creates an idle job. The plan items are copied, so later
// edits by the caller cannot reach a running job.
func NewExportJob(plan domain.ExportPlan, copier ports.FileCopier) *ExportJob {
	items := make([]domain.CopyItem, len(plan.Items))
	copy(items, plan.Items)
	plan.Items = items

	return &ExportJob{
		id:     uuid.NewString(),
		plan:   plan,
		copier: copier,
		total:  plan.TotalBytes(),
		done:   make(chan struct{}),
		status: domain.StatusIdle,
	}
}

// ID identifies the job in logs
func (j *ExportJob) ID() string { return j.id }

// Plan returns a copy of the job's plan
func (j *ExportJob) Plan() domain.ExportPlan {
	plan := j.plan
	plan.Items = make([]domain.CopyItem, len(j.plan.Items))
	copy(plan.Items, j.plan.Items)
	return plan
}

// TotalBytes is the progress denominator, fixed at creation
func (j *ExportJob) TotalBytes() int64 { return j.total }

// Done is closed once the worker has returned
func (j *ExportJob) Done() <-chan struct{} { return j.done }

// Start runs the job on a new goroutine and returns Done
func (j *ExportJob) Start(ctx context.Context) <-chan struct{} {
	go func() {
		if err := j.Run(ctx); err != nil && !errors.Is(err, ErrJobStarted) {
			slog.Debug("export job ended with error", "job", j.id, "err", err)
		}
	}()
	return j.done
}

// Run copies every planned item in order. It returns the failure that
// stopped the job, or nil when it completed or was cancelled.
// A cancelled ctx is treated like RequestCancel.
func (j *ExportJob) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return ErrJobStarted
	}
	j.started = true
	j.status = domain.StatusRunning
	j.mu.Unlock()
	defer close(j.done)

	slog.Info("export started", "job", j.id, "dest", j.plan.DestDir, "files", len(j.plan.Items), "bytes", j.total)

	for _, item := range j.plan.Items {
		j.mu.Lock()
		if ctx.Err() != nil {
			j.cancelRequested = true
		}
		if j.cancelRequested {
			j.status = domain.StatusCancelled
			copied := j.bytesCopied
			j.mu.Unlock()
			slog.Info("export cancelled", "job", j.id, "bytes", copied)
			return nil
		}
		j.mu.Unlock()

		if err := j.copier.Copy(item.Source, item.Dest); err != nil {
			copyErr := &domain.CopyError{Item: item, Err: err}
			j.mu.Lock()
			j.status = domain.StatusFailed
			j.err = copyErr
			copied := j.bytesCopied
			j.mu.Unlock()
			slog.Error("export failed", "job", j.id, "bytes", copied, "err", copyErr)
			return copyErr
		}

		j.mu.Lock()
		j.bytesCopied += item.Size
		j.filesCopied++
		j.mu.Unlock()
		slog.Debug("copied", "job", j.id, "src", item.Source, "dest", item.Dest, "size", item.Size)
	}

	j.mu.Lock()
	j.status = domain.StatusCompleted
	j.mu.Unlock()
	slog.Info("export completed", "job", j.id, "bytes", j.total)
	return nil
}

// RequestCancel asks the worker to stop before the next file
func (j *ExportJob) RequestCancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelRequested = true
}

// CancelRequested reports whether RequestCancel was called
func (j *ExportJob) CancelRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelRequested
}

// Progress returns the bytes of fully copied files
func (j *ExportJob) Progress() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.bytesCopied
}

// Status returns the current lifecycle state
func (j *ExportJob) Status() domain.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the failure retained on StatusFailed
func (j *ExportJob) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Snapshot reads all run state at once
func (j *ExportJob) Snapshot() domain.JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return domain.JobSnapshot{
		JobID:       j.id,
		Status:      j.status,
		BytesCopied: j.bytesCopied,
		TotalBytes:  j.total,
		FilesCopied: j.filesCopied,
		FilesTotal:  len(j.plan.Items),
		Err:         j.err,
	}
}
