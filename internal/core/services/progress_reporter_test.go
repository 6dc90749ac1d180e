package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/imgpick/internal/core/domain"
	"github.com/kamal-hamza/imgpick/internal/core/ports/mocks"
)

func TestProgressReporter_DefaultInterval(t *testing.T) {
	job := NewExportJob(testPlan(1), mocks.NewMockCopier())

	require.Equal(t, DefaultPollInterval, NewProgressReporter(job, nil, 0, nil).Interval())
	require.Equal(t, time.Second, NewProgressReporter(job, nil, time.Second, nil).Interval())
}

func TestProgressReporter_PollRunningJob(t *testing.T) {
	copier := mocks.NewGatedMockCopier()
	job := NewExportJob(testPlan(10, 20), copier)
	view := mocks.NewMockProgressView()
	teardowns := 0
	r := NewProgressReporter(job, view, time.Millisecond, func() { teardowns++ })

	job.Start(context.Background())
	<-copier.Started

	snap, finished := r.Poll()
	require.False(t, finished)
	require.Equal(t, domain.StatusRunning, snap.Status)
	require.Len(t, view.Updates, 1)
	require.Zero(t, view.Dones)

	copier.Gate <- struct{}{}
	<-copier.Started
	copier.Gate <- struct{}{}
	waitDone(t, job)

	snap, finished = r.Poll()
	require.True(t, finished)
	require.Equal(t, domain.StatusCompleted, snap.Status)
	require.Equal(t, 1, teardowns)
	require.Equal(t, 1, view.Dones)
	require.EqualValues(t, 30, view.Final.BytesCopied)

	// Later polls repeat the final snapshot without another teardown.
	again, finished := r.Poll()
	require.True(t, finished)
	require.Equal(t, snap, again)
	require.Equal(t, 1, teardowns)
	require.Equal(t, 1, view.Dones)
}

func TestProgressReporter_WatchCompletes(t *testing.T) {
	job := NewExportJob(testPlan(10, 20, 30), mocks.NewMockCopier())
	view := mocks.NewMockProgressView()
	r := NewProgressReporter(job, view, time.Millisecond, nil)

	job.Start(context.Background())
	snap := r.Watch(context.Background())

	require.Equal(t, domain.StatusCompleted, snap.Status)
	require.EqualValues(t, 60, snap.BytesCopied)
	require.Equal(t, 1, view.Dones)

	var last int64
	for _, u := range view.Updates {
		require.GreaterOrEqual(t, u.BytesCopied, last)
		last = u.BytesCopied
	}
}

func TestProgressReporter_WatchCancel(t *testing.T) {
	copier := mocks.NewGatedMockCopier()
	job := NewExportJob(testPlan(10, 20, 30), copier)
	r := NewProgressReporter(job, nil, time.Millisecond, nil)

	job.Start(context.Background())
	<-copier.Started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := make(chan domain.JobSnapshot, 1)
	go func() { result <- r.Watch(ctx) }()

	require.Eventually(t, job.CancelRequested, 5*time.Second, time.Millisecond)
	copier.Gate <- struct{}{}

	select {
	case snap := <-result:
		require.Equal(t, domain.StatusCancelled, snap.Status)
		require.EqualValues(t, 10, snap.BytesCopied)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
}

func TestProgressReporter_TeardownReleasesSessionJob(t *testing.T) {
	s := newTestSession(t, nil, "a.jpg", "b.jpg")
	s.SetExport(true)

	job, err := s.NewExportJob("/dst", mocks.NewMockCopier())
	require.NoError(t, err)

	r := NewProgressReporter(job, nil, time.Millisecond, func() {
		require.NoError(t, s.ReleaseJob(job))
	})
	job.Start(context.Background())
	snap := r.Watch(context.Background())

	require.Equal(t, domain.StatusCompleted, snap.Status)
	require.Nil(t, s.ActiveJob())

	_, err = s.NewExportJob("/dst", mocks.NewMockCopier())
	require.NoError(t, err, "a new export may start after teardown")
}
