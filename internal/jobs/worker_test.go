package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerProcessesEnqueuedJobs(t *testing.T) {
	worker := NewWorker(2)

	done := make(chan struct{})
	worker.Enqueue("test job", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	worker.Shutdown()
	stats := worker.GetStats()
	assert.GreaterOrEqual(t, stats.CompletedJobs, int64(1))
}

func TestWorkerTracksFailures(t *testing.T) {
	worker := NewWorker(1)

	done := make(chan struct{})
	worker.Enqueue("failing job", func(ctx context.Context) error {
		defer close(done)
		return errors.New("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	worker.Shutdown()
	assert.Equal(t, int64(1), worker.GetStats().FailedJobs)
}

func TestScheduleEveryImmediateRunsAtStartup(t *testing.T) {
	worker := NewWorker(1)
	defer worker.Shutdown()

	var runs atomic.Int32
	done := make(chan struct{})
	worker.ScheduleEveryImmediate("sweep", time.Hour, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			close(done)
		}
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not run immediately")
	}
}

func TestShutdownStopsScheduledJobs(t *testing.T) {
	worker := NewWorker(1)

	var runs atomic.Int32
	worker.ScheduleEvery("sweep", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	worker.Shutdown()
	after := runs.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}
