package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	processed := make(chan string, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		processed <- job.ID
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "export"}))

	select {
	case id := <-processed:
		require.Equal(t, "job-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job was never processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "export"}))

	select {
	case <-done:
		require.EqualValues(t, 2, atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job was never retried")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{ID: "job-1"}))
}

func TestQueueStopWithoutStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	q.Stop()
}
