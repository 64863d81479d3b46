package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedWorker struct {
	calls int32
	run   func(ctx context.Context) error
}

func (w *scriptedWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&w.calls, 1)
	return w.run(ctx)
}

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context) error {
		panic("boom")
	}}

	sup := NewSupervisor(slog.Default(), 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(500 * time.Millisecond)

	req.GreaterOrEqual(atomic.LoadInt32(&worker.calls), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context) error {
		return nil
	}}

	sup := NewSupervisor(slog.Default(), 50*time.Millisecond)

	done := make(chan struct{})
	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Worker returned nil once and the supervisor drained.
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
	req.Equal(int32(1), atomic.LoadInt32(&worker.calls))
}

func TestSupervisor_StopCancelsRunningWorkers(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}}

	sup := NewSupervisor(slog.Default(), 50*time.Millisecond)

	done := make(chan struct{})
	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	// Give the worker time to start before asking it to stop.
	time.Sleep(100 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have drained after Stop")
	}
}
