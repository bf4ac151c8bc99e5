package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"golang.org/x/sync/semaphore"
)

var ErrDispatcherClosed = errors.New("dispatcher closed")

// Processor runs recording jobs. Abandon settles a job that was dropped
// before Process could start.
type Processor interface {
	Process(ctx context.Context, recordingID string) error
	Abandon(ctx context.Context, recordingID, message string) error
}

// Dispatcher runs Processor jobs in the background with bounded
// concurrency. Jobs keep the values of the dispatching context but not its
// cancellation, so a finished HTTP request never aborts its recording.
type Dispatcher struct {
	proc Processor
	sem  *semaphore.Weighted
	log  logging.Logger

	base context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(proc Processor, concurrency int, log logging.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	base, stop := context.WithCancel(context.Background())
	return &Dispatcher{
		proc: proc,
		sem:  semaphore.NewWeighted(int64(concurrency)),
		log:  log,
		base: base,
		stop: stop,
	}
}

// Dispatch queues recordingID and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, recordingID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	jobCtx, cancel := context.WithCancel(logging.ContextWith(context.WithoutCancel(ctx), "recording_id", recordingID))
	release := context.AfterFunc(d.base, cancel)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer release()

		if err := d.sem.Acquire(jobCtx, 1); err != nil {
			d.log.Warn(jobCtx, "recording job dropped", "error", err)
			msg := fmt.Sprintf("processing cancelled before start: %v", err)
			if aerr := d.proc.Abandon(context.WithoutCancel(jobCtx), recordingID, msg); aerr != nil {
				d.log.Error(jobCtx, "failed to settle dropped recording", "error", aerr)
			}
			return
		}
		defer d.sem.Release(1)

		if err := d.proc.Process(jobCtx, recordingID); err != nil {
			d.log.Error(jobCtx, "recording job failed", "error", err)
		}
	}()
	return nil
}

// Shutdown stops accepting jobs and waits for running ones. When ctx ends
// first, outstanding jobs are cancelled and ctx.Err() is returned once they
// have returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.stop()
		return nil
	case <-ctx.Done():
		d.stop()
		<-done
		return ctx.Err()
	}
}
