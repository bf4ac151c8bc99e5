package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcProcessor func(ctx context.Context, id string) error

func (f funcProcessor) Process(ctx context.Context, id string) error { return f(ctx, id) }
func (f funcProcessor) Abandon(context.Context, string, string) error { return nil }

type abandonCall struct {
	id, message string
	ctxErr      error
}

// abandonRecorder reports every dropped job on calls.
type abandonRecorder struct {
	funcProcessor
	calls chan abandonCall
}

func (a abandonRecorder) Abandon(ctx context.Context, id, message string) error {
	a.calls <- abandonCall{id: id, message: message, ctxErr: ctx.Err()}
	return nil
}

func TestDispatch_DetachedFromCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var gotErr atomic.Value
	done := make(chan struct{})
	d := NewDispatcher(funcProcessor(func(jobCtx context.Context, id string) error {
		<-time.After(20 * time.Millisecond)
		gotErr.Store(jobCtx.Err() == nil)
		close(done)
		return nil
	}), 1, logging.Nop())

	require.NoError(t, d.Dispatch(ctx, "r1"))
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Equal(t, true, gotErr.Load())
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatch_BoundsConcurrency(t *testing.T) {
	var running, peak int32
	d := NewDispatcher(funcProcessor(func(ctx context.Context, id string) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	}), 2, logging.Nop())

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Dispatch(context.Background(), "r"))
	}
	require.NoError(t, d.Shutdown(context.Background()))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Positive(t, atomic.LoadInt32(&peak))
}

func TestDispatch_IndependentJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	d := NewDispatcher(funcProcessor(func(ctx context.Context, id string) error {
		mu.Lock()
		seen[id] = true
		mu.Unlock()
		if id == "bad" {
			return assert.AnError
		}
		return nil
	}), 4, logging.Nop())

	for _, id := range []string{"a", "bad", "b"} {
		require.NoError(t, d.Dispatch(context.Background(), id))
	}
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, map[string]bool{"a": true, "bad": true, "b": true}, seen)
}

func TestShutdown_RejectsNewJobs(t *testing.T) {
	d := NewDispatcher(funcProcessor(func(context.Context, string) error { return nil }), 1, logging.Nop())
	require.NoError(t, d.Shutdown(context.Background()))
	assert.ErrorIs(t, d.Dispatch(context.Background(), "r1"), ErrDispatcherClosed)
}

func TestShutdown_DeadlineCancelsJobs(t *testing.T) {
	started := make(chan struct{})
	d := NewDispatcher(funcProcessor(func(ctx context.Context, id string) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}), 1, logging.Nop())

	require.NoError(t, d.Dispatch(context.Background(), "r1"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)
}

func TestShutdown_DroppedJobIsAbandoned(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	proc := abandonRecorder{
		funcProcessor: func(ctx context.Context, id string) error {
			close(started)
			<-unblock
			return nil
		},
		calls: make(chan abandonCall, 1),
	}
	d := NewDispatcher(proc, 1, logging.Nop())

	require.NoError(t, d.Dispatch(context.Background(), "running"))
	<-started
	require.NoError(t, d.Dispatch(context.Background(), "queued"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	shutdown := make(chan error, 1)
	go func() { shutdown <- d.Shutdown(ctx) }()

	select {
	case call := <-proc.calls:
		assert.Equal(t, "queued", call.id)
		assert.Contains(t, call.message, "cancelled before start")
		assert.NoError(t, call.ctxErr)
	case <-time.After(2 * time.Second):
		t.Fatal("queued job was not abandoned")
	}

	close(unblock)
	assert.ErrorIs(t, <-shutdown, context.DeadlineExceeded)
}
