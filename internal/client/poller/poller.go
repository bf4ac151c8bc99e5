// Package poller follows a recording until the worker is done with it,
// preferring the server's event stream and polling when that is unavailable.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

// Getter is the part of the API client the poller needs.
type Getter interface {
	GetRecording(ctx context.Context, id string) (*models.Recording, error)
}

// Streamer is implemented by clients that can follow the server's event
// stream of a recording.
type Streamer interface {
	StreamRecording(ctx context.Context, id string, fn func(*models.Recording) bool) error
}

// Event is one observed change. Err is set on the last event when watching
// stopped for a reason other than a terminal state.
type Event struct {
	Recording *models.Recording
	State     models.State
	Err       error
}

type Poller struct {
	api     Getter
	initial time.Duration
	max     time.Duration
}

func New(api Getter, initial, max time.Duration) *Poller {
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if max < initial {
		max = initial
	}
	return &Poller{api: api, initial: initial, max: max}
}

// Watch emits every state change of the recording. When api is a Streamer
// the event stream is followed first; if it cannot be opened or ends before
// a terminal state, Watch falls back to polling. The poll interval doubles
// while nothing changes, up to max, and drops back to the initial interval
// after a change. The channel is closed after a terminal state, a fatal
// error or ctx cancellation.
func (p *Poller) Watch(ctx context.Context, id string) <-chan Event {
	out := make(chan Event, 1)
	go func() {
		defer close(out)

		w := &watcher{out: out}
		if s, ok := p.api.(Streamer); ok {
			// Stream errors are dropped; polling reports anything persistent.
			_ = s.StreamRecording(ctx, id, func(rec *models.Recording) bool {
				w.observe(ctx, rec)
				return !w.done
			})
			if w.done || ctx.Err() != nil {
				return
			}
		}
		p.poll(ctx, id, w)
	}()
	return out
}

func (p *Poller) poll(ctx context.Context, id string, w *watcher) {
	interval := p.initial
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		rec, err := p.api.GetRecording(ctx, id)
		switch {
		case err != nil && fatal(err):
			send(ctx, w.out, Event{Err: err})
			return
		case err != nil:
			// transient; keep backing off
		default:
			if w.observe(ctx, rec) {
				if w.done {
					return
				}
				interval = p.initial
				timer.Reset(interval)
				continue
			}
		}

		interval = min(interval*2, p.max)
		timer.Reset(interval)
	}
}

// watcher deduplicates states across the stream and the poll loop.
type watcher struct {
	out  chan<- Event
	last models.State
	seen bool
	done bool
}

// observe emits rec if its state differs from the last one and reports
// whether it did. done is set after a terminal state or when ctx ended.
func (w *watcher) observe(ctx context.Context, rec *models.Recording) bool {
	st := rec.State()
	if w.seen && st == w.last {
		return false
	}
	if !send(ctx, w.out, Event{Recording: rec, State: st}) {
		w.done = true
		return true
	}
	w.seen, w.last = true, st
	if st.Status.Terminal() {
		w.done = true
	}
	return true
}

func fatal(err error) bool {
	return errors.Is(err, common.ErrorNotFound) ||
		errors.Is(err, common.ErrorNotAuthenticated) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func send(ctx context.Context, out chan<- Event, e Event) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
