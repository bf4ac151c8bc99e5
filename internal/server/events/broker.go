// Package events fans recording state changes out to live watchers.
package events

import (
	"sync"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

const defaultBuffer = 8

type subscriber struct {
	ch chan models.RecordingState
}

// Broker is an in-process pub/sub keyed by recording id. Publishing never
// blocks: a slow watcher loses its oldest pending state, never the newest.
// After a terminal state is published every watcher of that recording is
// detached and its channel closed.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*subscriber]struct{}), buffer: defaultBuffer}
}

// Subscribe registers a watcher for recordingID. The returned cancel func is
// idempotent and closes the channel if the broker has not already done so.
func (b *Broker) Subscribe(recordingID string) (<-chan models.RecordingState, func()) {
	s := &subscriber{ch: make(chan models.RecordingState, b.buffer)}

	b.mu.Lock()
	set, ok := b.subs[recordingID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[recordingID] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[recordingID]; ok {
				if _, ok := set[s]; ok {
					delete(set, s)
					close(s.ch)
				}
				if len(set) == 0 {
					delete(b.subs, recordingID)
				}
			}
		})
	}
	return s.ch, cancel
}

func (b *Broker) Publish(state models.RecordingState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[state.ID]
	for s := range set {
		send(s.ch, state)
	}

	if state.Status.Terminal() {
		for s := range set {
			close(s.ch)
		}
		delete(b.subs, state.ID)
	}
}

// Watchers reports how many subscribers recordingID has.
func (b *Broker) Watchers(recordingID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[recordingID])
}

func send(ch chan models.RecordingState, state models.RecordingState) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
