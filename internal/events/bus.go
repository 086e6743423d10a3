// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package events carries pipeline progress notifications from workflow nodes
// to the serving layer. Publishing never blocks the pipeline; slow consumers
// lose the oldest buffered events instead.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind classifies a progress event.
type Kind string

const (
	KindNodeStart    Kind = "node_start"
	KindNodeComplete Kind = "node_complete"
	KindRunStarted   Kind = "run_started"
	KindRunFinished  Kind = "run_finished"
	KindRunFailed    Kind = "run_failed"
)

// Event is one progress notification for a pipeline run.
type Event struct {
	RunID   string    `json:"run_id"`
	Kind    Kind      `json:"kind"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message,omitempty"`
	Output  string    `json:"output,omitempty"`
	Time    time.Time `json:"time"`
}

type subscriber struct {
	ch    chan Event
	runID string // empty subscribes to every run
}

// Bus fans events out to subscribers with per-subscriber buffers.
type Bus struct {
	mu      sync.RWMutex
	subs    []*subscriber
	bufSize int
	dropped int64
	closed  bool
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Bus{bufSize: bufferSize}
}

// Subscribe returns a channel of events for one run, or for all runs when
// runID is empty. The channel is closed on Unsubscribe or bus Close.
func (b *Bus) Subscribe(runID string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, b.bufSize), runID: runID}
	b.subs = append(b.subs, sub)
	return sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]*subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.ch == ch {
			close(sub.ch)
			continue
		}
		kept = append(kept, sub)
	}
	b.subs = kept
}

// Publish delivers an event to every matching subscriber. When a subscriber's
// buffer is full the oldest buffered event is discarded to make room, so the
// publisher never stalls on a stuck consumer.
func (b *Bus) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if sub.runID != "" && sub.runID != ev.RunID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			select {
			case <-sub.ch:
				atomic.AddInt64(&b.dropped, 1)
			default:
			}
			select {
			case sub.ch <- ev:
			default:
				atomic.AddInt64(&b.dropped, 1)
			}
		}
	}
}

// Dropped returns the total number of events discarded on full buffers.
func (b *Bus) Dropped() int64 {
	return atomic.LoadInt64(&b.dropped)
}

// Close closes every subscriber channel. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}
