// Package fanout broadcasts registry changes to live subscribers.
//
// Each subscriber owns a bounded queue. Publish never blocks: when a queue is
// full its oldest event is discarded to make room, and the subscriber can see
// the gap through Dropped and the event sequence numbers.
package fanout

import (
	"errors"
	"sync"
	"sync/atomic"

	"kafka-relay/src/contracts"
)

// ErrClosed is returned by Subscribe after the hub has been closed.
var ErrClosed = errors.New("fanout hub is closed")

// Hub is safe for concurrent use by multiple goroutines.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	seq    uint64
	closed bool
}

// Subscription is a live tap on a Hub.
type Subscription struct {
	hub     *Hub
	ch      chan contracts.Event
	dropped atomic.Uint64
}

// NewHub creates a hub whose subscribers buffer up to buffer events each.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. It only sees events published afterwards.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	sub := &Subscription{hub: h, ch: make(chan contracts.Event, h.buffer)}
	h.subs[sub] = struct{}{}
	return sub, nil
}

// Publish delivers a copy of msg to every current subscriber and returns the event sent.
// Events are numbered and queued under one lock, so all subscribers see the same order.
func (h *Hub) Publish(kind string, msg contracts.Message) contracts.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	evt := contracts.Event{Seq: h.seq, Kind: kind, Message: msg}

	if h.closed {
		return evt
	}

	for sub := range h.subs {
		sub.offer(evt)
	}
	return evt
}

// offer enqueues evt, discarding the oldest queued event if the queue is full.
// Callers hold the hub lock, so no other publisher competes for the freed slot.
func (s *Subscription) offer(evt contracts.Event) {
	select {
	case s.ch <- evt:
		return
	default:
	}

	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}

	select {
	case s.ch <- evt:
	default:
		s.dropped.Add(1)
	}
}

// Unsubscribe removes sub and closes its channel. Unknown or already removed
// subscriptions are ignored.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription. Later publishes are numbered but delivered to no one.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}

// Events returns the channel events arrive on. It is closed on unsubscribe.
func (s *Subscription) Events() <-chan contracts.Event {
	return s.ch
}

// Dropped reports how many events were discarded because this subscriber fell behind.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes from the hub.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}
