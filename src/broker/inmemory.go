package broker

import (
	"context"
	"sync"
	"time"
)

const inMemoryBuffer = 100

// InMemoryBroker is a process-local Broker used in local mode and tests.
// Every subscription receives every message published to its topic; groupID is ignored.
// A subscriber whose buffer is full misses the message rather than stalling publishers.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	offsets     map[string]int64
	failure     error
	closed      bool
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]chan Message),
		offsets:     make(map[string]int64),
	}
}

// FailWith makes every subsequent Publish return err. A nil err restores normal delivery.
func (b *InMemoryBroker) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failure = err
}

// Publish appends the message to the topic and delivers it to current subscribers.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) (DeliveryAck, error) {
	if err := ctx.Err(); err != nil {
		return DeliveryAck{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return DeliveryAck{}, ErrClosed
	}
	if b.failure != nil {
		return DeliveryAck{}, b.failure
	}

	offset := b.offsets[topic]
	b.offsets[topic] = offset + 1

	ack := DeliveryAck{
		Topic:     topic,
		Partition: 0,
		Offset:    offset,
		Timestamp: time.Now().UnixMilli(),
	}

	msg := Message{
		Topic:     topic,
		Key:       []byte(key),
		Value:     append([]byte(nil), value...),
		Offset:    ack.Offset,
		Partition: ack.Partition,
		Timestamp: ack.Timestamp,
	}

	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
		}
	}

	return ack, nil
}

// Subscribe registers a channel for the topic. It is closed when ctx is done or the broker closes.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	ch := make(chan Message, inMemoryBuffer)
	b.subscribers[topic] = append(b.subscribers[topic], ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(topic, ch)
	}()

	return ch, nil
}

// Subscribers returns the number of open subscriptions on topic.
func (b *InMemoryBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

func (b *InMemoryBroker) unsubscribe(topic string, ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes every subscriber channel. Further calls fail with ErrClosed.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for topic, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
	return nil
}
