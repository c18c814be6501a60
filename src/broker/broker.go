// Package broker defines the interface for message brokers and provides implementations.
package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a broker after Close.
var ErrClosed = errors.New("broker is closed")

// Broker abstracts message publishing and consumption.
// This interface supports both in-memory (local) and distributed (Kafka/Redpanda) implementations.
// Implementations must be safe for concurrent use.
type Broker interface {
	// Publish sends a message to a topic and blocks until the broker acknowledges it
	// or the delivery fails. key is used for partition assignment.
	Publish(ctx context.Context, topic string, key string, value []byte) (DeliveryAck, error)

	// Subscribe returns a channel for consuming messages from a topic.
	// groupID is used for consumer group coordination in Kafka.
	// The channel is closed when ctx is done or the broker is closed.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// DeliveryAck describes where a published message landed.
type DeliveryAck struct {
	Topic     string
	Partition int32
	Offset    int64
	Timestamp int64
}

// Message represents a consumed message from a broker.
// A non-nil Err reports a fetch error; the other fields are then unset.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
	Err       error
}
