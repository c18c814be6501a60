// Package journal records consumed broker records for later inspection.
package journal

import (
	"context"
	"time"

	"kafka-relay/src/broker"
)

// Record is one consumed message as it was read from the broker.
type Record struct {
	Topic      string
	Partition  int32
	Offset     int64
	Key        []byte
	Value      []byte
	Timestamp  time.Time
	ConsumedAt time.Time
}

// FromMessage converts a consumed broker message.
func FromMessage(msg broker.Message, consumedAt time.Time) Record {
	return Record{
		Topic:      msg.Topic,
		Partition:  msg.Partition,
		Offset:     msg.Offset,
		Key:        msg.Key,
		Value:      msg.Value,
		Timestamp:  time.UnixMilli(msg.Timestamp),
		ConsumedAt: consumedAt,
	}
}

// Journal stores consumed records. A record already journaled at the same
// topic, partition and offset is ignored, so redelivery after a rebalance is harmless.
type Journal interface {
	Append(ctx context.Context, rec Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
