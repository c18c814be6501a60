package consumer

import (
	"context"
	"fmt"
	"time"

	"kafka-relay/src/broker"
	"kafka-relay/src/journal"
)

// JournalHandler appends every record to a journal.
type JournalHandler struct {
	journal journal.Journal
	now     func() time.Time
}

func NewJournalHandler(j journal.Journal) *JournalHandler {
	return &JournalHandler{journal: j, now: time.Now}
}

func (h *JournalHandler) Handle(ctx context.Context, msg broker.Message) error {
	return h.journal.Append(ctx, journal.FromMessage(msg, h.now()))
}

// PrintHistory prints the limit most recent journaled records, oldest first,
// in the same format as live records.
func PrintHistory(ctx context.Context, j journal.Journal, limit int, p *Printer) error {
	recs, err := j.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		msg := broker.Message{
			Topic:     rec.Topic,
			Key:       rec.Key,
			Value:     rec.Value,
			Partition: rec.Partition,
			Offset:    rec.Offset,
			Timestamp: rec.Timestamp.UnixMilli(),
		}
		if err := p.Handle(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
