package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kafka-relay/src/broker"
	"kafka-relay/src/consumer"
)

// Record is one consumed message as shown in the view.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       string
	Value     string
	Timestamp time.Time
}

// RecordMsg delivers a consumed record to the model.
type RecordMsg Record

// FeedClosedMsg reports that no more records will arrive.
type FeedClosedMsg struct{}

// Feed carries records from the consumer goroutine to the Bubble Tea program.
// It implements consumer.Handler.
type Feed struct {
	ch    chan Record
	human bool
}

// NewFeed creates a feed. Consumption blocks once buffer records are waiting for the UI.
func NewFeed(buffer int, human bool) *Feed {
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{ch: make(chan Record, buffer), human: human}
}

func (f *Feed) Handle(ctx context.Context, msg broker.Message) error {
	rec := Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       consumer.Render(msg.Key, f.human),
		Value:     consumer.Render(msg.Value, f.human),
		Timestamp: time.UnixMilli(msg.Timestamp),
	}
	select {
	case f.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the feed. Call it once the consumer has stopped.
func (f *Feed) Close() {
	close(f.ch)
}

// Wait returns a command that delivers the next record.
func (f *Feed) Wait() tea.Cmd {
	return func() tea.Msg {
		rec, ok := <-f.ch
		if !ok {
			return FeedClosedMsg{}
		}
		return RecordMsg(rec)
	}
}
