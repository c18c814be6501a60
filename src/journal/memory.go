package journal

import (
	"context"
	"sync"
)

type position struct {
	topic     string
	partition int32
	offset    int64
}

// MemoryJournal is an in-memory implementation of Journal.
type MemoryJournal struct {
	mu      sync.RWMutex
	records []Record
	seen    map[position]struct{}
}

// NewMemoryJournal creates a new in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{seen: make(map[position]struct{})}
}

func (j *MemoryJournal) Append(ctx context.Context, rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	pos := position{rec.Topic, rec.Partition, rec.Offset}
	if _, ok := j.seen[pos]; ok {
		return nil
	}
	j.seen[pos] = struct{}{}
	j.records = append(j.records, rec)
	return nil
}

func (j *MemoryJournal) Recent(ctx context.Context, limit int) ([]Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 || limit > len(j.records) {
		limit = len(j.records)
	}
	out := make([]Record, 0, limit)
	for i := len(j.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}

func (j *MemoryJournal) Close() error {
	return nil
}
