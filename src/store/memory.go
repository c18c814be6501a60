package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"kafka-relay/src/contracts"
)

// MemoryStore is a thread-safe in-memory implementation of Store.
// A single lock covers the whole collection; messages keep insertion order and
// an id index avoids scanning on lookups.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []contracts.Message
	index    map[string]int // id -> position in messages
	newID    func() string
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string]int),
		newID: func() string { return uuid.NewString() },
	}
}

// Create appends a new message with a generated id.
func (s *MemoryStore) Create(ctx context.Context, key, body string) (contracts.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	// Regenerate on the (practically impossible) collision so ids stay unique.
	for {
		if _, taken := s.index[id]; !taken {
			break
		}
		id = s.newID()
	}

	msg := contracts.Message{ID: id, Key: key, Body: body}
	s.index[id] = len(s.messages)
	s.messages = append(s.messages, msg)

	return msg, nil
}

// Get returns the message for id.
func (s *MemoryStore) Get(ctx context.Context, id string) (contracts.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return contracts.Message{}, ErrNotFound{ID: id}
	}
	return s.messages[pos], nil
}

// Update overwrites key and body in place. Existence is checked under the same lock
// as the write, so a concurrent Delete is never resurrected.
func (s *MemoryStore) Update(ctx context.Context, id, key, body string) (contracts.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return contracts.Message{}, ErrNotFound{ID: id}
	}

	s.messages[pos].Key = key
	s.messages[pos].Body = body
	return s.messages[pos], nil
}

// Delete removes the message for id, keeping the order of the survivors.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return ErrNotFound{ID: id}
	}

	s.messages = append(s.messages[:pos], s.messages[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.messages); i++ {
		s.index[s.messages[i].ID] = i
	}
	return nil
}

// List returns a copy of all messages in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]contracts.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]contracts.Message, len(s.messages))
	copy(result, s.messages)
	return result, nil
}

// Len reports how many messages are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
