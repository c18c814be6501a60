// Package store holds the registry of messages the relay has sent.
package store

import (
	"context"
	"fmt"

	"kafka-relay/src/contracts"
)

// Store defines the registry operations used by the relay service.
// Implementations must be safe for concurrent use and apply each operation atomically.
type Store interface {
	// Create records a new message under a freshly generated identifier.
	Create(ctx context.Context, key, body string) (contracts.Message, error)

	// Get returns the current record for id.
	Get(ctx context.Context, id string) (contracts.Message, error)

	// Update overwrites key and body of an existing record.
	Update(ctx context.Context, id, key, body string) (contracts.Message, error)

	// Delete removes the record for id.
	Delete(ctx context.Context, id string) error

	// List returns all records in insertion order.
	List(ctx context.Context) ([]contracts.Message, error)

	// Close releases the store.
	Close() error
}

// ErrNotFound is returned when a message id is not in the registry.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("message not found: %s", e.ID)
}
