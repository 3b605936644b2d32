// Package remote defines the contract daybook expects from a shared todo
// backend, the wire shape records travel in, and two implementations: an
// HTTP client for the daybook server and an in-memory store.
package remote

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("remote: record not found")
	ErrConflict     = errors.New("remote: record already exists")
	ErrUnauthorized = errors.New("remote: unauthorized")
	ErrInvalidField = errors.New("remote: invalid field")
)

// Store is the remote side of synchronisation. Implementations must be safe
// for concurrent use.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
	SelectAll(ctx context.Context) ([]Record, error)
}

// Pinger is implemented by stores that can report reachability cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}
