package storage

import (
	"context"
	"errors"
)

// Keys under which the engine persists its state.
const (
	KeyTodos = "daybook-todos-v1"
	KeyQueue = "daybook-sync-queue"
)

var ErrNotFound = errors.New("storage: not found")

// KV is the device-local key/value store. Values are opaque JSON documents.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
