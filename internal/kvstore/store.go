// Package kvstore persists opaque ledger records under string keys.
package kvstore

import (
	"context"
	"time"
)

// Store is a durable get/set record store. Get returns
// domain.ErrRecordNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pruner is implemented by stores that can drop stale records
type Pruner interface {
	Prune(ctx context.Context, prefix string, olderThan time.Time) (int64, error)
}

// Pinger is implemented by stores backed by a network service
type Pinger interface {
	Ping(ctx context.Context) error
}
