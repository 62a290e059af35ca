// Package kv defines the key-value contract nudge persists its state through.
package kv

import (
	"context"
	"encoding/json"
	"time"
)

// Entry represents a raw KV entry with metadata.
type Entry struct {
	Key   string
	Value json.RawMessage
	// Revision starts at 1 and increases by one on every write to the key.
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KV is the interface for a persistent key-value store.
// Keys are strings, values are JSON-serializable.
// Get on a missing key returns an error wrapping sql.ErrNoRows.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetRaw(ctx context.Context, key string, value []byte) error
	// Put stores data as-is and returns the key's revision after the write.
	Put(ctx context.Context, key string, value []byte) (int64, error)
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
	GetRaw(ctx context.Context, key string) (Entry, error)
	// Revision returns the current revision of key, or 0 when it is unset.
	Revision(ctx context.Context, key string) (int64, error)
}
