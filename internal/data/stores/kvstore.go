package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/nudge/internal/core/kv"
	"github.com/colonyops/nudge/internal/data/db"
)

const (
	kvGet      = `SELECT key, value, revision, created_at, updated_at FROM kv_store WHERE key = ?`
	kvHas      = `SELECT COUNT(1) FROM kv_store WHERE key = ?`
	kvRevision = `SELECT revision FROM kv_store WHERE key = ?`
	kvListKeys = `SELECT key FROM kv_store ORDER BY key`
	kvDelete   = `DELETE FROM kv_store WHERE key = ?`
	kvSet      = `INSERT INTO kv_store (key, value, created_at, updated_at, revision)
VALUES (?, ?, ?, ?, 1)
ON CONFLICT(key) DO UPDATE SET
	value = excluded.value,
	updated_at = excluded.updated_at,
	revision = kv_store.revision + 1
RETURNING revision`
)

// KVStore implements kv.KV using SQLite.
type KVStore struct {
	db *db.DB
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db}
}

// Get retrieves and deserializes a value by key.
// Returns an error wrapping sql.ErrNoRows if the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	entry, err := s.GetRaw(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}

	return nil
}

// Set marshals value to JSON and stores it.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}
	return s.SetRaw(ctx, key, data)
}

// SetRaw stores data as-is, bumping the key's revision.
func (s *KVStore) SetRaw(ctx context.Context, key string, value []byte) error {
	_, err := s.Put(ctx, key, value)
	return err
}

// Put stores data as-is and returns the revision the write produced, read in
// the same statement so a concurrent writer can't slip in between.
// Transient lock errors are retried with backoff.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	now := time.Now().UnixNano()

	var rev int64
	err := withRetry(ctx, func() error {
		return s.db.Conn().QueryRowContext(ctx, kvSet, key, value, now, now).Scan(&rev)
	})
	if err != nil {
		return 0, fmt.Errorf("kv set %q: %w", key, err)
	}
	return rev, nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	err := withRetry(ctx, func() error {
		_, err := s.db.Conn().ExecContext(ctx, kvDelete, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Has returns whether a key exists.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := s.db.Conn().QueryRowContext(ctx, kvHas, key).Scan(&count); err != nil {
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}
	return count > 0, nil
}

// ListKeys returns all keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, kvListKeys)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("kv list keys scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// GetRaw retrieves a raw KV entry with metadata.
// Returns an error wrapping sql.ErrNoRows if the key does not exist.
func (s *KVStore) GetRaw(ctx context.Context, key string) (kv.Entry, error) {
	var (
		entry            kv.Entry
		value            []byte
		created, updated int64
	)
	err := s.db.Conn().QueryRowContext(ctx, kvGet, key).
		Scan(&entry.Key, &value, &entry.Revision, &created, &updated)
	if err != nil {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, err)
	}

	entry.Value = json.RawMessage(value)
	entry.CreatedAt = time.Unix(0, created)
	entry.UpdatedAt = time.Unix(0, updated)
	return entry, nil
}

// Revision returns the key's write counter, or 0 if the key is unset.
func (s *KVStore) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := s.db.Conn().QueryRowContext(ctx, kvRevision, key).Scan(&rev)
	if IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("kv revision %q: %w", key, err)
	}
	return rev, nil
}
