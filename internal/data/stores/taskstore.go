package stores

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/colonyops/nudge/internal/core/kv"
	"github.com/colonyops/nudge/internal/core/task"
)

// TasksKey is the KV key holding the serialized task list.
const TasksKey = "tasks"

// TaskRecordStore persists the task record as a single KV entry. It
// implements task.Storage and task.Versioned.
type TaskRecordStore struct {
	kv    kv.KV
	key   string
	saved atomic.Int64
}

var (
	_ task.Storage   = (*TaskRecordStore)(nil)
	_ task.Versioned = (*TaskRecordStore)(nil)
)

// NewTaskRecordStore returns a record store over the "tasks" key.
func NewTaskRecordStore(store kv.KV) *TaskRecordStore {
	return &TaskRecordStore{kv: store, key: TasksKey}
}

// Load returns the raw record, or nil when nothing has been saved yet.
func (s *TaskRecordStore) Load(ctx context.Context) ([]byte, error) {
	entry, err := s.kv.GetRaw(ctx, s.key)
	if IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task record: %w", err)
	}
	return entry.Value, nil
}

// Save replaces the record.
func (s *TaskRecordStore) Save(ctx context.Context, data []byte) error {
	rev, err := s.kv.Put(ctx, s.key, data)
	if err != nil {
		return fmt.Errorf("save task record: %w", err)
	}
	s.saved.Store(rev)
	return nil
}

// LastSaved returns the revision produced by this store's latest Save, or 0.
func (s *TaskRecordStore) LastSaved() int64 {
	return s.saved.Load()
}

// Revision reports the record's write counter so other processes' writes
// can be detected.
func (s *TaskRecordStore) Revision(ctx context.Context) (int64, error) {
	return s.kv.Revision(ctx, s.key)
}
