package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/internal/core/task"
)

func TestTaskRecordStore_LoadEmpty(t *testing.T) {
	store := NewTaskRecordStore(newTestKVStore(t))

	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)

	rev, err := store.Revision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rev)
}

func TestTaskRecordStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	records := NewTaskRecordStore(newTestKVStore(t))

	require.NoError(t, records.Save(ctx, []byte(`[{"id":"1","text":"Pay rent","date":"","time":"","completed":false}]`)))

	data, err := records.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","text":"Pay rent","date":"","time":"","completed":false}]`, string(data))

	rev, err := records.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
}

func TestTaskRecordStore_BacksTaskStore(t *testing.T) {
	ctx := context.Background()
	kvs := newTestKVStore(t)

	first := task.NewStore(NewTaskRecordStore(kvs))
	_, err := first.Add(ctx, "Pay rent", "2026-03-14", "09:30")
	require.NoError(t, err)
	added, err := first.Add(ctx, "Call mom", "", "")
	require.NoError(t, err)
	_, err = first.SetCompleted(ctx, added.ID, true)
	require.NoError(t, err)

	second := task.NewStore(NewTaskRecordStore(kvs))
	res, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, first.List(), second.List())

	has, err := kvs.Has(ctx, TasksKey)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestTaskRecordStore_LastSaved(t *testing.T) {
	ctx := context.Background()
	kvs := newTestKVStore(t)
	mine := NewTaskRecordStore(kvs)
	other := NewTaskRecordStore(kvs)

	assert.Equal(t, int64(0), mine.LastSaved())
	require.NoError(t, mine.Save(ctx, []byte(`[]`)))
	require.NoError(t, other.Save(ctx, []byte(`[]`)))

	assert.Equal(t, int64(1), mine.LastSaved(), "only this store's own write counts")
	assert.Equal(t, int64(2), other.LastSaved())
}
