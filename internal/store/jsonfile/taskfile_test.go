package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/internal/core/task"
)

type memStorage struct {
	data []byte
}

func (m *memStorage) Load(context.Context) ([]byte, error) { return m.data, nil }

func (m *memStorage) Save(_ context.Context, data []byte) error {
	m.data = data
	return nil
}

func TestTaskFile_ExportRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	f := NewTaskFile(path)

	tasks := []task.Task{
		{ID: "1", Text: "Pay rent", Date: "2026-03-14", Time: "09:30"},
		{ID: "2", Text: "Buy milk", Completed: true},
		{ID: "3", Text: "Date only", Date: "2026-04-01"},
	}
	require.NoError(t, f.Export(ctx, tasks))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	got, err := f.ReadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, tasks, got.Tasks)
	assert.Zero(t, got.Skipped)
}

func TestTaskFile_ExportEmpty(t *testing.T) {
	ctx := context.Background()
	f := NewTaskFile(filepath.Join(t.TempDir(), "tasks.json"))

	require.NoError(t, f.Export(ctx, nil))

	data, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestTaskFile_ReadTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		f := NewTaskFile(filepath.Join(t.TempDir(), "nope.json"))
		_, err := f.ReadTasks(ctx)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("skips malformed records", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"id":"1","text":"ok","date":"","time":"","completed":false},
			{"id":"2","text":"   "},
			42,
			{"id":"3","text":"bad date","date":"tomorrow"}
		]`), 0o644))

		got, err := NewTaskFile(path).ReadTasks(ctx)
		require.NoError(t, err)
		require.Len(t, got.Tasks, 1)
		assert.Equal(t, "ok", got.Tasks[0].Text)
		assert.Equal(t, 3, got.Skipped)
	})

	t.Run("not an array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[]}`), 0o644))

		_, err := NewTaskFile(path).ReadTasks(ctx)
		require.ErrorIs(t, err, task.ErrCorruptRecord)
	})
}

func TestMigrateLegacy(t *testing.T) {
	ctx := context.Background()

	t.Run("no legacy file", func(t *testing.T) {
		dst := &memStorage{}
		n, err := MigrateLegacy(ctx, dst, t.TempDir())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Nil(t, dst.data)
	})

	t.Run("copies and renames", func(t *testing.T) {
		dir := t.TempDir()
		legacy := filepath.Join(dir, LegacyFileName)
		require.NoError(t, os.WriteFile(legacy, []byte(`[{"id":"1","text":"Pay rent","date":"2026-03-14","time":"09:30","completed":false}]`), 0o644))

		dst := &memStorage{}
		n, err := MigrateLegacy(ctx, dst, dir)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		decoded, err := task.Decode(dst.data)
		require.NoError(t, err)
		require.Len(t, decoded.Tasks, 1)
		assert.Equal(t, "Pay rent", decoded.Tasks[0].Text)

		_, err = os.Stat(legacy)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(legacy + ".migrated")
		assert.NoError(t, err)
	})

	t.Run("existing record wins", func(t *testing.T) {
		dir := t.TempDir()
		legacy := filepath.Join(dir, LegacyFileName)
		require.NoError(t, os.WriteFile(legacy, []byte(`[{"id":"1","text":"old"}]`), 0o644))

		dst := &memStorage{data: []byte(`[]`)}
		n, err := MigrateLegacy(ctx, dst, dir)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, `[]`, string(dst.data))

		_, err = os.Stat(legacy)
		assert.NoError(t, err, "legacy file stays when nothing was migrated")
	})
}
