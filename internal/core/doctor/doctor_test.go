package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/internal/core/alarm"
)

type fakePermissions struct {
	backend   string
	perm      alarm.Permission
	requested int
}

func (f *fakePermissions) Backend() string { return f.backend }

func (f *fakePermissions) Permission(context.Context) alarm.Permission { return f.perm }

func (f *fakePermissions) RequestPermission(context.Context) (alarm.Permission, error) {
	f.requested++
	f.perm = alarm.PermissionGranted
	return f.perm, nil
}

type fakeTasks struct {
	data []byte
	err  error
}

func (f fakeTasks) Load(context.Context) ([]byte, error) { return f.data, f.err }

func TestRunAll_Summary(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewNotifyCheck(&fakePermissions{backend: "notify-send", perm: alarm.PermissionDefault}, true, false),
		NewSoundCheck(false, "", nil),
	})

	require.Len(t, results, 2)
	assert.Equal(t, StatusWarn, results[0].Items[1].Status)

	out, err := json.Marshal(results[0].Items[1])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"warn"`)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, CountFixable(results))
}

type deadlineCheck struct{ deadline time.Time }

func (c *deadlineCheck) Name() string { return "deadline" }

func (c *deadlineCheck) Run(ctx context.Context) Result {
	c.deadline, _ = ctx.Deadline()
	return Result{Name: c.Name()}
}

func TestRunAll_Deadline(t *testing.T) {
	check := &deadlineCheck{}
	start := time.Now()

	RunAll(context.Background(), []Check{check})

	require.False(t, check.deadline.IsZero())
	assert.WithinDuration(t, start.Add(CheckTimeout), check.deadline, time.Second)
}

func TestNotifyCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("granted", func(t *testing.T) {
		src := &fakePermissions{backend: "notify-send", perm: alarm.PermissionGranted}
		result := NewNotifyCheck(src, true, false).Run(ctx)

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, "notify-send", result.Items[0].Detail)
		assert.Equal(t, StatusPass, result.Items[1].Status)
	})

	t.Run("no backend", func(t *testing.T) {
		src := &fakePermissions{}
		result := NewNotifyCheck(src, true, false).Run(ctx)

		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
	})

	t.Run("disabled", func(t *testing.T) {
		result := NewNotifyCheck(&fakePermissions{}, false, false).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusPass, result.Items[0].Status)
	})

	t.Run("denied is not fixable", func(t *testing.T) {
		src := &fakePermissions{backend: "osascript", perm: alarm.PermissionDenied}
		result := NewNotifyCheck(src, true, true).Run(ctx)

		assert.Equal(t, StatusWarn, result.Items[1].Status)
		assert.False(t, result.Items[1].Fixable)
		assert.Equal(t, 0, src.requested)
	})

	t.Run("autofix requests permission", func(t *testing.T) {
		src := &fakePermissions{backend: "notify-send", perm: alarm.PermissionDefault}
		result := NewNotifyCheck(src, true, true).Run(ctx)

		assert.Equal(t, 1, src.requested)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.True(t, result.Items[1].Fixed)
	})
}

func TestSoundCheck(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	file := filepath.Join(t.TempDir(), "alarm.wav")
	require.NoError(t, os.WriteFile(file, []byte("RIFF"), 0o644))

	t.Run("bell when no file", func(t *testing.T) {
		result := NewSoundCheck(true, "", []string{"paplay"}).Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, "terminal bell", result.Items[0].Detail)
	})

	t.Run("first available player", func(t *testing.T) {
		lookPathFunc = func(file string) (string, error) {
			if file == "aplay" {
				return "/usr/bin/aplay", nil
			}
			return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
		}

		result := NewSoundCheck(true, file, []string{"paplay", "aplay"}).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.Equal(t, "/usr/bin/aplay", result.Items[1].Detail)
	})

	t.Run("missing file and player", func(t *testing.T) {
		lookPathFunc = func(file string) (string, error) {
			return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
		}

		result := NewSoundCheck(true, filepath.Join(t.TempDir(), "nope.wav"), []string{"afplay"}).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusFail, result.Items[0].Status)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
	})
}

func TestStorageCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("clean list", func(t *testing.T) {
		src := fakeTasks{data: []byte(`[{"id":"a","text":"Pay rent","date":"","time":"","completed":false}]`)}
		result := NewStorageCheck(src, "/data/nudge.db", "", nil, false).Run(ctx)

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.Equal(t, "1 task(s)", result.Items[1].Detail)
	})

	t.Run("load failure", func(t *testing.T) {
		result := NewStorageCheck(fakeTasks{err: errors.New("disk I/O error")}, "", "", nil, false).Run(ctx)
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		result := NewStorageCheck(fakeTasks{data: []byte(`{"not":"a list"}`)}, "", "", nil, false).Run(ctx)
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusFail, result.Items[1].Status)
	})

	t.Run("unreadable records are fixable", func(t *testing.T) {
		src := fakeTasks{data: []byte(`[{"id":"a","text":"Pay rent"}, 42]`)}
		rewrites := 0
		rewrite := func(context.Context) error { rewrites++; return nil }

		result := NewStorageCheck(src, "", "", rewrite, false).Run(ctx)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
		assert.True(t, result.Items[1].Fixable)
		assert.Equal(t, 0, rewrites)

		result = NewStorageCheck(src, "", "", rewrite, true).Run(ctx)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.True(t, result.Items[1].Fixed)
		assert.Equal(t, 1, rewrites)
	})

	t.Run("schema version", func(t *testing.T) {
		check := func(s fakeSchema) CheckItem {
			result := NewStorageCheck(fakeTasks{data: []byte("[]")}, "", "", nil, false).WithSchema(s).Run(ctx)
			require.Len(t, result.Items, 3)
			assert.Equal(t, "schema", result.Items[1].Label)
			return result.Items[1]
		}

		item := check(fakeSchema{current: 2, latest: 2})
		assert.Equal(t, StatusPass, item.Status)
		assert.Equal(t, "version 2", item.Detail)

		item = check(fakeSchema{current: 5, latest: 2})
		assert.Equal(t, StatusWarn, item.Status)
		assert.Contains(t, item.Detail, "newer than this build")

		item = check(fakeSchema{err: errors.New("no such table")})
		assert.Equal(t, StatusFail, item.Status)
	})

	t.Run("legacy file left behind", func(t *testing.T) {
		legacy := filepath.Join(t.TempDir(), "tasks.json")
		require.NoError(t, os.WriteFile(legacy, []byte("[]"), 0o644))

		result := NewStorageCheck(fakeTasks{data: []byte("[]")}, "", legacy, nil, false).Run(ctx)
		require.Len(t, result.Items, 3)
		assert.Equal(t, "legacy file", result.Items[2].Label)
		assert.Equal(t, StatusWarn, result.Items[2].Status)
	})
}

type fakeSchema struct {
	current, latest int
	err             error
}

func (f fakeSchema) SchemaVersion(context.Context) (int, int, error) {
	return f.current, f.latest, f.err
}
