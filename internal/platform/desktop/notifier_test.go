package desktop

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/core/kv"
	"github.com/colonyops/nudge/internal/data/db"
	"github.com/colonyops/nudge/internal/data/stores"
	"github.com/colonyops/nudge/pkg/executil"
)

func newTestKV(t *testing.T) kv.KV {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func newTestNotifier(t *testing.T, rec *executil.RecordingExecutor, mutate func(*NotifierOptions)) *Notifier {
	t.Helper()
	nop := zerolog.Nop()
	opts := NotifierOptions{
		Exec:    rec,
		KV:      newTestKV(t),
		Enabled: true,
		GOOS:    "linux",
		Logger:  &nop,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewNotifier(opts)
}

func TestNotifier_Permission(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to default", func(t *testing.T) {
		n := newTestNotifier(t, &executil.RecordingExecutor{}, nil)
		assert.Equal(t, alarm.PermissionDefault, n.Permission(ctx))
	})

	t.Run("disabled is denied", func(t *testing.T) {
		n := newTestNotifier(t, &executil.RecordingExecutor{}, func(o *NotifierOptions) { o.Enabled = false })
		assert.Equal(t, alarm.PermissionDenied, n.Permission(ctx))
	})

	t.Run("no backend is unsupported", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Missing: map[string]bool{"notify-send": true}}
		n := newTestNotifier(t, rec, nil)
		assert.Empty(t, n.Backend())
		assert.Equal(t, alarm.PermissionUnsupported, n.Permission(ctx))
	})

	t.Run("stored answers persist", func(t *testing.T) {
		n := newTestNotifier(t, &executil.RecordingExecutor{}, nil)

		require.NoError(t, n.SetPermission(ctx, alarm.PermissionDenied))
		assert.Equal(t, alarm.PermissionDenied, n.Permission(ctx))

		require.NoError(t, n.ResetPermission(ctx))
		assert.Equal(t, alarm.PermissionDefault, n.Permission(ctx))

		require.Error(t, n.SetPermission(ctx, alarm.PermissionUnsupported))
		assert.Equal(t, "notify.permission", n.PermissionKey())
	})
}

func TestNotifier_RequestPermission(t *testing.T) {
	ctx := context.Background()

	t.Run("grants when a backend exists", func(t *testing.T) {
		n := newTestNotifier(t, &executil.RecordingExecutor{}, nil)

		p, err := n.RequestPermission(ctx)
		require.NoError(t, err)
		assert.Equal(t, alarm.PermissionGranted, p)
		assert.Equal(t, alarm.PermissionGranted, n.Permission(ctx))
	})

	t.Run("keeps an explicit denial", func(t *testing.T) {
		n := newTestNotifier(t, &executil.RecordingExecutor{}, nil)
		require.NoError(t, n.SetPermission(ctx, alarm.PermissionDenied))

		p, err := n.RequestPermission(ctx)
		require.NoError(t, err)
		assert.Equal(t, alarm.PermissionDenied, p)
	})

	t.Run("unsupported records denied", func(t *testing.T) {
		store := newTestKV(t)
		rec := &executil.RecordingExecutor{Missing: map[string]bool{"osascript": true}}
		n := newTestNotifier(t, rec, func(o *NotifierOptions) {
			o.GOOS = "darwin"
			o.KV = store
		})

		p, err := n.RequestPermission(ctx)
		require.NoError(t, err)
		assert.Equal(t, alarm.PermissionUnsupported, p)

		stored, err := kv.Scoped[alarm.Permission](store, "notify").Get(ctx, "permission")
		require.NoError(t, err)
		assert.Equal(t, alarm.PermissionDenied, stored)
	})
}

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("notify-send", func(t *testing.T) {
		rec := &executil.RecordingExecutor{}
		n := newTestNotifier(t, rec, nil)

		require.NoError(t, n.Notify(ctx, "To-Do List Reminder", `Your task "Pay rent" is due!`))

		recorded := rec.Recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, "notify-send", recorded[0].Cmd)
		assert.Equal(t, []string{"--app-name=nudge", "To-Do List Reminder", `Your task "Pay rent" is due!`}, recorded[0].Args)
	})

	t.Run("osascript quotes strings", func(t *testing.T) {
		rec := &executil.RecordingExecutor{}
		n := newTestNotifier(t, rec, func(o *NotifierOptions) { o.GOOS = "darwin" })

		require.NoError(t, n.Notify(ctx, "Title", `Your task "Pay rent" is due!`))

		recorded := rec.Recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, "osascript", recorded[0].Cmd)
		assert.Equal(t, []string{"-e", `display notification "Your task \"Pay rent\" is due!" with title "Title"`}, recorded[0].Args)
	})

	t.Run("custom command", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Missing: map[string]bool{"notify-send": true}}
		n := newTestNotifier(t, rec, func(o *NotifierOptions) {
			o.Command = `my-notifier {{ .Title | shq }} {{ .Body | shq }}`
		})

		assert.Equal(t, "command", n.Backend())
		require.NoError(t, n.Notify(ctx, "Title", "it's due"))

		recorded := rec.Recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, []string{"-c", `my-notifier 'Title' 'it'\''s due'`}, recorded[0].Args)
	})

	t.Run("backend failure is returned", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Errors: map[string]error{"notify-send": errors.New("no bus")}}
		n := newTestNotifier(t, rec, nil)

		require.Error(t, n.Notify(ctx, "Title", "Body"))
	})

	t.Run("no backend", func(t *testing.T) {
		n := newTestNotifier(t, &executil.RecordingExecutor{}, func(o *NotifierOptions) { o.GOOS = "windows" })
		require.Error(t, n.Notify(ctx, "Title", "Body"))
	})
}
