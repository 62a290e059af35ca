package nudge

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/internal/core/config"
	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/data/db"
	"github.com/colonyops/nudge/pkg/executil"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
	return nil
}

func (a *recordingAlerter) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

type testApp struct {
	*App
	alerts *recordingAlerter
	exec   *executil.RecordingExecutor
	dir    string
}

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)

func newTestApp(t *testing.T, dir string, mutate ...func(*config.Config)) *testApp {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	off := false
	cfg.Sound.Enabled = &off
	for _, fn := range mutate {
		fn(&cfg)
	}

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	alerts := &recordingAlerter{}
	// no notify-send: permission is unsupported, reminders use the alerter
	exec := &executil.RecordingExecutor{Missing: map[string]bool{"notify-send": true, "osascript": true}}
	nop := zerolog.Nop()

	app := NewApp(Options{
		Config:  &cfg,
		DB:      database,
		Exec:    exec,
		Alerter: alerts,
		Clock:   func() time.Time { return testNow },
		Logger:  &nop,
	})
	_, err = app.Load(context.Background())
	require.NoError(t, err)

	return &testApp{App: app, alerts: alerts, exec: exec, dir: dir}
}

// tick runs one scan and waits for its side effects.
func (a *testApp) tick(t *testing.T) int {
	t.Helper()
	fired := a.Engine.Tick(context.Background())
	a.Dispatcher.Wait()
	return len(fired)
}

func TestApp_PayRentScenario(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")

	rent, err := app.Tasks.Add(ctx, "Pay rent", "2026-03-14", "09:30")
	require.NoError(t, err)

	assert.Equal(t, 1, app.tick(t), "overdue task fires on the next scan")
	assert.Equal(t, 0, app.tick(t), "fires only once while overdue")
	assert.Equal(t, []string{`ALARM! Your task "Pay rent" is due!`}, app.alerts.Messages())

	_, err = app.Tasks.Toggle(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, app.tick(t), "completed tasks never fire")
	assert.True(t, app.Engine.Fired(rent.ID), "completing leaves the trigger entry")

	_, err = app.Tasks.Toggle(ctx, rent.ID)
	require.NoError(t, err)
	assert.False(t, app.Engine.Fired(rent.ID), "un-completing re-arms")
	assert.Equal(t, 1, app.tick(t), "re-armed task fires once more")
	assert.Equal(t, 0, app.tick(t))

	removed, err := app.Tasks.Delete(ctx, rent.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, app.Engine.Fired(rent.ID))
	for range 3 {
		assert.Equal(t, 0, app.tick(t), "deleted tasks never fire")
	}

	assert.Len(t, app.alerts.Messages(), 2)
}

func TestApp_NoDueInstantNeverFires(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")

	_, err := app.Tasks.Add(ctx, "Someday", "", "")
	require.NoError(t, err)
	_, err = app.Tasks.Add(ctx, "Date only", "2026-03-01", "")
	require.NoError(t, err)
	_, err = app.Tasks.Add(ctx, "Time only", "", "08:00")
	require.NoError(t, err)
	_, err = app.Tasks.Add(ctx, "Tomorrow", "2026-03-16", "08:00")
	require.NoError(t, err)

	assert.Equal(t, 0, app.tick(t))
	assert.Empty(t, app.alerts.Messages())
}

func TestApp_DeleteAndReAddFiresIndependently(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")

	first, err := app.Tasks.Add(ctx, "Call mom", "2026-03-15", "09:00")
	require.NoError(t, err)
	require.Equal(t, 1, app.tick(t))

	_, err = app.Tasks.Delete(ctx, first.ID)
	require.NoError(t, err)

	second, err := app.Tasks.Add(ctx, "Call mom", "2026-03-15", "09:00")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, 1, app.tick(t), "re-added task has its own reminder")
	assert.Equal(t, 0, app.tick(t))
	assert.Equal(t, 1, app.Engine.Triggered())
}

func TestApp_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "")

	var ids []string
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		tk, err := app.Tasks.Add(ctx, text, "2026-03-15", "09:00")
		require.NoError(t, err)
		ids = append(ids, tk.ID)
	}
	require.Equal(t, 5, app.tick(t))

	// complete a, c, e
	for _, i := range []int{0, 2, 4} {
		_, err := app.Tasks.SetCompleted(ctx, ids[i], true)
		require.NoError(t, err)
	}

	removed, err := app.Tasks.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2], ids[4]}, removed)

	remaining := app.Tasks.List()
	require.Len(t, remaining, 2)
	assert.Equal(t, "b", remaining[0].Text)
	assert.Equal(t, "d", remaining[1].Text)

	for _, i := range []int{0, 2, 4} {
		assert.False(t, app.Engine.Fired(ids[i]))
	}
	assert.True(t, app.Engine.Fired(ids[1]))
	assert.True(t, app.Engine.Fired(ids[3]))
	assert.Equal(t, 2, app.Engine.Triggered())
}

func TestApp_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := newTestApp(t, dir)
	a, err := first.Tasks.Add(ctx, "Pay rent", "2026-03-14", "09:30")
	require.NoError(t, err)
	_, err = first.Tasks.Add(ctx, "Buy milk", "", "")
	require.NoError(t, err)
	_, err = first.Tasks.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)

	second := newTestApp(t, dir)
	assert.Equal(t, first.Tasks.List(), second.Tasks.List())
}

func TestApp_ConcurrentProcessesKeepEachOthersTasks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tui := newTestApp(t, dir)
	cli := newTestApp(t, dir)

	_, err := tui.Tasks.Add(ctx, "existing", "", "")
	require.NoError(t, err)
	_, err = cli.Tasks.Add(ctx, "added from cli", "", "")
	require.NoError(t, err)
	_, err = tui.Tasks.Add(ctx, "added in tui", "", "")
	require.NoError(t, err)

	texts := func(tasks []task.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, tk := range tasks {
			out = append(out, tk.Text)
		}
		return out
	}
	want := []string{"existing", "added from cli", "added in tui"}

	fresh := newTestApp(t, dir)
	assert.Equal(t, want, texts(fresh.Tasks.List()))
	assert.Equal(t, want, texts(tui.Tasks.List()))

	changed, err := cli.Tasks.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, want, texts(cli.Tasks.List()))
}

func TestApp_NotifiesWhenGranted(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("notify-send backend is linux only")
	}
	ctx := context.Background()
	app := newTestApp(t, "")
	app.exec.Missing = nil

	_, err := app.Tasks.Add(ctx, "Pay rent", "2026-03-14", "09:30")
	require.NoError(t, err)

	// default permission: the dispatch asks, the notifier grants, then notifies
	require.Equal(t, 1, app.tick(t))

	assert.Empty(t, app.alerts.Messages())
	recorded := app.exec.Recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, "notify-send", recorded[0].Cmd)
	assert.Equal(t, []string{"--app-name=nudge", "To-Do List Reminder", `Your task "Pay rent" is due!`}, recorded[0].Args)
}

func TestApp_StartStop(t *testing.T) {
	app := newTestApp(t, "")

	app.Start(context.Background())
	assert.True(t, app.Engine.Running())

	app.Start(context.Background())
	assert.True(t, app.Engine.Running())

	app.Stop()
	assert.False(t, app.Engine.Running())
	app.Stop()
}
