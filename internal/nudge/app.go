// Package nudge wires the task store, the alarm engine and their
// collaborators into a running session.
package nudge

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/core/config"
	"github.com/colonyops/nudge/internal/core/eventbus"
	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/data/db"
	"github.com/colonyops/nudge/internal/data/stores"
	"github.com/colonyops/nudge/internal/platform/desktop"
	"github.com/colonyops/nudge/pkg/executil"
)

// busBuffer bounds queued presentation events.
const busBuffer = 256

// Options holds the dependencies of an App. Nil fields get defaults.
type Options struct {
	Config *config.Config
	DB     *db.DB
	Exec   executil.Executor
	// Alerter replaces the terminal alert, e.g. with a TUI banner.
	Alerter alarm.Alerter
	// Out receives terminal alerts and the bell. Defaults to stderr.
	Out    io.Writer
	Clock  func() time.Time
	Logger *zerolog.Logger
}

// App is the central entry point for nudge operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks      *TaskService
	Engine     *alarm.Engine
	Dispatcher *alarm.Dispatcher
	Notifier   *desktop.Notifier
	Bus        *eventbus.EventBus
	KV         *stores.KVStore
	Config     *config.Config
	DB         *db.DB

	session sync.Mutex // shared by task mutations and engine ticks
	log     zerolog.Logger

	runMu   sync.Mutex
	cancel  context.CancelFunc
	watcher *db.ChangeWatcher
	wg      sync.WaitGroup
}

// NewApp constructs an App from explicit dependencies. Call Load before use.
func NewApp(opts Options) *App {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	exec := opts.Exec
	if exec == nil {
		exec = &executil.RealExecutor{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	alerter := opts.Alerter
	if alerter == nil {
		alerter = desktop.NewTerminalAlerter(out)
	}

	cfg := opts.Config
	kvStore := stores.NewKVStore(opts.DB)
	records := stores.NewTaskRecordStore(kvStore)
	store := task.NewStore(records)
	bus := eventbus.New(busBuffer)
	eventbus.RegisterDebugLogger(bus, logger.With().Str("component", "eventbus").Logger())

	notifier := desktop.NewNotifier(desktop.NotifierOptions{
		Exec:    exec,
		KV:      kvStore,
		Enabled: cfg.NotificationsEnabled(),
		Command: cfg.Notify.Command,
		Logger:  &logger,
	})

	var sound alarm.SoundSource
	if cfg.SoundEnabled() {
		sound = desktop.NewSoundSource(desktop.SoundOptions{
			Exec:   exec,
			File:   cfg.Sound.File,
			Player: cfg.Sound.Player,
			Bell:   out,
			Logger: &logger,
		})
	}

	dispatcher := alarm.NewDispatcher(alarm.DispatcherOptions{
		Notifier: notifier,
		Alerter:  alerter,
		Sound:    sound,
		Title:    cfg.Alarm.Title,
		Timeout:  cfg.Alarm.Timeout,
		Logger:   &logger,
	})

	app := &App{
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Bus:        bus,
		KV:         kvStore,
		Config:     cfg,
		DB:         opts.DB,
		log:        logger.With().Str("component", "app").Logger(),
	}

	engineOpts := []alarm.Option{
		alarm.WithInterval(cfg.Alarm.Interval),
		alarm.WithLocker(&app.session),
		alarm.WithLogger(logger),
		alarm.WithPreScan(func(ctx context.Context) {
			if _, err := app.Tasks.syncLocked(ctx); err != nil {
				app.log.Warn().Err(err).Msg("sync before scan")
			}
		}),
		alarm.WithOnFire(func(t task.Task, at time.Time) {
			bus.PublishAlarmFired(eventbus.AlarmFiredPayload{Task: t, FiredAt: at})
		}),
	}
	if opts.Clock != nil {
		engineOpts = append(engineOpts, alarm.WithClock(opts.Clock))
	}

	app.Engine = alarm.New(store, dispatcher, engineOpts...)
	app.Tasks = NewTaskService(&app.session, store, records, app.Engine, bus, logger)

	return app
}

// Load restores the persisted task list.
func (a *App) Load(ctx context.Context) (task.RestoreResult, error) {
	return a.Tasks.Load(ctx)
}

// Start begins a long-running session: event delivery, the alarm engine and
// change detection for writes made by other processes. Calling Start again
// restarts everything.
func (a *App) Start(ctx context.Context) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	a.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Bus.Start(ctx)
	}()

	a.Engine.Start(ctx)

	if a.DB != nil {
		w, err := db.NewChangeWatcher(a.DB.Path(), a.log)
		if err != nil {
			// revision polling in the scan still picks changes up
			a.log.Warn().Err(err).Msg("database change watcher unavailable")
			return
		}
		a.watcher = w

		a.wg.Add(2)
		go func() {
			defer a.wg.Done()
			w.Run(ctx)
		}()
		go func() {
			defer a.wg.Done()
			a.syncOnChange(ctx, w.Changes())
		}()
	}
}

// Stop ends the session started by Start and waits for in-flight reminders.
func (a *App) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.stopLocked()
}

func (a *App) stopLocked() {
	if a.cancel == nil {
		return
	}

	a.Engine.Stop()
	a.cancel()
	if a.watcher != nil {
		_ = a.watcher.Close()
		a.watcher = nil
	}
	a.wg.Wait()
	a.cancel = nil
}

func (a *App) syncOnChange(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			if _, err := a.Tasks.Sync(ctx); err != nil {
				a.log.Warn().Err(err).Msg("sync after database change")
			}
		}
	}
}
