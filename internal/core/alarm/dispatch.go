package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/nudge/internal/core/task"
)

// Permission is the state of the user's consent to system notifications.
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionDefault     Permission = "default"
	PermissionUnsupported Permission = "unsupported"
)

// IsValid reports whether p is a known permission state.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionGranted, PermissionDenied, PermissionDefault, PermissionUnsupported:
		return true
	}
	return false
}

// DefaultTitle is the notification title used when none is configured.
const DefaultTitle = "To-Do List Reminder"

// Notifier displays short-lived system notifications.
type Notifier interface {
	// Permission returns the current permission state. It is checked before
	// every dispatch since it can change between scans.
	Permission(ctx context.Context) Permission
	// RequestPermission asks for permission and returns the resulting state.
	RequestPermission(ctx context.Context) (Permission, error)
	// Notify shows a notification.
	Notify(ctx context.Context, title, body string) error
}

// Alerter shows a blocking, user-visible alert. It is the fallback when
// notifications are denied or unsupported.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// Player plays the reminder sound once.
type Player interface {
	Play(ctx context.Context) error
}

// SoundSource acquires the shared Player. It is called lazily on the first
// firing and again only until it succeeds.
type SoundSource func(ctx context.Context) (Player, error)

// NotificationBody returns the notification body for a task.
func NotificationBody(t task.Task) string {
	return fmt.Sprintf(`Your task "%s" is due!`, t.Text)
}

// AlertMessage returns the fallback alert text for a task.
func AlertMessage(t task.Task) string {
	return "ALARM! " + NotificationBody(t)
}

// DispatcherOptions configures a Dispatcher. Nil collaborators are skipped.
type DispatcherOptions struct {
	Notifier Notifier
	Alerter  Alerter
	Sound    SoundSource
	Title    string
	// Timeout bounds each side effect. Zero means 30 seconds.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Dispatcher delivers reminder side effects for fired tasks. Every effect
// runs on its own goroutine and failures are logged and swallowed, so one
// failing effect never blocks the scan, another effect or another task.
type Dispatcher struct {
	notifier Notifier
	sound    SoundSource
	title    string
	timeout  time.Duration
	log      zerolog.Logger

	alerterMu sync.RWMutex
	alerter   Alerter

	playerMu sync.Mutex
	player   Player

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		notifier: opts.Notifier,
		alerter:  opts.Alerter,
		sound:    opts.Sound,
		title:    opts.Title,
		timeout:  opts.Timeout,
		log:      log.Logger,
	}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	if d.title == "" {
		d.title = DefaultTitle
	}
	if d.timeout <= 0 {
		d.timeout = 30 * time.Second
	}
	d.log = d.log.With().Str("component", "alarm-dispatch").Logger()
	return d
}

// SetAlerter replaces the fallback alerter, e.g. when a TUI takes over the
// terminal. A nil alerter disables the fallback.
func (d *Dispatcher) SetAlerter(a Alerter) {
	d.alerterMu.Lock()
	defer d.alerterMu.Unlock()
	d.alerter = a
}

func (d *Dispatcher) currentAlerter() Alerter {
	d.alerterMu.RLock()
	defer d.alerterMu.RUnlock()
	return d.alerter
}

// Dispatch starts the sound and notification effects for t and returns
// immediately.
func (d *Dispatcher) Dispatch(t task.Task) {
	if d.sound != nil {
		d.spawn(t, "sound", d.playSound)
	}
	if d.notifier != nil || d.currentAlerter() != nil {
		d.spawn(t, "notify", d.notify)
	}
}

// Wait blocks until all in-flight effects have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) spawn(t task.Task, effect string, fn func(context.Context, task.Task) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Str("task_id", t.ID).Str("effect", effect).Interface("panic", r).Msg("reminder effect panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx, t); err != nil {
			d.log.Warn().Err(err).Str("task_id", t.ID).Str("effect", effect).Msg("reminder effect failed")
		}
	}()
}

func (d *Dispatcher) playSound(ctx context.Context, _ task.Task) error {
	player, err := d.acquirePlayer(ctx)
	if err != nil {
		return fmt.Errorf("acquire sound: %w", err)
	}
	if err := player.Play(ctx); err != nil {
		return fmt.Errorf("play sound: %w", err)
	}
	return nil
}

func (d *Dispatcher) acquirePlayer(ctx context.Context) (Player, error) {
	d.playerMu.Lock()
	defer d.playerMu.Unlock()

	if d.player != nil {
		return d.player, nil
	}

	p, err := d.sound(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("sound source returned no player")
	}

	d.player = p
	return p, nil
}

func (d *Dispatcher) notify(ctx context.Context, t task.Task) error {
	body := NotificationBody(t)

	perm := PermissionUnsupported
	if d.notifier != nil {
		perm = d.notifier.Permission(ctx)
	}

	switch perm {
	case PermissionGranted:
		return d.notifier.Notify(ctx, d.title, body)
	case PermissionDefault:
		// Asked from the firing path; a late grant still shows this reminder,
		// a refusal does not fall back to an alert.
		granted, err := d.notifier.RequestPermission(ctx)
		if err != nil {
			return fmt.Errorf("request notification permission: %w", err)
		}
		if granted != PermissionGranted {
			d.log.Debug().Str("task_id", t.ID).Str("permission", string(granted)).Msg("notification permission not granted")
			return nil
		}
		return d.notifier.Notify(ctx, d.title, body)
	default:
		alerter := d.currentAlerter()
		if alerter == nil {
			return nil
		}
		return alerter.Alert(ctx, AlertMessage(t))
	}
}
