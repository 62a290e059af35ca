// Package desktop implements the reminder side effects against the local
// desktop: system notifications, a reminder sound and a terminal alert.
package desktop

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/core/kv"
	"github.com/colonyops/nudge/pkg/executil"
	"github.com/colonyops/nudge/pkg/tmpl"
)

const (
	permissionScope = "notify"
	permissionKey   = "permission"

	backendCommand    = "command"
	backendNotifySend = "notify-send"
	backendOsascript  = "osascript"
)

// CommandData is the data available to a custom notification command template.
type CommandData struct {
	Title string
	Body  string
}

// NotifierOptions configures a Notifier.
type NotifierOptions struct {
	Exec executil.Executor
	KV   kv.KV
	// Enabled false forces the permission to denied.
	Enabled bool
	// Command is an optional shell template replacing the platform backend.
	Command string
	// GOOS overrides runtime.GOOS. Used by tests.
	GOOS   string
	Logger *zerolog.Logger
}

// Notifier sends notifications through notify-send (Linux/BSD), osascript
// (macOS) or a configured command. Consent is stored in the KV store under
// "notify.permission".
type Notifier struct {
	exec    executil.Executor
	perms   *kv.TypedKV[alarm.Permission]
	enabled bool
	command string
	goos    string
	log     zerolog.Logger
}

var _ alarm.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier.
func NewNotifier(opts NotifierOptions) *Notifier {
	exec := opts.Exec
	if exec == nil {
		exec = &executil.RealExecutor{}
	}
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	logger := log.With().Str("component", "notifier").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Notifier{
		exec:    exec,
		perms:   kv.Scoped[alarm.Permission](opts.KV, permissionScope),
		enabled: opts.Enabled,
		command: strings.TrimSpace(opts.Command),
		goos:    goos,
		log:     logger,
	}
}

// PermissionKey returns the KV key holding the permission state.
func (n *Notifier) PermissionKey() string {
	return n.perms.Key(permissionKey)
}

// Backend returns the notification mechanism in use, or "" when none is
// available on this system.
func (n *Notifier) Backend() string {
	if n.command != "" {
		return backendCommand
	}
	switch n.goos {
	case "darwin":
		return executil.FirstAvailable(n.exec, backendOsascript)
	case "windows":
		return ""
	default:
		return executil.FirstAvailable(n.exec, backendNotifySend)
	}
}

// Permission returns the stored consent. Disabled notifications report
// denied and a missing backend reports unsupported.
func (n *Notifier) Permission(ctx context.Context) alarm.Permission {
	if !n.enabled {
		return alarm.PermissionDenied
	}
	if n.Backend() == "" {
		return alarm.PermissionUnsupported
	}

	p, err := n.perms.GetOr(ctx, permissionKey, alarm.PermissionDefault)
	if err != nil {
		n.log.Warn().Err(err).Msg("read notification permission")
		return alarm.PermissionDefault
	}
	if !p.IsValid() || p == alarm.PermissionUnsupported {
		n.log.Warn().Str("permission", string(p)).Msg("ignoring unknown stored permission")
		return alarm.PermissionDefault
	}
	return p
}

// RequestPermission resolves a default permission by probing the backend:
// granted when one is available, denied otherwise. The answer is stored so
// later dispatches do not ask again. Explicit answers are returned as-is.
func (n *Notifier) RequestPermission(ctx context.Context) (alarm.Permission, error) {
	current := n.Permission(ctx)
	switch current {
	case alarm.PermissionGranted, alarm.PermissionDenied:
		return current, nil
	case alarm.PermissionUnsupported:
		return current, n.SetPermission(ctx, alarm.PermissionDenied)
	}

	if err := n.SetPermission(ctx, alarm.PermissionGranted); err != nil {
		return alarm.PermissionDefault, err
	}
	n.log.Info().Str("backend", n.Backend()).Msg("notifications granted")
	return alarm.PermissionGranted, nil
}

// SetPermission records an explicit permission state.
func (n *Notifier) SetPermission(ctx context.Context, p alarm.Permission) error {
	if p != alarm.PermissionGranted && p != alarm.PermissionDenied {
		return fmt.Errorf("cannot store permission %q", p)
	}
	if err := n.perms.Set(ctx, permissionKey, p); err != nil {
		return fmt.Errorf("store permission: %w", err)
	}
	return nil
}

// ResetPermission forgets the stored answer so the next firing asks again.
func (n *Notifier) ResetPermission(ctx context.Context) error {
	if err := n.perms.Delete(ctx, permissionKey); err != nil {
		return fmt.Errorf("reset permission: %w", err)
	}
	return nil
}

// Notify shows a notification through the active backend.
func (n *Notifier) Notify(ctx context.Context, title, body string) error {
	switch backend := n.Backend(); backend {
	case backendCommand:
		script, err := tmpl.Render(n.command, CommandData{Title: title, Body: body})
		if err != nil {
			return fmt.Errorf("render notify command: %w", err)
		}
		return n.exec.Shell(ctx, script)
	case backendNotifySend:
		_, err := n.exec.Run(ctx, backendNotifySend, "--app-name=nudge", title, body)
		return err
	case backendOsascript:
		script := fmt.Sprintf("display notification %s with title %s", appleString(body), appleString(title))
		_, err := n.exec.Run(ctx, backendOsascript, "-e", script)
		return err
	default:
		return fmt.Errorf("no notification backend available on %s", n.goos)
	}
}

// appleString quotes s as an AppleScript string literal.
func appleString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
