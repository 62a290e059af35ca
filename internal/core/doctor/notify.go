package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/nudge/internal/core/alarm"
)

// PermissionSource reports the notification backend and consent.
type PermissionSource interface {
	Backend() string
	Permission(ctx context.Context) alarm.Permission
	RequestPermission(ctx context.Context) (alarm.Permission, error)
}

// NotifyCheck verifies that reminders can reach the desktop.
type NotifyCheck struct {
	source  PermissionSource
	enabled bool
	autofix bool
}

// NewNotifyCheck creates a notification check. With autofix, an unanswered
// permission is resolved the way the first reminder would resolve it.
func NewNotifyCheck(source PermissionSource, enabled, autofix bool) *NotifyCheck {
	return &NotifyCheck{source: source, enabled: enabled, autofix: autofix}
}

func (c *NotifyCheck) Name() string {
	return "Notifications"
}

func (c *NotifyCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.enabled {
		result.Items = append(result.Items, CheckItem{
			Label:  "notifications",
			Status: StatusPass,
			Detail: "disabled in config, reminders use terminal alerts",
		})
		return result
	}

	backend := c.source.Backend()
	if backend == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "backend",
			Status: StatusWarn,
			Detail: "no notification backend found, reminders use terminal alerts",
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "backend",
		Status: StatusPass,
		Detail: backend,
	})

	perm := c.source.Permission(ctx)
	item := CheckItem{Label: "permission", Detail: string(perm)}

	switch perm {
	case alarm.PermissionGranted:
		item.Status = StatusPass
	case alarm.PermissionDenied:
		item.Status = StatusWarn
		item.Detail = "denied, reminders use terminal alerts (nudge notify allow)"
	default:
		item.Status = StatusWarn
		item.Detail = "not asked yet, the first reminder will ask"
		item.Fixable = true

		if c.autofix {
			got, err := c.source.RequestPermission(ctx)
			switch {
			case err != nil:
				item.Detail = fmt.Sprintf("request permission: %v", err)
			case got == alarm.PermissionGranted:
				item.Status = StatusPass
				item.Detail = string(got)
				item.Fixed = true
			default:
				item.Detail = string(got)
			}
		}
	}

	result.Items = append(result.Items, item)
	return result
}
