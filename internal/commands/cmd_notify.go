package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/printer"
	"github.com/colonyops/nudge/pkg/iojson"
)

// NotifyCmd manages desktop notification consent.
type NotifyCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewNotifyCmd creates the notify command group.
func NewNotifyCmd(flags *Flags) *NotifyCmd {
	return &NotifyCmd{flags: flags}
}

// Register adds the notify commands to the application.
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "notify",
		Usage: "Manage desktop notifications",
		Description: `Reminders are shown as desktop notifications once permission is granted.
Until then, the first reminder asks for permission; if notifications are
unavailable or denied, reminders fall back to a terminal alert.`,
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the notification backend and permission",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runStatus,
			},
			{
				Name:  "allow",
				Usage: "Grant permission for desktop notifications",
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.runSet(ctx, alarm.PermissionGranted)
				},
			},
			{
				Name:  "deny",
				Usage: "Deny desktop notifications and use terminal alerts",
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.runSet(ctx, alarm.PermissionDenied)
				},
			},
			{
				Name:   "reset",
				Usage:  "Forget the stored answer so the next reminder asks again",
				Action: cmd.runReset,
			},
			{
				Name:   "test",
				Usage:  "Send a test notification",
				Action: cmd.runTest,
			},
		},
	})

	return app
}

type notifyStatus struct {
	Backend    string `json:"backend"`
	Permission string `json:"permission"`
	Enabled    bool   `json:"enabled"`
}

func (cmd *NotifyCmd) runStatus(ctx context.Context, c *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	status := notifyStatus{
		Backend:    app.Notifier.Backend(),
		Permission: string(app.Notifier.Permission(ctx)),
		Enabled:    app.Config.NotificationsEnabled(),
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, status)
	}

	backend := status.Backend
	if backend == "" {
		backend = "none"
	}

	p := printer.Ctx(ctx)
	p.Section("Notifications")
	p.Printf("backend:    %s", backend)
	p.Printf("permission: %s", status.Permission)
	if !status.Enabled {
		p.Warnf("notifications are disabled in the config file")
	}
	return nil
}

func (cmd *NotifyCmd) runSet(ctx context.Context, perm alarm.Permission) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	if err := app.Notifier.SetPermission(ctx, perm); err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	p.Successf("Notification permission set to %s", perm)
	if perm == alarm.PermissionGranted && app.Notifier.Backend() == "" {
		p.Warnf("no notification backend found, reminders will use terminal alerts")
	}
	return nil
}

func (cmd *NotifyCmd) runReset(ctx context.Context, _ *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	if err := app.Notifier.ResetPermission(ctx); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Notification permission reset")
	return nil
}

func (cmd *NotifyCmd) runTest(ctx context.Context, _ *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	if app.Notifier.Backend() == "" {
		return cli.Exit("no notification backend available", 1)
	}

	if err := app.Notifier.Notify(ctx, app.Config.Alarm.Title, "Notifications are working."); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	printer.Ctx(ctx).Successf("Test notification sent via %s", app.Notifier.Backend())
	return nil
}
