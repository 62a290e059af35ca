package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/core/styles"
	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/nudge"
	"github.com/colonyops/nudge/pkg/iojson"
)

type WatchCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewWatchCmd creates a new watch command
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Run reminders without the interactive list",
		UsageText: "nudge watch [--json]",
		Description: `Keeps the reminder loop running in the foreground and prints every task
change as it happens, including edits made by other nudge processes.

Reminders are delivered as desktop notifications when permitted, otherwise
as a terminal alert. Stop with Ctrl+C.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print events as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopProfiler, err := startProfiler(ctx, cmd.flags.ProfilerPort)
	if err != nil {
		return err
	}
	defer stopProfiler()

	lp := &linePresenter{
		w:      c.Root().Writer,
		json:   cmd.jsonOutput,
		layout: app.Config.TUI.DateFormat,
		now:    time.Now,
	}
	nudge.BindPresenter(app.Bus, lp)

	if !cmd.jsonOutput {
		for _, t := range app.Tasks.List() {
			lp.Render(t)
		}
		lp.line(fmt.Sprintf("watching for reminders every %s", app.Config.Alarm.Interval))
	}

	app.Start(ctx)
	<-ctx.Done()
	app.Stop()

	return nil
}

// watchEvent is the watch --json line format.
type watchEvent struct {
	Event   string    `json:"event"`
	Task    *taskJSON `json:"task,omitempty"`
	TaskID  string    `json:"task_id,omitempty"`
	FiredAt string    `json:"fired_at,omitempty"`
}

// linePresenter prints one line per task event.
type linePresenter struct {
	mu     sync.Mutex
	w      io.Writer
	json   bool
	layout string
	now    func() time.Time
}

func (p *linePresenter) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, s)
}

func (p *linePresenter) emit(ev watchEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = iojson.WriteLine(p.w, ev)
}

func (p *linePresenter) describe(t task.Task) string {
	icon := styles.IconPending
	if t.Completed {
		icon = styles.IconDone
	}
	s := fmt.Sprintf("%s %s %s", styles.IDStyle.Render(nudge.ShortID(t.ID)), icon, t.Text)
	if due := formatSchedule(t, p.now().Location(), p.layout); due != "" {
		s += "  " + styles.TaskDueStyle.Render(due)
	}
	return s
}

func (p *linePresenter) Render(t task.Task) {
	if p.json {
		tj := toJSON(t, p.now())
		p.emit(watchEvent{Event: "render", Task: &tj})
		return
	}
	p.line(p.describe(t))
}

func (p *linePresenter) Reflect(t task.Task, completed bool) {
	t.Completed = completed
	if p.json {
		tj := toJSON(t, p.now())
		p.emit(watchEvent{Event: "reflect", Task: &tj})
		return
	}
	state := "reopened"
	if completed {
		state = "completed"
	}
	p.line(fmt.Sprintf("%s %s", styles.DividerStyle.Render(state), p.describe(t)))
}

func (p *linePresenter) Remove(id string) {
	if p.json {
		p.emit(watchEvent{Event: "remove", TaskID: id})
		return
	}
	p.line(fmt.Sprintf("%s %s", styles.DividerStyle.Render("removed"), styles.IDStyle.Render(nudge.ShortID(id))))
}

func (p *linePresenter) Emphasize(t task.Task, firedAt time.Time) {
	if p.json {
		tj := toJSON(t, firedAt)
		p.emit(watchEvent{Event: "fired", Task: &tj, FiredAt: firedAt.Format(time.RFC3339)})
		return
	}
	p.line(styles.TaskFiredStyle.Render(styles.IconBell+" due") + " " + p.describe(t))
}

func (p *linePresenter) Reset() {
	if p.json {
		p.emit(watchEvent{Event: "reset"})
		return
	}
	p.line(styles.DividerStyle.Render("task list reloaded"))
}
