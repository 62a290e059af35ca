package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/nudge"
	"github.com/colonyops/nudge/internal/printer"
)

// ToggleCmd implements toggle, done and undo.
type ToggleCmd struct {
	flags *Flags
}

// NewToggleCmd creates the completion commands.
func NewToggleCmd(flags *Flags) *ToggleCmd {
	return &ToggleCmd{flags: flags}
}

// Register adds toggle, done and undo to the application.
func (cmd *ToggleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:          "toggle",
			Usage:         "Flip a task between pending and completed",
			UsageText:     "nudge toggle <id>",
			ShellComplete: TaskIDCompleter(cmd.flags),
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(ctx, c, nil)
			},
		},
		&cli.Command{
			Name:          "done",
			Usage:         "Mark a task completed",
			UsageText:     "nudge done <id>",
			ShellComplete: TaskIDCompleter(cmd.flags),
			Action: func(ctx context.Context, c *cli.Command) error {
				completed := true
				return cmd.run(ctx, c, &completed)
			},
		},
		&cli.Command{
			Name:  "undo",
			Usage: "Mark a task pending again",
			Description: `Marks a completed task pending again. If its due time has passed, the
reminder fires once more.`,
			UsageText:     "nudge undo <id>",
			ShellComplete: TaskIDCompleter(cmd.flags),
			Action: func(ctx context.Context, c *cli.Command) error {
				completed := false
				return cmd.run(ctx, c, &completed)
			},
		},
	)

	return app
}

func (cmd *ToggleCmd) run(ctx context.Context, c *cli.Command, completed *bool) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: nudge %s <id>", c.Name)
	}

	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	t, err := resolveTask(app, c.Args().First())
	if err != nil {
		return err
	}

	if completed == nil {
		t, err = app.Tasks.Toggle(ctx, t.ID)
	} else {
		t, err = app.Tasks.SetCompleted(ctx, t.ID, *completed)
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	p := printer.Ctx(ctx)
	if t.Completed {
		p.Success("Completed", t.Text)
	} else {
		p.Success("Pending", t.Text)
	}
	return nil
}

// resolveTask maps a command line reference to a task, turning lookup
// failures into exit errors.
func resolveTask(app *nudge.App, ref string) (task.Task, error) {
	t, err := app.Tasks.Resolve(ref)
	switch {
	case errors.Is(err, task.ErrNotFound):
		return task.Task{}, cli.Exit(fmt.Sprintf("no task matches %q", ref), 1)
	case task.IsValidationError(err):
		return task.Task{}, cli.Exit(err.Error(), 1)
	case err != nil:
		return task.Task{}, err
	}
	return t, nil
}
