package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/printer"
)

type RmCmd struct {
	flags *Flags
}

// NewRmCmd creates the rm and clear commands
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds rm and clear to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:          "rm",
			Aliases:       []string{"delete"},
			Usage:         "Delete tasks",
			UsageText:     "nudge rm <id> [id...]",
			ShellComplete: TaskIDCompleter(cmd.flags),
			Action:        cmd.runRm,
		},
		&cli.Command{
			Name:      "clear",
			Usage:     "Delete every completed task",
			UsageText: "nudge clear",
			Action:    cmd.runClear,
		},
	)

	return app
}

func (cmd *RmCmd) runRm(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: nudge rm <id> [id...]")
	}

	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	for _, ref := range c.Args().Slice() {
		t, err := resolveTask(app, ref)
		if err != nil {
			return err
		}
		if _, err := app.Tasks.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		p.Success("Deleted", t.Text)
	}
	return nil
}

func (cmd *RmCmd) runClear(ctx context.Context, _ *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	ids, err := app.Tasks.ClearCompleted(ctx)
	if err != nil {
		return fmt.Errorf("clear completed: %w", err)
	}

	p := printer.Ctx(ctx)
	if len(ids) == 0 {
		p.Infof("No completed tasks")
		return nil
	}
	p.Successf("Cleared %d completed task(s)", len(ids))
	return nil
}
