package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/core/styles"
	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/nudge"
	"github.com/colonyops/nudge/internal/printer"
)

type AddCmd struct {
	flags *Flags

	// flags
	date        string
	time        string
	interactive bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags) *AddCmd {
	return &AddCmd{flags: flags}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Aliases:   []string{"a"},
		Usage:     "Add a task",
		UsageText: "nudge add <text...> [--date YYYY-MM-DD] [--time HH:MM]",
		Description: `Adds a task and prints its id.

A task with both a date and a time gets a one-time reminder once that moment
passes while 'nudge watch' or the TUI is running.

Examples:
  nudge add Buy milk
  nudge add "Pay rent" --date 2026-03-01 --time 09:00
  nudge add --interactive`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "due date (YYYY-MM-DD)",
				Destination: &cmd.date,
			},
			&cli.StringFlag{
				Name:        "time",
				Aliases:     []string{"t"},
				Usage:       "due time (HH:MM)",
				Destination: &cmd.time,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "fill in the task with a form",
				Destination: &cmd.interactive,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	text := strings.Join(c.Args().Slice(), " ")

	// Show interactive form if text not provided
	if cmd.interactive || strings.TrimSpace(text) == "" {
		if err := cmd.runForm(&text); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	t, err := app.Tasks.Add(ctx, text, cmd.date, cmd.time)
	if task.IsValidationError(err) {
		return cli.Exit(err.Error(), 1)
	}
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, t.ID)

	detail := nudge.ShortID(t.ID)
	if s := formatSchedule(t, time.Local, cmd.flags.Config.TUI.DateFormat); s != "" {
		detail += "  " + styles.IconClock + " " + s
	}
	p.Success("Task added", detail)
	return nil
}

func (cmd *AddCmd) runForm(text *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("task text is required")
					}
					return nil
				}).
				Value(text),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, leave empty for no date").
				Validate(func(s string) error { return validateField(*text, s, "") }).
				Value(&cmd.date),
			huh.NewInput().
				Title("Time").
				Description("HH:MM, leave empty for no time").
				Validate(func(s string) error { return validateField(*text, "", s) }).
				Value(&cmd.time),
		),
	).Run()
}

// validateField checks a single form field with the same rules Add applies.
func validateField(text, date, clock string) error {
	if strings.TrimSpace(text) == "" {
		text = "x"
	}
	_, _, _, err := task.Normalize(text, date, clock)
	var verr *task.ValidationError
	if errors.As(err, &verr) {
		return errors.New(verr.Message)
	}
	return err
}
