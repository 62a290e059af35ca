package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/nudge/internal/core/styles"
	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/nudge"
	"github.com/colonyops/nudge/pkg/iojson"
)

type LsCmd struct {
	flags *Flags

	// flags
	status     string
	match      string
	pretty     bool
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks",
		UsageText: "nudge ls [--status pending|completed|all] [--match <glob>] [--pretty | --json]",
		Description: `Displays tasks in list order with their id, due date and state.

--match filters by task text with a case-insensitive glob ("*rent*", "pay *").
A pattern without glob characters matches anywhere in the text.

Use --json for one JSON object per line, --pretty for a rendered checklist.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "filter by status (pending, completed, all)",
				Value:       StatusAll,
				Destination: &cmd.status,
			},
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "filter by task text glob",
				Destination: &cmd.match,
			},
			&cli.BoolFlag{
				Name:        "pretty",
				Usage:       "render as a markdown checklist",
				Destination: &cmd.pretty,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	byStatus, err := statusFilter(cmd.status)
	if err != nil {
		return err
	}
	byText, err := matchFilter(cmd.match)
	if err != nil {
		return err
	}

	tasks := filterTasks(app.Tasks.List(), byStatus, byText)
	now := time.Now()
	layout := cmd.flags.Config.TUI.DateFormat
	out := c.Root().Writer

	switch {
	case cmd.jsonOutput:
		for _, t := range tasks {
			if err := iojson.WriteLine(out, toJSON(t, now)); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	case cmd.pretty:
		return renderPretty(out, tasks, now, layout)
	}

	if len(tasks) == 0 {
		fmt.Fprintf(os.Stderr, "No tasks found\n")
		return nil
	}

	writeTable(out, tasks, now, layout)
	return nil
}

func writeTable(out io.Writer, tasks []task.Task, now time.Time, layout string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATE\tDUE\tTASK")

	for _, t := range tasks {
		state := styles.IconPending
		switch {
		case t.Completed:
			state = styles.IconDone
		case t.IsOverdue(now):
			state = "!"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", nudge.ShortID(t.ID), state, formatSchedule(t, now.Location(), layout), t.Text)
	}

	_ = w.Flush()
}

func renderPretty(out io.Writer, tasks []task.Task, now time.Time, layout string) error {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := renderer.Render(markdownChecklist("Tasks", tasks, now, layout))
	if err != nil {
		return fmt.Errorf("render tasks: %w", err)
	}

	_, err = fmt.Fprint(out, rendered)
	return err
}
