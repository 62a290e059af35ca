package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/printer"
	"github.com/colonyops/nudge/internal/store/jsonfile"
	"github.com/colonyops/nudge/pkg/iojson"
)

// ExportCmd implements export and import of the task list as a JSON file.
type ExportCmd struct {
	flags *Flags

	// flags
	replace bool
	reader  iojson.FileReader[json.RawMessage]
}

// NewExportCmd creates the export and import commands.
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds export and import to the application.
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "export",
			Usage:     "Write the task list to a JSON file",
			UsageText: "nudge export <file>",
			Description: `Writes every task, in list order, as a JSON array of
{id, text, date, time, completed} records. The file can be read back with
'nudge import'.`,
			Action: cmd.runExport,
		},
		&cli.Command{
			Name:      "import",
			Usage:     "Add tasks from a JSON file",
			UsageText: "nudge import [file] [--replace]\n   cat tasks.json | nudge import",
			Description: `Reads a JSON array of task records from a file or stdin and appends them
to the list. Malformed records are skipped and reported.

--replace discards the current list first. Reminders for replaced tasks that
already fired are forgotten.`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "replace",
					Usage:       "replace the current list instead of appending",
					Destination: &cmd.replace,
				},
				cmd.reader.Flag(),
			},
			Action: cmd.runImport,
		},
	)

	return app
}

func (cmd *ExportCmd) runExport(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: nudge export <file>")
	}

	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	tasks := app.Tasks.List()
	out := jsonfile.NewTaskFile(c.Args().First())
	if err := out.Export(ctx, tasks); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Exported %d task(s) to %s", len(tasks), out.Path())
	return nil
}

func (cmd *ExportCmd) runImport(ctx context.Context, c *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	var (
		res    task.DecodeResult
		source string
	)
	if c.NArg() > 0 {
		in := jsonfile.NewTaskFile(c.Args().First())
		source = in.Path()
		res, err = in.ReadTasks(ctx)
	} else {
		source = cmd.reader.Source()
		res, err = cmd.decodeInput()
	}
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	if res.Skipped > 0 {
		p.Warnf("Skipped %d malformed record(s) in %s", res.Skipped, source)
	}

	if err := app.Tasks.Import(ctx, res.Tasks, cmd.replace); err != nil {
		if task.IsValidationError(err) {
			return cli.Exit(err.Error(), 1)
		}
		return fmt.Errorf("import tasks: %w", err)
	}

	if cmd.replace {
		p.Successf("Replaced task list with %d task(s) from %s", len(res.Tasks), source)
	} else {
		p.Successf("Imported %d task(s) from %s", len(res.Tasks), source)
	}
	return nil
}

func (cmd *ExportCmd) decodeInput() (task.DecodeResult, error) {
	raw, err := cmd.reader.Read()
	if err != nil {
		return task.DecodeResult{}, err
	}
	return task.Decode(raw)
}
