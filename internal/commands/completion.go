package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/nudge"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests task short ids,
// with their text as the description. done only offers pending tasks and
// undo only completed ones.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		app, err := flags.app()
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range app.Tasks.List() {
			if (cmd.Name == "done" && t.Completed) || (cmd.Name == "undo" && !t.Completed) {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", nudge.ShortID(t.ID), t.Text)
		}
	}
}
