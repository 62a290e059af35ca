package commands

import "github.com/urfave/cli/v3"

// RegisterAll adds every subcommand and the TUI flags to app. The returned
// TuiCmd runs the default action.
func RegisterAll(app *cli.Command, flags *Flags) *TuiCmd {
	tuiCmd := NewTuiCmd(flags)

	tuiCmd.Register(app)
	NewAddCmd(flags).Register(app)
	NewLsCmd(flags).Register(app)
	NewToggleCmd(flags).Register(app)
	NewRmCmd(flags).Register(app)
	NewWatchCmd(flags).Register(app)
	NewExportCmd(flags).Register(app)
	NewNotifyCmd(flags).Register(app)
	NewConfigValidateCmd(flags).Register(app)
	NewDoctorCmd(flags).Register(app)

	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	return tuiCmd
}
