package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/nudge/internal/nudge"
	"github.com/colonyops/nudge/internal/tui"
	"github.com/colonyops/nudge/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("NUDGE_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive task list",
		Description: `Opens the task list with live reminders. Due tasks flash and a banner
announces each reminder until dismissed.

This is also what running 'nudge' with no command does.`,
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	app, err := cmd.flags.app()
	if err != nil {
		return err
	}

	stopProfiler, err := startProfiler(ctx, cmd.flags.ProfilerPort)
	if err != nil {
		return err
	}
	defer stopProfiler()

	events := tui.NewEventBuffer()
	alerter := tui.NewBannerAlerter(events)

	nudge.BindPresenter(app.Bus, tui.NewPresenter(events))
	app.Dispatcher.SetAlerter(alerter)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.Start(ctx)
	defer func() {
		// release banners still waiting so Stop does not block on them
		alerter.Close()
		app.Stop()
	}()

	m := tui.New(app.Tasks, events, alerter, tui.Options{
		DateFormat: app.Config.TUI.DateFormat,
		Interval:   app.Config.Alarm.Interval,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}

// startProfiler serves pprof on port when it is set. The returned func
// shuts the server down.
func startProfiler(ctx context.Context, port int) (func(), error) {
	if port <= 0 {
		return func() {}, nil
	}

	srv := profiler.New(port)
	if err := srv.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	log.Info().
		Str("url", fmt.Sprintf("http://%s/debug/pprof/", srv.Addr())).
		Msg("profiler endpoint available")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown profiler server")
		}
	}, nil
}
