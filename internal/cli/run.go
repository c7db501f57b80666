package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/logger"
	"github.com/sadopc/controlwork/internal/platform"
	"github.com/sadopc/controlwork/internal/tracker"
	"github.com/sadopc/controlwork/internal/tui"
)

// RunCmd launches the tracker with its terminal UI.
type RunCmd struct{}

func (c *RunCmd) Run(ctx *Context) error {
	guard, err := platform.AcquireSingleInstance("controlwork")
	if err != nil {
		return err
	}
	defer guard.Release()

	if !config.Exists(ctx.SettingsPath()) {
		if err := config.Save(ctx.SettingsPath(), ctx.Settings); err != nil {
			logger.Warn("write default settings", "err", err)
		}
	}

	st, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m := tracker.New(tracker.Options{
		Settings: ctx.Settings,
		Idle:     platform.NewIdleSource(platform.NewIdleProvider()),
		Store:    st,
		Clock:    ctx.Clock,
	})
	if err := m.StartSession(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	logger.Info("tracker started", "dir", ctx.Dir, "lock", guard.Address())

	p := tea.NewProgram(tui.NewApp(m, st, ctx.SettingsPath()), tea.WithAltScreen())
	_, runErr := p.Run()

	if err := m.StopSession(); err != nil {
		logger.Error("stop session", "err", err)
	}
	logger.Info("tracker stopped", "active_sec", m.Counters().ActiveSec)
	return runErr
}
