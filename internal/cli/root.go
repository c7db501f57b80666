package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/logger"
	"github.com/sadopc/controlwork/internal/store"
	"github.com/sadopc/controlwork/internal/tracker"
)

// Context carries what every command needs: where the data lives and the
// settings loaded from there.
type Context struct {
	Dir      string
	Settings config.Settings
	Out      io.Writer
	Clock    tracker.Clock
}

// ResolveDir returns dir, or the platform config directory when empty.
func ResolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return config.DefaultDir()
}

// NewContext loads settings from dir. A broken settings file is logged and
// replaced by defaults.
func NewContext(dir string) *Context {
	settings, err := config.Load(config.SettingsPath(dir))
	if err != nil {
		logger.Warn("settings unreadable, using defaults", "path", config.SettingsPath(dir), "err", err)
	}

	return &Context{
		Dir:      dir,
		Settings: settings,
		Out:      os.Stdout,
		Clock:    tracker.SystemClock{},
	}
}

func (c *Context) SettingsPath() string { return config.SettingsPath(c.Dir) }

func (c *Context) OpenStore() (*store.Store, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(config.DBPath(c.Dir))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// todayWindow is the workday window containing now.
func (c *Context) todayWindow() (time.Time, time.Time) {
	h, m := c.Settings.ResetClock()
	return tracker.DayWindow(c.Clock.Now(), h, m)
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func formatSeconds(secs int64) string {
	return fmt.Sprintf("%dh %02dm %02ds", secs/3600, (secs%3600)/60, secs%60)
}
