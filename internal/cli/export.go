package cli

import (
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/export"
)

// ExportCmd writes session history to a CSV or JSON file.
type ExportCmd struct {
	Format string `help:"Output format." enum:"csv,json" default:"csv"`
	Out    string `help:"Output file." type:"path" required:""`
	Days   int    `help:"Only sessions from the last N workdays (0 for all)." default:"0"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	st, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var from time.Time
	if c.Days > 0 {
		start, _ := ctx.todayWindow()
		from = start.AddDate(0, 0, -(c.Days - 1))
	}

	sessions, err := st.ListSessions(from, time.Time{})
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	switch c.Format {
	case "json":
		err = export.ToJSON(sessions, c.Out)
	default:
		err = export.ToCSV(sessions, c.Out)
	}
	if err != nil {
		return err
	}
	ctx.printf("Exported %d sessions to %s\n", len(sessions), c.Out)
	return nil
}
