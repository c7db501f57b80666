package cli

import (
	"encoding/json"
	"fmt"

	"github.com/sadopc/controlwork/internal/tracker"
)

// StatsCmd prints totals for the current workday.
type StatsCmd struct {
	JSON bool `help:"Print as JSON."`
}

type statsOutput struct {
	Day            string `json:"day"`
	ActiveSec      int64  `json:"active_sec"`
	IdleSec        int64  `json:"idle_sec"`
	BreakSec       int64  `json:"break_sec"`
	Snoozes        int    `json:"snoozes"`
	Skips          int    `json:"skips"`
	BreaksComplete int    `json:"breaks_completed"`
}

func (c *StatsCmd) Run(ctx *Context) error {
	st, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	start, end := ctx.todayWindow()
	today, err := st.TodayStats(start, end)
	if err != nil {
		return fmt.Errorf("load today stats: %w", err)
	}
	breaks, err := st.CompletedBreakCount(start, end)
	if err != nil {
		return fmt.Errorf("count breaks: %w", err)
	}

	out := statsOutput{
		Day:            tracker.DayKey(start),
		ActiveSec:      today.ActiveSec,
		IdleSec:        today.IdleSec,
		BreakSec:       today.BreakSec,
		Snoozes:        today.Snoozes,
		Skips:          today.Skips,
		BreaksComplete: breaks,
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	ctx.printf("Workday %s (from %s)\n", out.Day, start.Format("Mon 15:04"))
	ctx.printf("  Active:  %s\n", formatSeconds(out.ActiveSec))
	ctx.printf("  Idle:    %s\n", formatSeconds(out.IdleSec))
	ctx.printf("  Break:   %s\n", formatSeconds(out.BreakSec))
	ctx.printf("  Breaks completed: %d\n", out.BreaksComplete)
	ctx.printf("  Snoozes: %d  Skips: %d\n", out.Snoozes, out.Skips)
	return nil
}
