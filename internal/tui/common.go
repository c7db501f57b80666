package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewBreak
	viewReports
	viewSettings
)

var viewNames = []string{"Status", "Break", "Reports", "Settings"}

const (
	msgSnoozeLimit = "Snooze limit reached (2 per work hour)"
	msgSkipLimit   = "Skip limit reached (1 per day)"
	msgNoBreak     = "not scheduled"
)

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type statsMsg struct {
	stats  model.TodayStats
	breaks int
	err    error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatCountdown renders seconds as MM:SS, letting minutes exceed 59.
func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}
