package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/store"
	"github.com/sadopc/controlwork/internal/tracker"
)

// statsRefreshTicks is how often the today panel re-reads the database.
const statsRefreshTicks = 10

type dashboardModel struct {
	tracker *tracker.Machine
	store   *store.Store
	width   int
	height  int

	ticks     int
	today     model.TodayStats
	breaks    int
	statsErr  error
	lastState model.State

	// Soft reminder waiting for snooze or close.
	pending *model.ReminderEvent
}

func newDashboardModel(m *tracker.Machine, s *store.Store) dashboardModel {
	return dashboardModel{tracker: m, store: s, lastState: m.State()}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadStats()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// loadStats resolves the window on the update goroutine; only the store
// is touched from the command.
func (d dashboardModel) loadStats() tea.Cmd {
	start, end := d.tracker.TodayWindow()
	return func() tea.Msg {
		stats, err := d.store.TodayStats(start, end)
		if err != nil {
			return statsMsg{err: err}
		}
		breaks, err := d.store.CompletedBreakCount(start, end)
		return statsMsg{stats: stats, breaks: breaks, err: err}
	}
}

// observe records a tick outcome and reports whether stats should reload.
func (d *dashboardModel) observe(out model.TickOutcome) bool {
	d.ticks++
	changed := out.State != d.lastState
	d.lastState = out.State
	return changed || out.BreakCompleted || len(out.Reminders) > 0 || d.ticks%statsRefreshTicks == 0
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		d.statsErr = msg.err
		if msg.err == nil {
			d.today = msg.stats
			d.breaks = msg.breaks
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	panels := []string{d.renderStatusPanel(contentWidth)}
	if d.pending != nil {
		panels = append(panels, d.renderReminderPanel(contentWidth))
	}
	panels = append(panels, d.renderTodayPanel(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (d dashboardModel) renderStatusPanel(w int) string {
	state := d.tracker.State()
	badge := stateStyle(state).Render("●  " + strings.ToUpper(state.String()))

	cycle := int64(d.tracker.CycleActiveSeconds())
	clock := clockStyle.Foreground(stateStyle(state).GetForeground()).
		Width(w - 6).
		Render(formatSeconds(cycle))

	untilBreak := msgNoBreak
	if secs, ok := d.tracker.SecondsToNextBreak(); ok {
		untilBreak = formatCountdown(secs)
	}
	label := "Until break"
	if state == model.StateBreak {
		label = "Break left"
	}

	skip := successStyle.Render("available")
	if !d.tracker.CanSkipToday() {
		skip = mutedStyle.Render("used")
	}

	rows := []string{
		clock,
		badge,
		"",
		labelStyle.Render("Work time") + highlightStyle.Render(formatSeconds(cycle)),
		labelStyle.Render(label) + highlightStyle.Render(untilBreak),
		labelStyle.Render("Snoozes left") + fmt.Sprintf("%d this work hour", d.tracker.SnoozesLeft()),
		labelStyle.Render("Skip today") + skip,
	}
	if state == model.StatePaused {
		rows = append(rows, "", mutedStyle.Render("Tracking paused. Press space to resume."))
	}

	style := panelStyle
	if state == model.StateActive {
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (d dashboardModel) renderReminderPanel(w int) string {
	title := warningStyle.Bold(true).Render("Time for a short pause")
	body := fmt.Sprintf("You have worked %d minutes in this cycle. Stretch, look away from the screen.", d.pending.PointMinute)
	hint := mutedStyle.Render("z: snooze 5 min  c: close")
	return alertPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, body, "", hint))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today") + "  " + mutedStyle.Render(d.tracker.DayKey())

	if d.statsErr != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			errorStyle.Render("Cannot load stats: "+d.statsErr.Error()),
		))
	}

	rows := []string{
		title,
		labelStyle.Render("Active today") + successStyle.Render(formatSeconds(d.today.ActiveSec)),
		labelStyle.Render("Idle today") + warningStyle.Render(formatSeconds(d.today.IdleSec)),
		labelStyle.Render("Break today") + restStyle.Render(formatSeconds(d.today.BreakSec)),
		labelStyle.Render("Breaks done") + fmt.Sprintf("%d", d.breaks),
		labelStyle.Render("Snoozes today") + fmt.Sprintf("%d", d.today.Snoozes),
		labelStyle.Render("Skips today") + fmt.Sprintf("%d", d.today.Skips),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
