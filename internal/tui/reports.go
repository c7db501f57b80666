package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/store"
	"github.com/sadopc/controlwork/internal/tracker"
)

const reportDays = 7

type dayReport struct {
	key    string
	start  time.Time
	stats  model.TodayStats
	breaks int
}

type reportsModel struct {
	tracker *tracker.Machine
	store   *store.Store
	width   int
	height  int

	days   []dayReport
	offset int // 7-workday blocks back from today (0 = current)
	err    error

	chart barchart.Model
}

func newReportsModel(m *tracker.Machine, s *store.Store) reportsModel {
	return reportsModel{
		tracker: m,
		store:   s,
		chart:   barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	days []dayReport
	err  error
}

// windows returns the reportDays workday windows of the selected block,
// oldest first.
func (r reportsModel) windows() []time.Time {
	today, _ := r.tracker.TodayWindow()
	last := today.AddDate(0, 0, -reportDays*r.offset)
	starts := make([]time.Time, 0, reportDays)
	for i := reportDays - 1; i >= 0; i-- {
		starts = append(starts, last.AddDate(0, 0, -i))
	}
	return starts
}

func (r reportsModel) refresh() tea.Cmd {
	starts := r.windows()
	return func() tea.Msg {
		days := make([]dayReport, 0, len(starts))
		for _, start := range starts {
			end := start.AddDate(0, 0, 1)
			stats, err := r.store.TodayStats(start, end)
			if err != nil {
				return reportsDataMsg{err: err}
			}
			breaks, err := r.store.CompletedBreakCount(start, end)
			if err != nil {
				return reportsDataMsg{err: err}
			}
			days = append(days, dayReport{key: tracker.DayKey(start), start: start, stats: stats, breaks: breaks})
		}
		return reportsDataMsg{days: days}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.err = msg.err
		r.days = msg.days
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(r.days))
	for _, d := range r.days {
		bars = append(bars, barchart.BarData{
			Label: d.start.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: "Active", Value: hours(d.stats.ActiveSec), Style: successStyle},
				{Name: "Idle", Value: hours(d.stats.IdleSec), Style: warningStyle},
				{Name: "Break", Value: hours(d.stats.BreakSec), Style: restStyle},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func hours(secs int64) float64 {
	return float64(secs) / 3600
}

func (r reportsModel) view() string {
	w := r.width - 4

	starts := r.windows()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s",
		starts[0].Format("Jan 02"), starts[len(starts)-1].Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Reports"), "  ", dateLabel)

	if r.err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", errorStyle.Render("Cannot load reports: "+r.err.Error()),
		))
	}

	legend := "  " + strings.Join([]string{
		successStyle.Render("●") + " Active",
		warningStyle.Render("●") + " Idle",
		restStyle.Render("●") + " Break",
	}, "  ")
	nav := mutedStyle.Render("  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	var total int64
	for _, d := range r.days {
		total += d.stats.ActiveSec + d.stats.IdleSec + d.stats.BreakSec
	}
	if total == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %8s %8s %8s %7s %8s %6s",
			"Day", "Active", "Idle", "Break", "Breaks", "Snoozes", "Skips")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 64))),
	}
	for _, d := range r.days {
		rows = append(rows, fmt.Sprintf("  %-12s %8s %8s %8s %7d %8d %6d",
			d.key,
			formatHours(d.stats.ActiveSec),
			formatHours(d.stats.IdleSec),
			formatHours(d.stats.BreakSec),
			d.breaks,
			d.stats.Snoozes,
			d.stats.Skips,
		))
	}
	return strings.Join(rows, "\n")
}
