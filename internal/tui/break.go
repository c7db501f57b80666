package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/tracker"
)

type breakPhase int

const (
	breakNone breakPhase = iota
	breakPrompt
	breakRunning
	breakDone
)

var breakPhaseNames = map[breakPhase]string{
	breakNone:    "NO BREAK",
	breakPrompt:  "BREAK DUE",
	breakRunning: "ON BREAK",
	breakDone:    "BREAK FINISHED",
}

// breakModel drives the hard-reminder prompt and the break overlay.
type breakModel struct {
	tracker *tracker.Machine
	width   int
	height  int

	phase       breakPhase
	pointMinute int
	canSkip     bool

	remaining  int
	idleStreak int
}

func newBreakModel(m *tracker.Machine) breakModel {
	return breakModel{tracker: m}
}

func (b *breakModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

// capturesKeys reports whether the prompt owns the break hotkeys.
func (b breakModel) capturesKeys() bool {
	return b.phase == breakPrompt
}

// prompt opens the break prompt for a hard reminder.
func (b *breakModel) prompt(ev model.ReminderEvent) {
	if b.phase == breakRunning {
		return
	}
	b.phase = breakPrompt
	b.pointMinute = ev.PointMinute
	b.canSkip = b.tracker.CanSkipToday()
}

// observe folds a tick outcome into the overlay.
func (b *breakModel) observe(out model.TickOutcome) {
	if out.BreakRemainingSec != nil {
		b.phase = breakRunning
		b.remaining = *out.BreakRemainingSec
		b.idleStreak = out.BreakIdleStreakSec
	}
	if out.BreakCompleted {
		b.phase = breakDone
		b.remaining = 0
	}
}

func (b breakModel) update(msg tea.Msg) (breakModel, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch {
	case key.Matches(kmsg, keys.Break), key.Matches(kmsg, keys.Enter):
		if b.phase == breakRunning {
			return b, nil
		}
		return b.start()

	case key.Matches(kmsg, keys.Snooze):
		if b.phase != breakPrompt {
			return b, nil
		}
		if !b.tracker.RequestSnooze(model.KindHard) {
			return b, status(msgSnoozeLimit, true)
		}
		b.phase = breakNone
		return b, status("Break snoozed for 5 minutes", false)

	case key.Matches(kmsg, keys.Skip):
		if b.phase != breakPrompt {
			return b, nil
		}
		if !b.tracker.SkipBreak() {
			b.canSkip = false
			return b, status(msgSkipLimit, true)
		}
		b.phase = breakNone
		return b, status("Break skipped", false)
	}
	return b, nil
}

func (b breakModel) start() (breakModel, tea.Cmd) {
	b.tracker.EnterBreak()
	if b.tracker.State() != model.StateBreak {
		return b, status("Resume tracking before starting a break", true)
	}
	b.phase = breakRunning
	b.remaining = b.tracker.Settings().BreakDurationMin * 60
	b.idleStreak = 0
	return b, status("Break started. Step away from the keyboard.", false)
}

func (b breakModel) view() string {
	w := b.width - 4
	title := titleStyle.Render("Break")

	var clock, label, detail string
	switch b.phase {
	case breakNone:
		clock = clockStyle.Foreground(colorMuted).Width(w - 6).Render(formatCountdown(b.tracker.Settings().BreakDurationMin * 60))
		label = mutedStyle.Render(breakPhaseNames[b.phase])
		detail = mutedStyle.Render("Press b to take a break now")
	case breakPrompt:
		clock = clockStyle.Foreground(colorWarning).Width(w - 6).Render(fmt.Sprintf("%d min", b.pointMinute))
		label = warningStyle.Bold(true).Render(breakPhaseNames[b.phase])
		detail = "You have been working for a while. Time for a proper break."
	case breakRunning:
		clock = clockStyle.Foreground(colorRest).Width(w - 6).Render(formatCountdown(b.remaining))
		label = restStyle.Bold(true).Render(breakPhaseNames[b.phase])
		detail = b.renderIdleStreak()
		if b.remaining == 0 {
			detail += "\n" + mutedStyle.Render("Time is up. Stay away until the idle streak is complete.")
		}
	case breakDone:
		clock = clockStyle.Foreground(colorSuccess).Width(w - 6).Render("Done!")
		label = successStyle.Bold(true).Render(breakPhaseNames[b.phase])
		detail = "Welcome back. A new work cycle has started."
	}

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", clock, label, "", detail)
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", b.renderControls()),
	)
}

func (b breakModel) renderControls() string {
	switch b.phase {
	case breakPrompt:
		parts := []string{"b/enter: start break", "z: snooze 5 min"}
		if b.canSkip {
			parts = append(parts, "x: skip")
		} else {
			parts = append(parts, mutedStyle.Strikethrough(true).Render("x: skip"))
		}
		return mutedStyle.Render(strings.Join(parts, "  "))
	case breakRunning:
		return mutedStyle.Render("a break cannot be paused or cancelled")
	}
	return mutedStyle.Render("b: start break")
}

// renderIdleStreak shows progress toward the required continuous rest.
func (b breakModel) renderIdleStreak() string {
	const cells = 12
	filled := min(b.idleStreak*cells/tracker.BreakIdleStreakSec, cells)
	bar := restStyle.Render(strings.Repeat("●", filled)) + mutedStyle.Render(strings.Repeat("○", cells-filled))
	text := fmt.Sprintf("Idle streak: %ds / %ds", b.idleStreak, tracker.BreakIdleStreakSec)
	return bar + "  " + text
}

func status(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
