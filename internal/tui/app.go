package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/controlwork/internal/export"
	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/store"
	"github.com/sadopc/controlwork/internal/tracker"
)

// App is the root Bubble Tea model. Its one-second tick is the clock that
// drives the tracker; every tracker call happens on the update goroutine.
type App struct {
	tracker *tracker.Machine
	store   *store.Store
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	brk       breakModel
	reports   reportsModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
}

// NewApp builds the UI around a tracker. settingsPath is where the settings
// form saves; empty disables saving.
func NewApp(m *tracker.Machine, s *store.Store, settingsPath string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		tracker:    m,
		store:      s,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(m, s),
		brk:        newBreakModel(m),
		reports:    newReportsModel(m, s),
		settings:   newSettingsModel(m, settingsPath),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.brk.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// Child views capturing input (form, break prompt) see keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}
		if a.brk.capturesKeys() && isBreakKey(msg) {
			a.activeView = viewBreak
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Pause):
			return a.togglePause()
		case key.Matches(msg, keys.Break):
			a.activeView = viewBreak
			return a.updateActiveView(msg)
		case key.Matches(msg, keys.Snooze), key.Matches(msg, keys.Dismiss):
			if a.dashboard.pending != nil {
				return a.answerSoftReminder(msg)
			}
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadStats()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewBreak
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		return a.onTick()

	case statsMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil

	case reportsDataMsg:
		a.reports, _ = a.reports.update(msg)
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// onTick advances the tracker one second and routes the outcome.
func (a App) onTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd()}
	out := a.tracker.Tick()

	for _, ev := range out.Reminders {
		a.handleReminder(ev)
	}
	if len(out.Reminders) > 0 || out.BreakCompleted {
		cmds = append(cmds, bell())
	}
	a.brk.observe(out)
	if out.BreakCompleted {
		a.status = "Break finished"
		a.statusError = false
	}

	if a.dashboard.observe(out) {
		cmds = append(cmds, a.dashboard.loadStats())
	}
	return a, tea.Batch(cmds...)
}

// bell rings the terminal once, outside the rendered frame.
func bell() tea.Cmd {
	return func() tea.Msg {
		fmt.Fprint(os.Stderr, "\a")
		return nil
	}
}

func (a *App) handleReminder(ev model.ReminderEvent) {
	if ev.Kind == model.KindHard {
		a.brk.prompt(ev)
		if !a.isFormActive() {
			a.activeView = viewBreak
		}
		a.status = "Break time!"
		a.statusError = false
		return
	}

	// A newer soft reminder replaces one the user never answered.
	if a.dashboard.pending != nil {
		a.tracker.IgnoreReminder(*a.dashboard.pending)
	}
	pending := ev
	a.dashboard.pending = &pending
	a.status = fmt.Sprintf("%d min of work. Take a short pause", ev.PointMinute)
	a.statusError = false
}

func (a App) answerSoftReminder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev := *a.dashboard.pending
	if key.Matches(msg, keys.Snooze) {
		if !a.tracker.RequestSnooze(ev.Kind) {
			return a, status(msgSnoozeLimit, true)
		}
		a.dashboard.pending = nil
		return a, status("Reminder snoozed for 5 minutes", false)
	}
	a.tracker.IgnoreReminder(ev)
	a.dashboard.pending = nil
	a.status = ""
	return a, nil
}

func (a App) togglePause() (tea.Model, tea.Cmd) {
	switch a.tracker.State() {
	case model.StatePaused:
		a.tracker.Resume()
		return a, status("Tracking resumed", false)
	case model.StateBreak:
		return a, status("A break in progress cannot be paused", true)
	default:
		a.tracker.Pause()
		return a, status("Tracking paused", false)
	}
}

func isBreakKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.Break) || key.Matches(msg, keys.Enter) ||
		key.Matches(msg, keys.Snooze) || key.Matches(msg, keys.Skip)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewBreak:
		a.brk, cmd = a.brk.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadStats()
	case viewReports:
		return a.reports.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewBreak:
		content = a.brk.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("controlwork")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	state := a.tracker.State()
	indicator := stateStyle(state).Render(" ● " + state.String() + " " + formatSeconds(int64(a.tracker.CycleActiveSeconds())))

	left := footerStyle.Render(helpView)
	right := indicator + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	formats := []string{"CSV", "JSON"}
	rows := []string{titleStyle.Render("Export Sessions"), ""}
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(time.Time{}, time.Time{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("controlwork-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("controlwork-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
