package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/logger"
	"github.com/sadopc/controlwork/internal/tracker"
)

type settingsModel struct {
	tracker *tracker.Machine
	path    string
	width   int
	height  int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	language   *string
	idleSec    *string
	breakMin   *string
	softPoints *string
	hardPoints *string
	resetTime  *string
}

func newSettingsModel(m *tracker.Machine, path string) settingsModel {
	lang, idle, brk, soft, hard, reset := "", "", "", "", "", ""
	return settingsModel{
		tracker:    m,
		path:       path,
		language:   &lang,
		idleSec:    &idle,
		breakMin:   &brk,
		softPoints: &soft,
		hardPoints: &hard,
		resetTime:  &reset,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Enter) {
		return s.showForm()
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.tracker.Settings()
	*s.language = cur.Language
	*s.idleSec = strconv.Itoa(cur.IdleThresholdSec)
	*s.breakMin = strconv.Itoa(cur.BreakDurationMin)
	*s.softPoints = config.FormatPoints(cur.SoftPointsMin)
	*s.hardPoints = config.FormatPoints(cur.HardPointsMin)
	*s.resetTime = cur.WorkdayResetTime

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Soft points (min, comma)").
				Placeholder("15,30,45").
				Validate(validatePoints).
				Value(s.softPoints),
			huh.NewInput().Title("Hard points (min, comma)").
				Placeholder("50").
				Validate(validatePoints).
				Value(s.hardPoints),
			huh.NewInput().Title("Break duration (min)").
				Validate(validateAtLeast(config.MinBreakDurationMin)).
				Value(s.breakMin),
		).Title("Reminders"),
		huh.NewGroup(
			huh.NewInput().Title("Idle threshold (sec)").
				Validate(validateAtLeast(config.MinIdleThresholdSec)).
				Value(s.idleSec),
			huh.NewInput().Title("Workday reset (HH:MM)").
				Validate(config.ValidateResetTime).
				Value(s.resetTime),
			huh.NewSelect[string]().Title("Language").
				Options(
					huh.NewOption("English", "en"),
					huh.NewOption("Русский", "ru"),
				).Value(s.language),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}

	return s, cmd
}

// collect builds settings from the form values. The form validators
// already rejected bad input; Normalize covers anything left.
func (s settingsModel) collect() config.Settings {
	out := s.tracker.Settings()
	out.Language = *s.language
	if n, err := strconv.Atoi(*s.idleSec); err == nil {
		out.IdleThresholdSec = n
	}
	if n, err := strconv.Atoi(*s.breakMin); err == nil {
		out.BreakDurationMin = n
	}
	if p, err := config.ParsePoints(*s.softPoints); err == nil {
		out.SoftPointsMin = p
	}
	if p, err := config.ParsePoints(*s.hardPoints); err == nil {
		out.HardPointsMin = p
	}
	out.WorkdayResetTime = *s.resetTime
	return out.Normalize()
}

func (s settingsModel) save() tea.Cmd {
	next := s.collect()
	s.tracker.ApplySettings(next)
	if s.path != "" {
		if err := config.Save(s.path, next); err != nil {
			logger.Error("save settings", "path", s.path, "err", err)
			return status(fmt.Sprintf("Settings applied but not saved: %v", err), true)
		}
	}
	logger.Info("settings updated", "soft", next.SoftPointsMin, "hard", next.HardPointsMin)
	return status("Settings saved", false)
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.tracker.Settings()
	items := [][2]string{
		{"Soft points", config.FormatPoints(cur.SoftPointsMin) + " min"},
		{"Hard points", config.FormatPoints(cur.HardPointsMin) + " min"},
		{"Break duration", fmt.Sprintf("%d min", cur.BreakDurationMin)},
		{"Idle threshold", fmt.Sprintf("%d sec", cur.IdleThresholdSec)},
		{"Workday reset", cur.WorkdayResetTime},
		{"Language", cur.Language},
	}

	rows := []string{title, ""}
	for _, it := range items {
		rows = append(rows, "  "+labelStyle.Render(it[0])+highlightStyle.Render(it[1]))
	}
	rows = append(rows, "")
	if s.path != "" {
		rows = append(rows, mutedStyle.Render("  "+s.path))
	}
	rows = append(rows, mutedStyle.Render("Press enter to edit settings. Saving restarts the reminder cycle."))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func validatePoints(raw string) error {
	_, err := config.ParsePoints(raw)
	return err
}

func validateAtLeast(floor int) func(string) error {
	return func(raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < floor {
			return fmt.Errorf("must be at least %d", floor)
		}
		return nil
	}
}
