package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/store"
	"github.com/sadopc/controlwork/internal/tracker"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type testIdle struct{ secs int }

func (i *testIdle) IdleSeconds() int { return i.secs }

type fixture struct {
	store *store.Store
	clock *testClock
	idle  *testIdle
	m     *tracker.Machine
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newFixture builds a machine whose reminders all land on minute one.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	settings := config.Default()
	settings.SoftPointsMin = []int{1}
	settings.HardPointsMin = []int{2}
	settings.BreakDurationMin = 1

	f := &fixture{
		store: newTestStore(t),
		clock: &testClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		idle:  &testIdle{},
	}
	f.m = tracker.New(tracker.Options{
		Settings: settings,
		Idle:     f.idle,
		Store:    f.store,
		Clock:    f.clock,
	})
	return f
}

func (f *fixture) app() App {
	next, _ := NewApp(f.m, f.store, "").Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(App)
}

// tick advances the clock n seconds, feeding each tick through the app.
func (f *fixture) tick(t *testing.T, app App, n int) App {
	t.Helper()
	for i := 0; i < n; i++ {
		f.clock.now = f.clock.now.Add(time.Second)
		next, _ := app.Update(tickMsg(f.clock.now))
		app = next.(App)
	}
	return app
}

func press(app App, k string) (App, tea.Cmd) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	if k == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(k)}
	}
	next, cmd := app.Update(msg)
	return next.(App), cmd
}

// runStatus executes a command expected to produce a statusMsg.
func runStatus(t *testing.T, cmd tea.Cmd) statusMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok {
		t.Fatalf("expected statusMsg, got %T", cmd())
	}
	return msg
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{600, "10:00"},
		{3725, "62:05"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.secs); got != tt.want {
			t.Errorf("formatCountdown(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	if got := formatHours(5400); got != "1.5h" {
		t.Fatalf("formatHours(5400) = %q", got)
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Status", "Break", "Reports", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
	if viewDashboard != 0 || viewBreak != 1 || viewReports != 2 || viewSettings != 3 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	app := newFixture(t).app()
	if app.activeView != viewDashboard {
		t.Fatal("default view should be the status view")
	}
	if app.showHelp || app.exportPicking || app.isFormActive() {
		t.Fatal("help, export picker and form should start hidden")
	}
}

func TestAppLoadingState(t *testing.T) {
	f := newFixture(t)
	app := NewApp(f.m, f.store, "")
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	app := newFixture(t).app()
	for i := range viewNames {
		app.activeView = viewState(i)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newFixture(t).app()
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppFooterShowsStateAndStatus(t *testing.T) {
	app := newFixture(t).app()
	app.status = "test status"
	footer := app.renderFooter()
	if !strings.Contains(footer, "active") {
		t.Fatalf("footer should show the tracker state: %q", footer)
	}
	if !strings.Contains(footer, "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabCycles(t *testing.T) {
	app := newFixture(t).app()
	for i := 1; i <= len(viewNames); i++ {
		next, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = next.(App)
		if want := viewState(i % len(viewNames)); app.activeView != want {
			t.Fatalf("after %d tabs view = %d, want %d", i, app.activeView, want)
		}
	}
}

func TestAppSoftReminderSnooze(t *testing.T) {
	f := newFixture(t)
	app := f.tick(t, f.app(), 60)

	if app.dashboard.pending == nil {
		t.Fatal("soft reminder at minute 1 should be pending")
	}
	if app.dashboard.pending.Kind != model.KindSoft || app.dashboard.pending.PointMinute != 1 {
		t.Fatalf("pending = %+v", *app.dashboard.pending)
	}
	if !strings.Contains(app.dashboard.view(), "z: snooze 5 min") {
		t.Fatal("status view should show the soft reminder panel")
	}

	app, cmd := press(app, "z")
	if app.dashboard.pending != nil {
		t.Fatal("snooze should clear the pending reminder")
	}
	if msg := runStatus(t, cmd); msg.isError {
		t.Fatalf("snooze should succeed: %q", msg.text)
	}
	if f.m.SnoozesLeft() != tracker.SnoozesPerWorkHour-1 {
		t.Fatalf("snoozes left = %d", f.m.SnoozesLeft())
	}
}

func TestAppSoftReminderDismissLogsIgnore(t *testing.T) {
	f := newFixture(t)
	app := f.tick(t, f.app(), 60)

	app, _ = press(app, "c")
	if app.dashboard.pending != nil {
		t.Fatal("close should clear the pending reminder")
	}

	entries, err := f.store.ListReminders(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected reminder log entries")
	}
	last := entries[len(entries)-1]
	if last.Action != model.ActionIgnore || last.Kind != model.KindSoft {
		t.Fatalf("last log entry = %+v, want soft ignore", last)
	}
}

func TestAppHardReminderOpensBreakPrompt(t *testing.T) {
	f := newFixture(t)
	app := f.tick(t, f.app(), 120)

	if app.activeView != viewBreak {
		t.Fatalf("hard reminder should switch to the break view, got %d", app.activeView)
	}
	if app.brk.phase != breakPrompt || app.brk.pointMinute != 2 {
		t.Fatalf("break model = phase %d point %d", app.brk.phase, app.brk.pointMinute)
	}
	if !app.brk.canSkip {
		t.Fatal("first hard reminder of the day should allow a skip")
	}
	if !strings.Contains(app.brk.view(), "x: skip") {
		t.Fatal("prompt should offer skipping")
	}
}

func TestAppBreakPromptSkipOncePerDay(t *testing.T) {
	f := newFixture(t)
	app := f.tick(t, f.app(), 120)

	app, cmd := press(app, "x")
	if msg := runStatus(t, cmd); msg.isError {
		t.Fatalf("first skip should succeed: %q", msg.text)
	}
	if app.brk.phase != breakNone {
		t.Fatal("a successful skip should hide the prompt")
	}

	// Skipping does not reset the cycle, so reopen the prompt by hand.
	app.brk.prompt(model.ReminderEvent{Kind: model.KindHard, PointMinute: 2})
	if app.brk.canSkip {
		t.Fatal("second prompt of the day must not allow a skip")
	}
	app, cmd = press(app, "x")
	msg := runStatus(t, cmd)
	if !msg.isError || msg.text != msgSkipLimit {
		t.Fatalf("status = %+v, want skip limit", msg)
	}
	if app.brk.phase != breakPrompt {
		t.Fatal("a refused skip should keep the prompt open")
	}
}

func TestAppBreakPromptSnoozeLimit(t *testing.T) {
	f := newFixture(t)
	app := f.tick(t, f.app(), 60)
	app, _ = press(app, "c")

	// Use up the work hour's snoozes on the soft reminder quota.
	for f.m.SnoozesLeft() > 0 {
		if !f.m.RequestSnooze(model.KindSoft) {
			t.Fatal("snooze refused before the quota was spent")
		}
	}

	app = f.tick(t, app, 60)
	if app.brk.phase != breakPrompt {
		t.Fatal("expected the hard reminder prompt")
	}
	app, cmd := press(app, "z")
	msg := runStatus(t, cmd)
	if !msg.isError || msg.text != msgSnoozeLimit {
		t.Fatalf("status = %+v, want snooze limit", msg)
	}
	if app.brk.phase != breakPrompt {
		t.Fatal("a refused snooze should keep the prompt open")
	}
}

func TestAppBreakRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	app := f.tick(t, f.app(), 120)

	app, _ = press(app, "b")
	if f.m.State() != model.StateBreak || app.brk.phase != breakRunning {
		t.Fatalf("state = %s, phase = %d", f.m.State(), app.brk.phase)
	}

	f.idle.secs = 10_000
	app = f.tick(t, app, tracker.BreakIdleStreakSec)
	if app.brk.phase != breakDone {
		t.Fatalf("break should finish after the idle streak, phase = %d", app.brk.phase)
	}
	if f.m.State() != model.StateActive {
		t.Fatalf("state after break = %s", f.m.State())
	}
	if !strings.Contains(app.status, "Break finished") {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppPauseToggle(t *testing.T) {
	f := newFixture(t)
	app := f.app()

	app, _ = press(app, " ")
	if f.m.State() != model.StatePaused {
		t.Fatalf("state = %s, want paused", f.m.State())
	}
	app, _ = press(app, " ")
	if f.m.State() != model.StateActive {
		t.Fatalf("state = %s, want active", f.m.State())
	}

	f.m.EnterBreak()
	_, cmd := press(app, " ")
	if msg := runStatus(t, cmd); !msg.isError {
		t.Fatal("pausing during a break should report an error")
	}
	if f.m.State() != model.StateBreak {
		t.Fatal("break must not be paused")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newFixture(t).app()
	next, _ := app.Update(statusMsg{text: "hello", isError: true})
	app = next.(App)
	if app.status != "hello" || !app.statusError {
		t.Fatalf("status = %q error = %v", app.status, app.statusError)
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboardLoadStats(t *testing.T) {
	f := newFixture(t)
	f.tick(t, f.app(), 30)

	d := newDashboardModel(f.m, f.store)
	msg, ok := d.loadStats()().(statsMsg)
	if !ok {
		t.Fatal("loadStats should return statsMsg")
	}
	if msg.err != nil {
		t.Fatal(msg.err)
	}
	d, _ = d.update(msg)
	if d.today.ActiveSec != 30 {
		t.Fatalf("active today = %d, want 30", d.today.ActiveSec)
	}
}

func TestDashboardObserve(t *testing.T) {
	f := newFixture(t)
	d := newDashboardModel(f.m, f.store)

	quiet := model.TickOutcome{State: model.StateActive}
	for i := 1; i < statsRefreshTicks; i++ {
		if d.observe(quiet) {
			t.Fatalf("tick %d should not reload", i)
		}
	}
	if !d.observe(quiet) {
		t.Fatal("every tenth tick should reload")
	}
	if !d.observe(model.TickOutcome{State: model.StatePaused}) {
		t.Fatal("state change should reload")
	}
}

// ============================================================
// Reports
// ============================================================

func TestReportsWindows(t *testing.T) {
	f := newFixture(t)
	r := newReportsModel(f.m, f.store)

	starts := r.windows()
	if len(starts) != reportDays {
		t.Fatalf("got %d windows, want %d", len(starts), reportDays)
	}
	today, _ := f.m.TodayWindow()
	if !starts[len(starts)-1].Equal(today) {
		t.Fatalf("last window = %v, want today %v", starts[len(starts)-1], today)
	}

	r.offset = 1
	if got := r.windows()[reportDays-1]; !got.Equal(today.AddDate(0, 0, -reportDays)) {
		t.Fatalf("previous block ends at %v", got)
	}
}

func TestReportsRefresh(t *testing.T) {
	f := newFixture(t)
	f.tick(t, f.app(), 45)

	r := newReportsModel(f.m, f.store)
	r.setSize(120, 40)
	msg, ok := r.refresh()().(reportsDataMsg)
	if !ok || msg.err != nil {
		t.Fatalf("refresh = %+v", msg)
	}
	r, _ = r.update(msg)
	if got := r.days[len(r.days)-1].stats.ActiveSec; got != 45 {
		t.Fatalf("today active = %d, want 45", got)
	}
	if r.view() == "" {
		t.Fatal("reports view rendered empty")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsCollectAndSave(t *testing.T) {
	f := newFixture(t)
	path := t.TempDir() + "/settings.yaml"
	s := newSettingsModel(f.m, path)

	*s.language = "ru"
	*s.idleSec = "90"
	*s.breakMin = "7"
	*s.softPoints = "20, 10"
	*s.hardPoints = "55"
	*s.resetTime = "05:30"

	got := s.collect()
	if got.Language != "ru" || got.IdleThresholdSec != 90 || got.BreakDurationMin != 7 {
		t.Fatalf("collect = %+v", got)
	}
	if config.FormatPoints(got.SoftPointsMin) != "10,20" {
		t.Fatalf("soft points = %v", got.SoftPointsMin)
	}

	if msg := runStatus(t, s.save()); msg.isError {
		t.Fatalf("save failed: %q", msg.text)
	}
	if f.m.Settings().WorkdayResetTime != "05:30" {
		t.Fatal("settings should be applied to the tracker")
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.BreakDurationMin != 7 {
		t.Fatalf("saved break duration = %d", loaded.BreakDurationMin)
	}
}

func TestSettingsValidators(t *testing.T) {
	if validatePoints("15, 30") != nil {
		t.Fatal("valid points rejected")
	}
	if validatePoints("abc") == nil {
		t.Fatal("invalid points accepted")
	}
	check := validateAtLeast(30)
	if check("29") == nil || check("x") == nil {
		t.Fatal("values below the floor must be rejected")
	}
	if check("30") != nil {
		t.Fatal("floor value should be accepted")
	}
}

// ============================================================
// Keys and styles
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

func TestStylesRender(t *testing.T) {
	for _, s := range []model.State{model.StateActive, model.StatePaused, model.StateBreak} {
		if stateStyle(s).Render("test") == "" {
			t.Fatalf("state style %s rendered empty", s)
		}
	}
	if alertPanelStyle.Render("test") == "" || restStyle.Render("test") == "" {
		t.Fatal("styles rendered empty")
	}
}
