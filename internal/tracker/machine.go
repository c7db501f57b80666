package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/logger"
	"github.com/sadopc/controlwork/internal/model"
)

// Machine is the tick-driven work/break state machine. It is not safe for
// concurrent use; a single driver goroutine owns it.
type Machine struct {
	settings  config.Settings
	idle      IdleSource
	store     Persistence
	clock     Clock
	scheduler *Scheduler

	state model.State

	sessionID   int64
	sessionOpen bool
	breakID     int64
	breakOpen   bool

	activeSec      int
	idleSec        int
	breakSec       int
	cycleActiveSec int

	breakElapsedSec       int
	breakIdleStreakSec    int
	breakMaxIdleStreakSec int

	snoozeHourBucket    int
	snoozeCountInBucket int
	skipCountToday      int
	windowStart         time.Time
}

func New(opts Options) *Machine {
	settings := opts.Settings.Normalize()
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = NewScheduler(settings.SoftPointsMin, settings.HardPointsMin)
	}

	m := &Machine{
		settings:  settings,
		idle:      opts.Idle,
		store:     opts.Store,
		clock:     clock,
		scheduler: scheduler,
		state:     model.StateActive,
	}
	start, _ := m.window(clock.Now())
	m.windowStart = start
	return m
}

// StartSession closes any dangling session rows, opens a new session,
// loads today's skip count and snapshots the current settings.
func (m *Machine) StartSession() error {
	now := m.clock.Now()
	if err := m.store.CloseOpenSessions(now); err != nil {
		return fmt.Errorf("close open sessions: %w", err)
	}
	id, err := m.store.CreateSession(now)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	m.sessionID = id
	m.sessionOpen = true

	start, end := m.window(now)
	m.windowStart = start
	m.reloadSkipCount(start, end)

	if err := m.store.SaveSettingsSnapshot(m.settings); err != nil {
		logger.Warn("save settings snapshot", "err", err)
	}
	logger.Info("session started", "id", id, "day", DayKey(m.windowStart))
	return nil
}

// StopSession closes an open break as incomplete, flushes totals and closes
// the session. It is a no-op when no session is open.
func (m *Machine) StopSession() error {
	if !m.sessionOpen {
		return nil
	}
	now := m.clock.Now()

	var errs []error
	if m.breakOpen {
		if err := m.store.CloseBreakEvent(m.breakID, now, false); err != nil {
			errs = append(errs, fmt.Errorf("close break event: %w", err))
		}
		m.breakOpen = false
	}
	if err := m.store.UpdateSessionTotals(m.sessionID, m.activeSec, m.idleSec, m.breakSec); err != nil {
		errs = append(errs, fmt.Errorf("flush session totals: %w", err))
	}
	if err := m.store.CloseSession(m.sessionID, now); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}
	m.sessionOpen = false

	logger.Info("session stopped", "id", m.sessionID,
		"active_sec", m.activeSec, "idle_sec", m.idleSec, "break_sec", m.breakSec)
	return errors.Join(errs...)
}

// ApplySettings replaces the settings and restarts the reminder cycle.
// A new reset time takes effect immediately for the skip quota.
func (m *Machine) ApplySettings(settings config.Settings) {
	m.settings = settings.Normalize()
	m.scheduler.UpdatePoints(m.settings.SoftPointsMin, m.settings.HardPointsMin)
	m.rollDayIfNeeded(m.clock.Now())
	if err := m.store.SaveSettingsSnapshot(m.settings); err != nil {
		logger.Warn("save settings snapshot", "err", err)
	}
}

// Pause freezes all accounting. A break in progress cannot be paused.
func (m *Machine) Pause() {
	if m.state == model.StateBreak || m.state == model.StatePaused {
		return
	}
	m.setState(model.StatePaused)
}

func (m *Machine) Resume() {
	if m.state != model.StatePaused {
		return
	}
	m.setState(model.StateActive)
}

func (m *Machine) CanSkipToday() bool {
	return m.skipCountToday < SkipsPerDay
}

// RequestSnooze pushes a reminder of the given kind five minutes past the
// current cycle minute. At most two snoozes are granted per whole hour of
// cycle work time.
func (m *Machine) RequestSnooze(kind model.ReminderKind) bool {
	bucket := m.cycleActiveSec / 3600
	if bucket != m.snoozeHourBucket {
		m.snoozeHourBucket = bucket
		m.snoozeCountInBucket = 0
	}
	if m.snoozeCountInBucket >= SnoozesPerWorkHour {
		return false
	}

	minute := m.cycleMinute()
	m.scheduler.AddSnooze(kind, minute, SnoozeOffsetMin)
	m.snoozeCountInBucket++
	m.logReminder(m.clock.Now(), kind, minute, model.ActionSnooze)
	return true
}

// SnoozesLeft reports how many snoozes RequestSnooze would still grant.
func (m *Machine) SnoozesLeft() int {
	if m.cycleActiveSec/3600 != m.snoozeHourBucket {
		return SnoozesPerWorkHour
	}
	return SnoozesPerWorkHour - m.snoozeCountInBucket
}

func (m *Machine) SkipBreak() bool {
	if !m.CanSkipToday() {
		return false
	}
	m.skipCountToday++
	m.logReminder(m.clock.Now(), model.KindHard, m.cycleMinute(), model.ActionSkip)
	return true
}

// IgnoreReminder records that the user dismissed a reminder without acting.
func (m *Machine) IgnoreReminder(ev model.ReminderEvent) {
	m.logReminder(m.clock.Now(), ev.Kind, ev.PointMinute, model.ActionIgnore)
}

// EnterBreak starts a break and opens its record. It does nothing while
// paused or when a break is already running.
func (m *Machine) EnterBreak() {
	if m.state == model.StateBreak || m.state == model.StatePaused {
		return
	}
	m.setState(model.StateBreak)
	m.breakElapsedSec = 0
	m.breakIdleStreakSec = 0
	m.breakMaxIdleStreakSec = 0

	id, err := m.store.StartBreakEvent(m.clock.Now())
	if err != nil {
		logger.Warn("start break event", "err", err)
		m.breakOpen = false
		return
	}
	m.breakID = id
	m.breakOpen = true
}

// Tick advances the machine by one second.
func (m *Machine) Tick() model.TickOutcome {
	now := m.clock.Now()
	m.rollDayIfNeeded(now)

	if !m.sessionOpen {
		if err := m.StartSession(); err != nil {
			logger.Warn("start session", "err", err)
		}
	}

	var out model.TickOutcome
	switch m.state {
	case model.StatePaused:
		out = model.TickOutcome{State: m.state}
	case model.StateBreak:
		out = m.tickBreak(now)
	default:
		out = m.tickWork(now)
	}
	m.flushTotals()
	return out
}

func (m *Machine) tickBreak(now time.Time) model.TickOutcome {
	m.breakSec++
	m.breakElapsedSec++

	if m.idle.IdleSeconds() >= m.settings.IdleThresholdSec {
		m.breakIdleStreakSec++
	} else {
		m.breakIdleStreakSec = 0
	}
	if m.breakIdleStreakSec > m.breakMaxIdleStreakSec {
		m.breakMaxIdleStreakSec = m.breakIdleStreakSec
	}
	if m.breakOpen {
		if err := m.store.UpdateBreakEvent(m.breakID, m.breakMaxIdleStreakSec); err != nil {
			logger.Warn("update break event", "err", err)
		}
	}

	remaining := m.breakRemaining()
	out := model.TickOutcome{
		BreakRemainingSec:  &remaining,
		BreakIdleStreakSec: m.breakMaxIdleStreakSec,
	}
	if remaining <= 0 && m.breakMaxIdleStreakSec >= BreakIdleStreakSec {
		m.completeBreak(now)
		out.BreakCompleted = true
	}
	out.State = m.state
	return out
}

func (m *Machine) tickWork(now time.Time) model.TickOutcome {
	if m.idle.IdleSeconds() >= m.settings.IdleThresholdSec {
		m.setState(model.StateIdle)
		m.idleSec++
		return model.TickOutcome{State: m.state}
	}

	m.setState(model.StateActive)
	m.activeSec++
	m.cycleActiveSec++

	out := model.TickOutcome{State: m.state}
	for _, ev := range m.scheduler.Evaluate(m.cycleActiveSec / 60) {
		m.logReminder(now, ev.Kind, ev.PointMinute, model.ActionShown)
		out.Reminders = append(out.Reminders, ev)
	}
	return out
}

func (m *Machine) completeBreak(now time.Time) {
	m.setState(model.StateActive)
	m.cycleActiveSec = 0
	m.snoozeHourBucket = 0
	m.snoozeCountInBucket = 0
	m.scheduler.ResetCycle()

	if m.breakOpen {
		if err := m.store.CloseBreakEvent(m.breakID, now, true); err != nil {
			logger.Warn("close break event", "err", err)
		}
		m.breakOpen = false
	}
	logger.Info("break completed", "elapsed_sec", m.breakElapsedSec, "idle_streak_sec", m.breakMaxIdleStreakSec)
}

func (m *Machine) rollDayIfNeeded(now time.Time) {
	start, end := m.window(now)
	if start.Equal(m.windowStart) {
		return
	}
	logger.Debug("workday rollover", "from", m.windowStart, "to", start)
	m.windowStart = start
	m.reloadSkipCount(start, end)
}

func (m *Machine) reloadSkipCount(start, end time.Time) {
	n, err := m.store.SkipCount(start, end)
	if err != nil {
		logger.Warn("load skip count", "err", err)
		return
	}
	m.skipCountToday = n
}

func (m *Machine) flushTotals() {
	if !m.sessionOpen {
		return
	}
	if err := m.store.UpdateSessionTotals(m.sessionID, m.activeSec, m.idleSec, m.breakSec); err != nil {
		logger.Warn("flush session totals", "err", err)
	}
}

func (m *Machine) logReminder(at time.Time, kind model.ReminderKind, point int, action model.ReminderAction) {
	if err := m.store.LogReminder(at, kind, point, action); err != nil {
		logger.Warn("log reminder", "kind", kind, "point", point, "action", action, "err", err)
	}
}

func (m *Machine) setState(s model.State) {
	if s != m.state {
		logger.Debug("state change", "from", m.state, "to", s)
	}
	m.state = s
}

func (m *Machine) window(now time.Time) (time.Time, time.Time) {
	hour, minute := m.settings.ResetClock()
	return DayWindow(now, hour, minute)
}

func (m *Machine) cycleMinute() int {
	if minute := m.cycleActiveSec / 60; minute > 1 {
		return minute
	}
	return 1
}

func (m *Machine) breakRemaining() int {
	remaining := m.settings.BreakDurationMin*60 - m.breakElapsedSec
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TodayWindow returns the workday window containing the current time.
func (m *Machine) TodayWindow() (time.Time, time.Time) {
	return m.window(m.clock.Now())
}

// TodayStats aggregates the current workday window from the store.
func (m *Machine) TodayStats() (model.TodayStats, error) {
	start, end := m.TodayWindow()
	return m.store.TodayStats(start, end)
}

func (m *Machine) State() model.State { return m.state }
func (m *Machine) Settings() config.Settings { return m.settings }
func (m *Machine) SessionOpen() bool { return m.sessionOpen }
func (m *Machine) CycleActiveSeconds() int { return m.cycleActiveSec }
func (m *Machine) DayKey() string { return DayKey(m.windowStart) }

func (m *Machine) Counters() Counters {
	return Counters{
		ActiveSec:             m.activeSec,
		IdleSec:               m.idleSec,
		BreakSec:              m.breakSec,
		CycleActiveSec:        m.cycleActiveSec,
		BreakElapsedSec:       m.breakElapsedSec,
		BreakIdleStreakSec:    m.breakIdleStreakSec,
		BreakMaxIdleStreakSec: m.breakMaxIdleStreakSec,
		SnoozeHourBucket:      m.snoozeHourBucket,
		SnoozeCountInBucket:   m.snoozeCountInBucket,
		SkipCountToday:        m.skipCountToday,
	}
}

// SecondsToNextBreak returns the seconds until the next unfired hard point,
// or the break time remaining while in a break. ok is false when no hard
// point is left in this cycle.
func (m *Machine) SecondsToNextBreak() (int, bool) {
	if m.state == model.StateBreak {
		return m.breakRemaining(), true
	}
	point, ok := m.scheduler.NextHardPoint(m.cycleActiveSec / 60)
	if !ok {
		return 0, false
	}
	secs := point*60 - m.cycleActiveSec
	if secs < 0 {
		secs = 0
	}
	return secs, true
}
