package tracker

import (
	"time"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/model"
)

const (
	// BreakIdleStreakSec is the continuous idle run a break must contain,
	// regardless of the configured idle threshold.
	BreakIdleStreakSec = 120

	SnoozeOffsetMin    = 5
	SnoozesPerWorkHour = 2
	SkipsPerDay        = 1
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IdleSource reports seconds since the last user input, 0 when unknown.
type IdleSource interface {
	IdleSeconds() int
}

// Persistence is the durable sink the machine writes sessions, reminders
// and breaks to. Implemented by store.Store.
type Persistence interface {
	CloseOpenSessions(at time.Time) error
	CreateSession(at time.Time) (int64, error)
	UpdateSessionTotals(id int64, activeSec, idleSec, breakSec int) error
	CloseSession(id int64, at time.Time) error

	LogReminder(at time.Time, kind model.ReminderKind, pointMinute int, action model.ReminderAction) error

	StartBreakEvent(at time.Time) (int64, error)
	UpdateBreakEvent(id int64, maxIdleStreakSec int) error
	CloseBreakEvent(id int64, at time.Time, completed bool) error

	TodayStats(start, end time.Time) (model.TodayStats, error)
	SkipCount(start, end time.Time) (int, error)
	SaveSettingsSnapshot(settings config.Settings) error
}

// Options wires a Machine to its collaborators. Clock and Scheduler are optional.
type Options struct {
	Settings  config.Settings
	Idle      IdleSource
	Store     Persistence
	Clock     Clock
	Scheduler *Scheduler
}

// Counters is a read-only snapshot of the machine's accounting.
type Counters struct {
	ActiveSec      int
	IdleSec        int
	BreakSec       int
	CycleActiveSec int

	BreakElapsedSec       int
	BreakIdleStreakSec    int
	BreakMaxIdleStreakSec int

	SnoozeHourBucket    int
	SnoozeCountInBucket int
	SkipCountToday      int
}
