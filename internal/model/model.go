package model

import "time"

// State is the tracker's classification of the current second.
type State int

const (
	StateActive State = iota
	StateIdle
	StateBreak
	StatePaused
)

var stateNames = map[State]string{
	StateActive: "active",
	StateIdle:   "idle",
	StateBreak:  "break",
	StatePaused: "paused",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ReminderKind distinguishes soft (advisory) from hard (break-triggering) points.
type ReminderKind int

const (
	KindSoft ReminderKind = iota
	KindHard
)

func (k ReminderKind) String() string {
	if k == KindHard {
		return "hard"
	}
	return "soft"
}

// ParseReminderKind maps "hard" to KindHard and anything else to KindSoft.
func ParseReminderKind(s string) ReminderKind {
	if s == "hard" {
		return KindHard
	}
	return KindSoft
}

// ReminderAction is what happened to a reminder, as written to the reminder log.
type ReminderAction string

const (
	ActionShown  ReminderAction = "shown"
	ActionSnooze ReminderAction = "snooze"
	ActionSkip   ReminderAction = "skip"
	ActionIgnore ReminderAction = "ignore"
)

type ReminderEvent struct {
	Kind        ReminderKind
	PointMinute int
}

// TickOutcome describes one second of tracking for the UI layer.
type TickOutcome struct {
	State     State
	Reminders []ReminderEvent

	// Only set while in (or just leaving) a break.
	BreakRemainingSec  *int
	BreakIdleStreakSec int
	BreakCompleted     bool
}

type TodayStats struct {
	ActiveSec int64 `json:"active_sec"`
	IdleSec   int64 `json:"idle_sec"`
	BreakSec  int64 `json:"break_sec"`
	Snoozes   int   `json:"snoozes"`
	Skips     int   `json:"skips"`
}

type Session struct {
	ID        int64
	StartedAt time.Time
	EndedAt   *time.Time
	ActiveSec int64
	IdleSec   int64
	BreakSec  int64
}

type BreakEvent struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      *time.Time
	ValidIdleSec int
	Completed    bool
}

type ReminderLogEntry struct {
	ID          int64
	At          time.Time
	Kind        ReminderKind
	PointMinute int
	Action      ReminderAction
}
