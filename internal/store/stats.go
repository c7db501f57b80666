package store

import (
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

// TodayStats aggregates session totals and reminder actions in [start, end).
// Sessions are attributed to the window they started in.
func (s *Store) TodayStats(start, end time.Time) (model.TodayStats, error) {
	var stats model.TodayStats
	from, to := formatTime(start), formatTime(end)

	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(active_sec), 0), COALESCE(SUM(idle_sec), 0), COALESCE(SUM(break_sec), 0)
		FROM sessions
		WHERE started_at >= ? AND started_at < ?`,
		from, to,
	).Scan(&stats.ActiveSec, &stats.IdleSec, &stats.BreakSec)
	if err != nil {
		return stats, fmt.Errorf("session totals: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT action, COUNT(*)
		FROM reminder_events
		WHERE ts >= ? AND ts < ?
		GROUP BY action`,
		from, to,
	)
	if err != nil {
		return stats, fmt.Errorf("reminder counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return stats, err
		}
		switch model.ReminderAction(action) {
		case model.ActionSnooze:
			stats.Snoozes = n
		case model.ActionSkip:
			stats.Skips = n
		}
	}
	return stats, rows.Err()
}

func (s *Store) SkipCount(start, end time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM reminder_events
		WHERE ts >= ? AND ts < ? AND action = ?`,
		formatTime(start), formatTime(end), string(model.ActionSkip),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("skip count: %w", err)
	}
	return n, nil
}
