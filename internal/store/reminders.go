package store

import (
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

func (s *Store) LogReminder(at time.Time, kind model.ReminderKind, pointMinute int, action model.ReminderAction) error {
	_, err := s.db.Exec(
		`INSERT INTO reminder_events (ts, kind, point_min, action) VALUES (?, ?, ?, ?)`,
		formatTime(at), kind.String(), pointMinute, string(action),
	)
	if err != nil {
		return fmt.Errorf("log reminder: %w", err)
	}
	return nil
}

// ListReminders returns reminder log entries in [from, to), oldest first.
// A zero from or to leaves that side unbounded.
func (s *Store) ListReminders(from, to time.Time) ([]model.ReminderLogEntry, error) {
	query := `SELECT id, ts, kind, point_min, action FROM reminder_events WHERE 1=1`
	var args []any
	if !from.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		query += ` AND ts < ?`
		args = append(args, formatTime(to))
	}
	query += ` ORDER BY ts, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var entries []model.ReminderLogEntry
	for rows.Next() {
		var e model.ReminderLogEntry
		var ts, kind, action string
		if err := rows.Scan(&e.ID, &ts, &kind, &e.PointMinute, &action); err != nil {
			return nil, err
		}
		e.At = parseTime(ts)
		e.Kind = model.ParseReminderKind(kind)
		e.Action = model.ReminderAction(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
