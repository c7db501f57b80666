package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

func (s *Store) StartBreakEvent(at time.Time) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO break_events (started_at) VALUES (?)`, formatTime(at))
	if err != nil {
		return 0, fmt.Errorf("start break event: %w", err)
	}
	return res.LastInsertId()
}

// UpdateBreakEvent records the longest idle streak observed so far.
func (s *Store) UpdateBreakEvent(id int64, maxIdleStreakSec int) error {
	_, err := s.db.Exec(`UPDATE break_events SET valid_idle_sec = ? WHERE id = ?`, maxIdleStreakSec, id)
	if err != nil {
		return fmt.Errorf("update break event %d: %w", id, err)
	}
	return nil
}

func (s *Store) CloseBreakEvent(id int64, at time.Time, completed bool) error {
	done := 0
	if completed {
		done = 1
	}
	_, err := s.db.Exec(
		`UPDATE break_events SET ended_at = ?, completed = ? WHERE id = ?`,
		formatTime(at), done, id,
	)
	if err != nil {
		return fmt.Errorf("close break event %d: %w", id, err)
	}
	return nil
}

func (s *Store) GetBreakEvent(id int64) (*model.BreakEvent, error) {
	var b model.BreakEvent
	var startedAt string
	var endedAt sql.NullString
	var completed int
	err := s.db.QueryRow(
		`SELECT id, started_at, ended_at, valid_idle_sec, completed FROM break_events WHERE id = ?`, id,
	).Scan(&b.ID, &startedAt, &endedAt, &b.ValidIdleSec, &completed)
	if err != nil {
		return nil, fmt.Errorf("get break event %d: %w", id, err)
	}
	b.StartedAt = parseTime(startedAt)
	b.EndedAt = parseNullTime(endedAt)
	b.Completed = completed == 1
	return &b, nil
}

// CompletedBreakCount counts breaks started in [from, to) that met the rest rule.
func (s *Store) CompletedBreakCount(from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM break_events WHERE completed = 1 AND started_at >= ? AND started_at < ?`,
		formatTime(from), formatTime(to),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed breaks: %w", err)
	}
	return n, nil
}
