package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

// CloseOpenSessions ends every session left open, e.g. by a crash.
func (s *Store) CloseOpenSessions(at time.Time) error {
	_, err := s.db.Exec(`UPDATE sessions SET ended_at = ? WHERE ended_at IS NULL`, formatTime(at))
	if err != nil {
		return fmt.Errorf("close open sessions: %w", err)
	}
	return nil
}

func (s *Store) CreateSession(at time.Time) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO sessions (started_at) VALUES (?)`, formatTime(at))
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateSessionTotals(id int64, activeSec, idleSec, breakSec int) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET active_sec = ?, idle_sec = ?, break_sec = ? WHERE id = ?`,
		activeSec, idleSec, breakSec, id,
	)
	if err != nil {
		return fmt.Errorf("update session %d totals: %w", id, err)
	}
	return nil
}

func (s *Store) CloseSession(id int64, at time.Time) error {
	_, err := s.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("close session %d: %w", id, err)
	}
	return nil
}

func (s *Store) GetSession(id int64) (*model.Session, error) {
	var sess model.Session
	var startedAt string
	var endedAt sql.NullString
	err := s.db.QueryRow(
		`SELECT id, started_at, ended_at, active_sec, idle_sec, break_sec FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &startedAt, &endedAt, &sess.ActiveSec, &sess.IdleSec, &sess.BreakSec)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	sess.StartedAt = parseTime(startedAt)
	sess.EndedAt = parseNullTime(endedAt)
	return &sess, nil
}

// ListSessions returns sessions started in [from, to), newest first.
// A zero from or to leaves that side unbounded.
func (s *Store) ListSessions(from, to time.Time) ([]model.Session, error) {
	query := `SELECT id, started_at, ended_at, active_sec, idle_sec, break_sec FROM sessions WHERE 1=1`
	var args []any
	if !from.IsZero() {
		query += ` AND started_at >= ?`
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		query += ` AND started_at < ?`
		args = append(args, formatTime(to))
	}
	query += ` ORDER BY started_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&sess.ID, &startedAt, &endedAt, &sess.ActiveSec, &sess.IdleSec, &sess.BreakSec); err != nil {
			return nil, err
		}
		sess.StartedAt = parseTime(startedAt)
		sess.EndedAt = parseNullTime(endedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
