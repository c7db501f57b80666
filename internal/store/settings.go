package store

import (
	"encoding/json"
	"fmt"

	"github.com/sadopc/controlwork/internal/config"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// GetAllSettings returns the stored snapshot rows ordered by key.
func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// SaveSettingsSnapshot stores every settings field as a JSON-encoded value
// so the database records which thresholds were in force.
func (s *Store) SaveSettingsSnapshot(settings config.Settings) error {
	fields := []struct {
		key   string
		value any
	}{
		{"language", settings.Language},
		{"idle_threshold_sec", settings.IdleThresholdSec},
		{"break_duration_min", settings.BreakDurationMin},
		{"soft_points_min", settings.SoftPointsMin},
		{"hard_points_min", settings.HardPointsMin},
		{"workday_reset_time", settings.WorkdayResetTime},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settings snapshot: %w", err)
	}
	defer tx.Rollback()

	for _, f := range fields {
		raw, err := json.Marshal(f.value)
		if err != nil {
			return fmt.Errorf("encode setting %q: %w", f.key, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			f.key, string(raw),
		); err != nil {
			return fmt.Errorf("save setting %q: %w", f.key, err)
		}
	}
	return tx.Commit()
}
