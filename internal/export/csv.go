package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

// ToCSV writes one row per session. Open sessions have an empty End column.
func ToCSV(sessions []model.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ID", "Start", "End", "Active (s)", "Idle (s)", "Break (s)", "Active", "Idle", "Break"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndedAt != nil {
			endStr = s.EndedAt.Local().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.StartedAt.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(s.ActiveSec, 10),
			strconv.FormatInt(s.IdleSec, 10),
			strconv.FormatInt(s.BreakSec, 10),
			FormatDuration(s.ActiveSec),
			FormatDuration(s.IdleSec),
			FormatDuration(s.BreakSec),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// FormatDuration renders seconds as HH:MM:SS; hours may exceed 24.
func FormatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
