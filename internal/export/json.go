package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/controlwork/internal/model"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Totals     jsonTotals    `json:"totals"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonTotals struct {
	ActiveSec int64 `json:"active_seconds"`
	IdleSec   int64 `json:"idle_seconds"`
	BreakSec  int64 `json:"break_seconds"`
}

type jsonSession struct {
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	ActiveSec int64  `json:"active_seconds"`
	IdleSec   int64  `json:"idle_seconds"`
	BreakSec  int64  `json:"break_seconds"`
	Active    string `json:"active"`
}

func ToJSON(sessions []model.Session, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndedAt != nil {
			endStr = s.EndedAt.Local().Format(time.RFC3339)
		}
		export.Totals.ActiveSec += s.ActiveSec
		export.Totals.IdleSec += s.IdleSec
		export.Totals.BreakSec += s.BreakSec

		export.Sessions = append(export.Sessions, jsonSession{
			ID:        s.ID,
			StartTime: s.StartedAt.Local().Format(time.RFC3339),
			EndTime:   endStr,
			ActiveSec: s.ActiveSec,
			IdleSec:   s.IdleSec,
			BreakSec:  s.BreakSec,
			Active:    FormatDuration(s.ActiveSec),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
