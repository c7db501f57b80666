package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sadopc/controlwork/internal/logger"
	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/tracker"
)

const (
	defaultDays = 7
	maxDays     = 90
)

type todayResponse struct {
	Day             string `json:"day"`
	WindowStart     string `json:"window_start"`
	WindowEnd       string `json:"window_end"`
	CompletedBreaks int    `json:"completed_breaks"`
	model.TodayStats
}

type sessionResponse struct {
	ID        int64  `json:"id"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	ActiveSec int64  `json:"active_sec"`
	IdleSec   int64  `json:"idle_sec"`
	BreakSec  int64  `json:"break_sec"`
}

func (s *Server) handleTodayStats(w http.ResponseWriter, r *http.Request) {
	start, end := s.window(s.clock.Now())

	stats, err := s.store.TodayStats(start, end)
	if err != nil {
		s.fail(w, "today stats", err)
		return
	}
	breaks, err := s.store.CompletedBreakCount(start, end)
	if err != nil {
		s.fail(w, "completed breaks", err)
		return
	}

	writeJSON(w, http.StatusOK, todayResponse{
		Day:             tracker.DayKey(start),
		WindowStart:     start.Format(time.RFC3339),
		WindowEnd:       end.Format(time.RFC3339),
		CompletedBreaks: breaks,
		TodayStats:      stats,
	})
}

// handleListSessions returns sessions from the last N workday windows,
// today included. days defaults to 7 and is capped at 90.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	days := defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = min(n, maxDays)
	}

	start, end := s.window(s.clock.Now())
	from := start.AddDate(0, 0, -(days - 1))

	sessions, err := s.store.ListSessions(from, end)
	if err != nil {
		s.fail(w, "list sessions", err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	sess, err := s.store.GetSession(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(*sess))
}

func (s *Server) window(now time.Time) (time.Time, time.Time) {
	hour, minute := s.settings.ResetClock()
	return tracker.DayWindow(now, hour, minute)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	logger.Error("api "+what, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toSessionResponse(sess model.Session) sessionResponse {
	resp := sessionResponse{
		ID:        sess.ID,
		StartedAt: sess.StartedAt.Local().Format(time.RFC3339),
		ActiveSec: sess.ActiveSec,
		IdleSec:   sess.IdleSec,
		BreakSec:  sess.BreakSec,
	}
	if sess.EndedAt != nil {
		resp.EndedAt = sess.EndedAt.Local().Format(time.RFC3339)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", "err", err)
	}
}
