package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/logger"
	"github.com/sadopc/controlwork/internal/model"
	"github.com/sadopc/controlwork/internal/tracker"
)

// Reader is the read-only slice of the store the API serves from.
type Reader interface {
	TodayStats(start, end time.Time) (model.TodayStats, error)
	ListSessions(from, to time.Time) ([]model.Session, error)
	GetSession(id int64) (*model.Session, error)
	CompletedBreakCount(from, to time.Time) (int, error)
}

// Server answers status queries about the tracker database.
type Server struct {
	store    Reader
	settings config.Settings
	clock    tracker.Clock
}

func NewServer(store Reader, settings config.Settings, clock tracker.Clock) *Server {
	if clock == nil {
		clock = tracker.SystemClock{}
	}
	return &Server{store: store, settings: settings.Normalize(), clock: clock}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.HandleFunc("/api/stats/today", s.handleTodayStats).Methods("GET")
	r.HandleFunc("/api/sessions", s.handleListSessions).Methods("GET")
	r.HandleFunc("/api/sessions/{id:[0-9]+}", s.handleGetSession).Methods("GET")
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("api request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
