package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sadopc/controlwork/internal/config"
	"github.com/sadopc/controlwork/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/controlwork.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.CreateSession(base)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration is not repeated.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, err := s2.GetSession(id); err != nil {
		t.Fatalf("session lost after reopen: %v", err)
	}
}

// ============================================================
// Sessions
// ============================================================

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateSession(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateSessionTotals(id, 300, 60, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateSessionTotals(id, 600, 90, 30); err != nil {
		t.Fatal(err)
	}

	sess, err := s.GetSession(id)
	if err != nil {
		t.Fatal(err)
	}
	if sess.EndedAt != nil {
		t.Fatal("session should still be open")
	}
	if sess.ActiveSec != 600 || sess.IdleSec != 90 || sess.BreakSec != 30 {
		t.Fatalf("totals = %d/%d/%d, want 600/90/30", sess.ActiveSec, sess.IdleSec, sess.BreakSec)
	}
	if !sess.StartedAt.Equal(base) {
		t.Fatalf("started_at = %v, want %v", sess.StartedAt, base)
	}

	end := base.Add(time.Hour)
	if err := s.CloseSession(id, end); err != nil {
		t.Fatal(err)
	}
	sess, _ = s.GetSession(id)
	if sess.EndedAt == nil || !sess.EndedAt.Equal(end) {
		t.Fatalf("ended_at = %v, want %v", sess.EndedAt, end)
	}
}

func TestCloseOpenSessions(t *testing.T) {
	s := newTestStore(t)

	closedID, _ := s.CreateSession(base)
	s.CloseSession(closedID, base.Add(time.Minute))
	openID, _ := s.CreateSession(base.Add(time.Hour))

	at := base.Add(2 * time.Hour)
	if err := s.CloseOpenSessions(at); err != nil {
		t.Fatal(err)
	}

	open, _ := s.GetSession(openID)
	if open.EndedAt == nil || !open.EndedAt.Equal(at) {
		t.Fatalf("dangling session ended_at = %v, want %v", open.EndedAt, at)
	}
	closed, _ := s.GetSession(closedID)
	if !closed.EndedAt.Equal(base.Add(time.Minute)) {
		t.Fatal("already closed session should keep its end time")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSession(42); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestListSessions(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.CreateSession(base.Add(time.Duration(i) * 24 * time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListSessions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if !all[0].StartedAt.After(all[2].StartedAt) {
		t.Fatal("sessions should be newest first")
	}

	ranged, err := s.ListSessions(base.Add(12*time.Hour), base.Add(36*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(ranged) != 1 {
		t.Fatalf("expected 1 session in range, got %d", len(ranged))
	}
}

func TestListSessionsEmpty(t *testing.T) {
	s := newTestStore(t)
	sessions, err := s.ListSessions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

// ============================================================
// Reminder log
// ============================================================

func TestLogAndListReminders(t *testing.T) {
	s := newTestStore(t)

	s.LogReminder(base.Add(15*time.Minute), model.KindSoft, 15, model.ActionShown)
	s.LogReminder(base.Add(50*time.Minute), model.KindHard, 50, model.ActionShown)
	s.LogReminder(base.Add(50*time.Minute+time.Second), model.KindHard, 50, model.ActionSnooze)

	entries, err := s.ListReminders(base, base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Kind != model.KindSoft || entries[0].PointMinute != 15 || entries[0].Action != model.ActionShown {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[2].Kind != model.KindHard || entries[2].Action != model.ActionSnooze {
		t.Fatalf("unexpected last entry: %+v", entries[2])
	}

	outside, _ := s.ListReminders(base.Add(time.Hour), base.Add(2*time.Hour))
	if len(outside) != 0 {
		t.Fatalf("expected no entries outside range, got %d", len(outside))
	}
}

func TestListRemindersOpenBounds(t *testing.T) {
	s := newTestStore(t)

	s.LogReminder(base, model.KindSoft, 15, model.ActionShown)
	s.LogReminder(base.Add(24*time.Hour), model.KindHard, 50, model.ActionIgnore)

	all, err := s.ListReminders(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("zero bounds should list everything, got %d", len(all))
	}

	since, _ := s.ListReminders(base.Add(time.Hour), time.Time{})
	if len(since) != 1 || since[0].Action != model.ActionIgnore {
		t.Fatalf("open upper bound = %+v", since)
	}

	until, _ := s.ListReminders(time.Time{}, base.Add(time.Hour))
	if len(until) != 1 || until[0].Action != model.ActionShown {
		t.Fatalf("open lower bound = %+v", until)
	}
}

// ============================================================
// Break events
// ============================================================

func TestBreakEventLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.StartBreakEvent(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateBreakEvent(id, 45); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateBreakEvent(id, 130); err != nil {
		t.Fatal(err)
	}

	b, err := s.GetBreakEvent(id)
	if err != nil {
		t.Fatal(err)
	}
	if b.ValidIdleSec != 130 || b.Completed || b.EndedAt != nil {
		t.Fatalf("unexpected open break: %+v", b)
	}

	end := base.Add(10 * time.Minute)
	if err := s.CloseBreakEvent(id, end, true); err != nil {
		t.Fatal(err)
	}
	b, _ = s.GetBreakEvent(id)
	if !b.Completed || b.EndedAt == nil || !b.EndedAt.Equal(end) {
		t.Fatalf("unexpected closed break: %+v", b)
	}
}

func TestCompletedBreakCount(t *testing.T) {
	s := newTestStore(t)

	done, _ := s.StartBreakEvent(base)
	s.CloseBreakEvent(done, base.Add(10*time.Minute), true)
	abandoned, _ := s.StartBreakEvent(base.Add(time.Hour))
	s.CloseBreakEvent(abandoned, base.Add(time.Hour+time.Minute), false)

	n, err := s.CompletedBreakCount(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 completed break, got %d", n)
	}
}

// ============================================================
// Stats
// ============================================================

func TestTodayStats(t *testing.T) {
	s := newTestStore(t)

	a, _ := s.CreateSession(base)
	s.UpdateSessionTotals(a, 1200, 300, 0)
	b, _ := s.CreateSession(base.Add(3 * time.Hour))
	s.UpdateSessionTotals(b, 1800, 60, 600)
	// Previous window, must not count.
	old, _ := s.CreateSession(base.Add(-24 * time.Hour))
	s.UpdateSessionTotals(old, 9999, 9999, 9999)

	s.LogReminder(base.Add(time.Minute), model.KindSoft, 15, model.ActionSnooze)
	s.LogReminder(base.Add(2*time.Minute), model.KindHard, 50, model.ActionSnooze)
	s.LogReminder(base.Add(3*time.Minute), model.KindHard, 50, model.ActionSkip)
	s.LogReminder(base.Add(4*time.Minute), model.KindSoft, 30, model.ActionShown)

	stats, err := s.TodayStats(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	want := model.TodayStats{ActiveSec: 3000, IdleSec: 360, BreakSec: 600, Snoozes: 2, Skips: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestTodayStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.TodayStats(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if stats != (model.TodayStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestSkipCount(t *testing.T) {
	s := newTestStore(t)

	s.LogReminder(base.Add(-time.Hour), model.KindHard, 50, model.ActionSkip)
	s.LogReminder(base.Add(time.Hour), model.KindHard, 50, model.ActionSkip)
	s.LogReminder(base.Add(2*time.Hour), model.KindHard, 50, model.ActionShown)

	n, err := s.SkipCount(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 skip in window, got %d", n)
	}
}

func TestWindowBoundsAcrossZones(t *testing.T) {
	s := newTestStore(t)
	loc := time.FixedZone("UTC+3", 3*3600)

	// 04:30 local is 01:30 UTC; the window opens at 04:00 local.
	s.LogReminder(time.Date(2026, 3, 10, 4, 30, 0, 0, loc), model.KindHard, 50, model.ActionSkip)

	start := time.Date(2026, 3, 10, 4, 0, 0, 0, loc)
	n, err := s.SkipCount(start, start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected skip inside local window, got %d", n)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSnapshotOverwritesAndMissingKey(t *testing.T) {
	s := newTestStore(t)

	ru := config.Default()
	ru.Language = "ru"
	if err := s.SaveSettingsSnapshot(ru); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSettingsSnapshot(config.Default()); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting("language")
	if err != nil {
		t.Fatal(err)
	}
	if v != `"en"` {
		t.Fatalf("expected upserted value, got %s", v)
	}

	if _, err := s.GetSetting("missing"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestSaveSettingsSnapshot(t *testing.T) {
	s := newTestStore(t)

	settings := config.Default()
	settings.HardPointsMin = []int{45, 90}
	if err := s.SaveSettingsSnapshot(settings); err != nil {
		t.Fatal(err)
	}

	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 settings rows, got %d", len(all))
	}

	raw, _ := s.GetSetting("hard_points_min")
	var hard []int
	if err := json.Unmarshal([]byte(raw), &hard); err != nil {
		t.Fatalf("hard points not JSON: %v", err)
	}
	if len(hard) != 2 || hard[0] != 45 || hard[1] != 90 {
		t.Fatalf("hard points = %v", hard)
	}

	raw, _ = s.GetSetting("workday_reset_time")
	if raw != `"04:00"` {
		t.Fatalf("reset time = %s", raw)
	}
}
