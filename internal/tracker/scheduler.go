package tracker

import (
	"sort"

	"github.com/sadopc/controlwork/internal/model"
)

// Scheduler decides which reminder points are due within the current work cycle.
// Every point fires at most once per kind until ResetCycle.
type Scheduler struct {
	baseSoft  []int
	baseHard  []int
	extraSoft []int
	extraHard []int
	firedSoft map[int]bool
	firedHard map[int]bool
}

func NewScheduler(soft, hard []int) *Scheduler {
	s := &Scheduler{}
	s.UpdatePoints(soft, hard)
	return s
}

// Evaluate marks and returns every unfired point at or below activeMinutes,
// ordered by minute with soft before hard on ties.
func (s *Scheduler) Evaluate(activeMinutes int) []model.ReminderEvent {
	if activeMinutes <= 0 {
		return nil
	}

	var due []model.ReminderEvent
	for _, p := range candidates(s.baseSoft, s.extraSoft) {
		if p <= activeMinutes && !s.firedSoft[p] {
			s.firedSoft[p] = true
			due = append(due, model.ReminderEvent{Kind: model.KindSoft, PointMinute: p})
		}
	}
	for _, p := range candidates(s.baseHard, s.extraHard) {
		if p <= activeMinutes && !s.firedHard[p] {
			s.firedHard[p] = true
			due = append(due, model.ReminderEvent{Kind: model.KindHard, PointMinute: p})
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].PointMinute != due[j].PointMinute {
			return due[i].PointMinute < due[j].PointMinute
		}
		return due[i].Kind < due[j].Kind
	})
	return due
}

// AddSnooze schedules an extra point offsetMinutes after currentMinute.
// The snoozed point stays fired.
func (s *Scheduler) AddSnooze(kind model.ReminderKind, currentMinute, offsetMinutes int) {
	target := currentMinute + offsetMinutes
	if target < 1 {
		target = 1
	}
	if kind == model.KindHard {
		s.extraHard = append(s.extraHard, target)
	} else {
		s.extraSoft = append(s.extraSoft, target)
	}
}

func (s *Scheduler) ResetCycle() {
	s.extraSoft = nil
	s.extraHard = nil
	s.firedSoft = make(map[int]bool)
	s.firedHard = make(map[int]bool)
}

// UpdatePoints replaces the configured points and starts a fresh cycle.
func (s *Scheduler) UpdatePoints(soft, hard []int) {
	s.baseSoft = candidates(soft, nil)
	s.baseHard = candidates(hard, nil)
	s.ResetCycle()
}

// NextHardPoint returns the nearest unfired hard point after activeMinutes.
func (s *Scheduler) NextHardPoint(activeMinutes int) (int, bool) {
	for _, p := range candidates(s.baseHard, s.extraHard) {
		if p > activeMinutes && !s.firedHard[p] {
			return p, true
		}
	}
	return 0, false
}

func candidates(base, extra []int) []int {
	seen := make(map[int]bool, len(base)+len(extra))
	out := make([]int, 0, len(base)+len(extra))
	for _, group := range [][]int{base, extra} {
		for _, p := range group {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Ints(out)
	return out
}
