package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	MinIdleThresholdSec = 30
	MinBreakDurationMin = 1
	DefaultResetTime    = "04:00"
)

// Settings holds the user-editable tracker preferences.
type Settings struct {
	Language         string `yaml:"language"`
	IdleThresholdSec int    `yaml:"idle_threshold_sec"`
	BreakDurationMin int    `yaml:"break_duration_min"`
	SoftPointsMin    []int  `yaml:"soft_points_min"`
	HardPointsMin    []int  `yaml:"hard_points_min"`
	WorkdayResetTime string `yaml:"workday_reset_time"`
}

// Default returns the settings used on first run.
func Default() Settings {
	return Settings{
		Language:         "en",
		IdleThresholdSec: 120,
		BreakDurationMin: 10,
		SoftPointsMin:    []int{15, 30, 45},
		HardPointsMin:    []int{50},
		WorkdayResetTime: DefaultResetTime,
	}
}

// Normalize returns a copy with every field clamped or repaired to a usable value.
func (s Settings) Normalize() Settings {
	def := Default()
	out := s

	// Unknown languages fall back to English, the default.
	if out.Language != "ru" {
		out.Language = "en"
	}
	if out.IdleThresholdSec < MinIdleThresholdSec {
		out.IdleThresholdSec = MinIdleThresholdSec
	}
	if out.BreakDurationMin < MinBreakDurationMin {
		out.BreakDurationMin = MinBreakDurationMin
	}
	out.SoftPointsMin = normalizePoints(s.SoftPointsMin, def.SoftPointsMin)
	out.HardPointsMin = normalizePoints(s.HardPointsMin, def.HardPointsMin)

	h, m, ok := parseClock(s.WorkdayResetTime)
	if !ok {
		out.WorkdayResetTime = DefaultResetTime
	} else {
		out.WorkdayResetTime = fmt.Sprintf("%02d:%02d", h, m)
	}
	return out
}

// ResetClock returns the hour and minute of the workday reset time.
// Unparsable values fall back to the default reset time.
func (s Settings) ResetClock() (hour, minute int) {
	h, m, ok := parseClock(s.WorkdayResetTime)
	if !ok {
		h, m, _ = parseClock(DefaultResetTime)
	}
	return h, m
}

// ValidateResetTime checks that raw is an HH:MM time between 00:00 and 23:59.
func ValidateResetTime(raw string) error {
	if _, _, ok := parseClock(raw); !ok {
		return fmt.Errorf("reset time %q must be HH:MM between 00:00 and 23:59", raw)
	}
	return nil
}

// ParsePoints parses a comma separated list of minutes such as "15, 30,45".
func ParsePoints(raw string) ([]int, error) {
	var points []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse point %q: %w", part, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("point %d must be positive", n)
		}
		points = append(points, n)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no points given")
	}
	return normalizePoints(points, nil), nil
}

// FormatPoints is the inverse of ParsePoints.
func FormatPoints(points []int) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func normalizePoints(values, fallback []int) []int {
	seen := make(map[int]bool, len(values))
	var out []int
	for _, v := range values {
		if v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return append([]int(nil), fallback...)
	}
	sort.Ints(out)
	return out
}

func parseClock(raw string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
