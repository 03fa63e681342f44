package planner

import (
	"strings"
	"time"
)

// Horizon bounds. With no exam date anywhere the plan covers the
// minimum; the furthest exam extends it up to the cap.
const (
	minHorizonDays = 30
	maxHorizonDays = 90
)

// dateOnly truncates t to a UTC calendar date. Every date comparison
// in the engine goes through this; mixing local-time and UTC day
// boundaries produces off-by-one-day drift between the horizon, the
// day loop, and exam cutoffs.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b (negative when
// b is before a).
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// calendarDay is one slot of the planning grid.
type calendarDay struct {
	Date time.Time
	Off  bool
}

// dayGrid is the resolved planning window.
type dayGrid struct {
	Days      []calendarDay
	StudyDays int // days that are not days off
}

// resolveHorizon builds the day grid starting at today. The window
// length is driven by the latest exam date among the courses, so the
// plan always covers the furthest deadline, clamped to
// [minHorizonDays, maxHorizonDays].
func resolveHorizon(courses []Course, today time.Time, daysOff map[time.Weekday]bool) dayGrid {
	today = dateOnly(today)

	horizon := minHorizonDays
	for _, c := range courses {
		if c.ExamDate == nil {
			continue
		}
		if d := daysBetween(today, *c.ExamDate); d > horizon {
			horizon = d
		}
	}
	if horizon > maxHorizonDays {
		horizon = maxHorizonDays
	}

	grid := dayGrid{Days: make([]calendarDay, 0, horizon)}
	for i := 0; i < horizon; i++ {
		date := today.AddDate(0, 0, i)
		off := daysOff[date.Weekday()]
		grid.Days = append(grid.Days, calendarDay{Date: date, Off: off})
		if !off {
			grid.StudyDays++
		}
	}
	return grid
}

// parseDaysOff converts weekday names to a lookup set. Unknown names
// are reported so a malformed snapshot fails fast.
func parseDaysOff(names []string) (map[time.Weekday]bool, error) {
	set := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		wd, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, &InputError{Field: "preferences.days_off", Reason: "unknown weekday " + name}
		}
		set[wd] = true
	}
	return set, nil
}
