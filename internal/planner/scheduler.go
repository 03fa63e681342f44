package planner

import (
	"sort"
	"time"
)

const (
	// dayTolerance is the leftover below which a day is considered
	// full and the allocation loop stops.
	dayTolerance = 0.25
	// doneThreshold is the remaining-hours level at which a topic
	// counts as fully scheduled.
	doneThreshold = 0.1
)

// courseRun is the scheduler's per-course state: the topologically
// sorted topics, a cursor that only advances when a topic is fully
// allocated, and the remaining (possibly compressed) hours per topic.
type courseRun struct {
	course    *Course
	sorted    []Topic
	remaining []float64
	cursor    int
	// cyclic holds topics whose prerequisites form a cycle; they are
	// ordered by fallback and not prerequisite-gated.
	cyclic map[string]bool
}

func (cr *courseRun) exhausted() bool {
	return cr.cursor >= len(cr.sorted)
}

// scheduleResult carries the scheduler's raw output into the emitter.
type scheduleResult struct {
	Days            []PlanDay
	Items           []ScheduledItem
	TopicsScheduled int
	// LastStudyDate is the date of the final day that received any
	// allocation; zero when nothing was scheduled.
	LastStudyDate time.Time
}

// runSchedule walks the day grid greedily. Each study day allocates
// the daily budget across courses ordered by exam proximity, honors
// prerequisites including same-day unlocks, splits topics across
// days, and never schedules a topic on or past its course's exam
// date.
func runSchedule(runs []*courseRun, grid dayGrid, dailyHours float64, compressed map[string]float64) scheduleResult {
	active := make(map[string]bool)
	for _, cr := range runs {
		for i, t := range cr.sorted {
			active[t.ID] = true
			cr.remaining[i] = compressed[t.ID]
		}
	}

	res := scheduleResult{Days: make([]PlanDay, 0, len(grid.Days))}
	// Topics completed on prior days versus completed earlier today.
	// Conflating the two would let a dependent run before its
	// same-day prerequisite finishes.
	scheduledPrior := make(map[string]bool)

	for _, day := range grid.Days {
		if day.Off {
			res.Days = append(res.Days, PlanDay{Date: day.Date, DayOff: true})
			continue
		}

		remainingHours := dailyHours
		scheduledToday := make(map[string]bool)
		var items []ScheduledItem

		maxPasses := 2 * (len(runs) + 1)
		for pass := 0; pass < maxPasses && remainingHours > dayTolerance; pass++ {
			candidates := candidateRuns(runs, day.Date)
			if len(candidates) == 0 {
				break
			}

			progressed := false
			for _, cr := range candidates {
				if remainingHours <= dayTolerance {
					break
				}
				topic := cr.sorted[cr.cursor]
				if !cr.cyclic[topic.ID] && !prereqsMet(topic, active, scheduledPrior, scheduledToday) {
					continue
				}
				alloc := cr.remaining[cr.cursor]
				if alloc > remainingHours {
					alloc = remainingHours
				}
				if alloc <= 0 {
					continue
				}

				items = append(items, ScheduledItem{
					Date:     day.Date,
					CourseID: cr.course.ID,
					TopicID:  topic.ID,
					Hours:    alloc,
					Order:    len(items),
				})
				cr.remaining[cr.cursor] -= alloc
				remainingHours -= alloc

				if cr.remaining[cr.cursor] <= doneThreshold {
					scheduledToday[topic.ID] = true
					cr.cursor++
					res.TopicsScheduled++
				}
				progressed = true
			}
			if !progressed {
				break
			}
		}

		for id := range scheduledToday {
			scheduledPrior[id] = true
		}

		total := 0.0
		for _, it := range items {
			total += it.Hours
		}
		res.Days = append(res.Days, PlanDay{Date: day.Date, TotalHours: total})
		if len(items) > 0 {
			res.Items = append(res.Items, items...)
			res.LastStudyDate = day.Date
		}
	}
	return res
}

// candidateRuns returns courses that still have unscheduled topics
// and whose exam (if any) is strictly after the given date, ordered
// by ascending days-to-exam with exam-less courses last.
func candidateRuns(runs []*courseRun, date time.Time) []*courseRun {
	var out []*courseRun
	for _, cr := range runs {
		if cr.exhausted() {
			continue
		}
		if cr.course.ExamDate != nil && !dateOnly(*cr.course.ExamDate).After(date) {
			continue
		}
		out = append(out, cr)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].course.ExamDate, out[j].course.ExamDate
		switch {
		case ei == nil:
			return false
		case ej == nil:
			return true
		default:
			return daysBetween(date, *ei) < daysBetween(date, *ej)
		}
	})
	return out
}

// prereqsMet reports whether every prerequisite of the topic is
// satisfied: fully scheduled on an earlier day, completed earlier
// today, or not among the active topics (done or deleted).
func prereqsMet(t Topic, active, scheduledPrior, scheduledToday map[string]bool) bool {
	for _, p := range t.Prerequisites {
		if p == t.ID || !active[p] {
			continue
		}
		if !scheduledPrior[p] && !scheduledToday[p] {
			return false
		}
	}
	return true
}
