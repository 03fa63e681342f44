package planner

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Engine turns a snapshot of courses, topics, and preferences into a
// day-by-day study plan. It is a deterministic pure function of
// (snapshot, today); identical inputs yield identical plans.
type Engine struct {
	weights    ScoreWeights
	dailyHours float64
}

// EngineConfig configures an Engine. Zero values produce defaults.
type EngineConfig struct {
	Weights ScoreWeights
	// DefaultDailyHours applies when the snapshot's preferences carry
	// no daily budget.
	DefaultDailyHours float64
}

// NewEngine creates an Engine from the given config.
func NewEngine(cfg EngineConfig) *Engine {
	dailyHours := cfg.DefaultDailyHours
	if dailyHours == 0 {
		dailyHours = DefaultDailyHours
	}
	return &Engine{weights: cfg.Weights.withDefaults(), dailyHours: dailyHours}
}

// Generate produces a plan for the snapshot as of today. Empty
// snapshots are terminal successes (StatusNothingToPlan or
// StatusAllComplete); structural anomalies and time shortage degrade
// gracefully into diagnostics. Only a malformed snapshot returns an
// error, and then no plan at all.
func (e *Engine) Generate(snap *Snapshot, today time.Time) (*Plan, error) {
	if snap == nil {
		return nil, &InputError{Field: "snapshot", Reason: "is nil"}
	}
	courses, prefs, err := normalize(snap, e.dailyHours)
	if err != nil {
		return nil, err
	}

	today = dateOnly(today)
	mode := snap.Mode
	if mode == "" {
		mode = ModeFull
	}

	plan := &Plan{
		ID:          uuid.NewString(),
		StudentID:   snap.StudentID,
		Mode:        mode,
		GeneratedAt: today,
	}

	if len(snap.Courses) == 0 {
		plan.Status = StatusNothingToPlan
		return plan, nil
	}
	if !hasActiveTopics(courses) {
		plan.Status = StatusAllComplete
		return plan, nil
	}
	plan.Status = StatusPlanned

	// Per-course topological order; cycles are tolerated, flagged,
	// never fatal.
	cycles := false
	runs := make([]*courseRun, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		if len(c.Topics) == 0 {
			continue
		}
		sorted, cyclic := sortTopics(c.Topics)
		if len(cyclic) > 0 {
			cycles = true
			slog.Warn("cyclic prerequisites, falling back to insertion order",
				"course_id", c.ID, "topics", len(cyclic))
		}
		runs = append(runs, &courseRun{
			course:    c,
			sorted:    sorted,
			remaining: make([]float64, len(sorted)),
			cyclic:    cyclic,
		})
	}

	// Process courses in descending priority, course id as tie-break
	// to keep runs deterministic.
	scores := make(map[string]float64, len(runs))
	for _, cr := range runs {
		scores[cr.course.ID] = e.weights.coursePriority(*cr.course, today)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		pi, pj := scores[runs[i].course.ID], scores[runs[j].course.ID]
		if pi != pj {
			return pi > pj
		}
		return runs[i].course.ID < runs[j].course.ID
	})

	daysOff, err := parseDaysOff(prefs.DaysOff)
	if err != nil {
		return nil, err
	}
	grid := resolveHorizon(coursesOf(runs), today, daysOff)
	feas := analyzeFeasibility(coursesOf(runs), grid, prefs.DailyHours)
	sched := runSchedule(runs, grid, prefs.DailyHours, feas.Compressed)

	plan.HorizonDays = len(grid.Days)
	plan.Days = sched.Days
	plan.Items = sched.Items
	plan.Diagnostics = e.emit(runs, sched, feas, today, cycles)
	return plan, nil
}

// emit packages diagnostics. Pure formatting; no failure path.
func (e *Engine) emit(runs []*courseRun, sched scheduleResult, feas feasibility, today time.Time, cycles bool) Diagnostics {
	d := Diagnostics{
		CoverageRatio:   feas.CoverageRatio,
		RequiredHours:   feas.RequiredHours,
		AvailableHours:  feas.AvailableHours,
		PriorityMode:    feas.PriorityMode,
		CyclesDetected:  cycles,
		TopicsScheduled: sched.TopicsScheduled,
		Intensity:       intensity(feas),
	}

	for _, cr := range runs {
		daysLeft := -1
		if cr.course.ExamDate != nil {
			daysLeft = daysBetween(today, *cr.course.ExamDate)
		} else {
			d.CoursesNoExam = append(d.CoursesNoExam, cr.course.ID)
		}
		d.Courses = append(d.Courses, CourseSummary{
			CourseID:        cr.course.ID,
			Title:           cr.course.Title,
			DaysLeft:        daysLeft,
			RemainingTopics: len(cr.sorted),
			TopicsScheduled: cr.cursor,
			Urgency:         urgencyTier(daysLeft),
		})
		d.TopicsTotal += len(cr.sorted)
	}

	if d.PriorityMode {
		pct := int(feas.CoverageRatio * 100)
		d.Warnings = append(d.Warnings,
			fmt.Sprintf("available time covers only %d%% of the estimated effort; topic time was compressed", pct))
		d.Suggestions = append(d.Suggestions, "extend daily study hours or reduce course load")
	}
	if cycles {
		d.Warnings = append(d.Warnings, "some topics have circular prerequisites and were ordered by position")
		d.Suggestions = append(d.Suggestions, "review prerequisites for circular references")
	}
	if len(d.CoursesNoExam) > 0 {
		d.Suggestions = append(d.Suggestions, "set exam dates so scheduling can prioritize deadlines")
	}
	if unscheduled := d.TopicsTotal - d.TopicsScheduled; unscheduled > 0 {
		d.Warnings = append(d.Warnings,
			fmt.Sprintf("%d topics did not fit before their deadlines", unscheduled))
	}

	if d.TopicsScheduled == d.TopicsTotal && !sched.LastStudyDate.IsZero() {
		done := sched.LastStudyDate
		d.EstimatedCompletion = &done
	}
	return d
}

// intensity classifies required effort against the available daily
// budget across the horizon.
func intensity(feas feasibility) string {
	if feas.AvailableHours <= 0 {
		return "overloaded"
	}
	ratio := feas.RequiredHours / feas.AvailableHours
	switch {
	case ratio < 0.5:
		return "light"
	case ratio < 0.8:
		return "moderate"
	case ratio <= 1:
		return "heavy"
	default:
		return "overloaded"
	}
}

// normalize validates the snapshot, applies field defaults, and
// filters done topics. Validation failures are fatal to the run.
func normalize(snap *Snapshot, defaultDailyHours float64) ([]Course, Preferences, error) {
	prefs := snap.Prefs
	if prefs.DailyHours == 0 {
		prefs.DailyHours = defaultDailyHours
	}
	if prefs.DailyHours < 0 {
		return nil, prefs, &InputError{Field: "preferences.daily_hours", Reason: "must be positive"}
	}
	if prefs.DaysOff == nil {
		prefs.DaysOff = DeriveDaysOff(prefs.StudyDaysPerWeek)
	}

	seenCourse := make(map[string]bool)
	seenTopic := make(map[string]bool)
	courses := make([]Course, 0, len(snap.Courses))
	for _, c := range snap.Courses {
		if c.ID == "" {
			return nil, prefs, &InputError{Field: "courses.id", Reason: "is empty"}
		}
		if seenCourse[c.ID] {
			return nil, prefs, &InputError{Field: "courses.id", Reason: "duplicate " + c.ID}
		}
		seenCourse[c.ID] = true

		nc := c
		nc.Topics = make([]Topic, 0, len(c.Topics))
		for _, t := range c.Topics {
			if t.ID == "" {
				return nil, prefs, &InputError{Field: "topics.id", Reason: "is empty"}
			}
			if seenTopic[t.ID] {
				return nil, prefs, &InputError{Field: "topics.id", Reason: "duplicate " + t.ID}
			}
			seenTopic[t.ID] = true
			if t.Status == TopicDone {
				continue
			}
			if t.Difficulty == 0 {
				t.Difficulty = DefaultDifficulty
			}
			if t.Importance == 0 {
				t.Importance = DefaultImportance
			}
			if t.Difficulty < 1 || t.Difficulty > 5 {
				return nil, prefs, &InputError{Field: "topics.difficulty", Reason: "out of range for " + t.ID}
			}
			if t.Importance < 1 || t.Importance > 5 {
				return nil, prefs, &InputError{Field: "topics.importance", Reason: "out of range for " + t.ID}
			}
			if t.EstimatedHours == 0 {
				t.EstimatedHours = DefaultEstimatedHours
			}
			if t.EstimatedHours < 0 {
				return nil, prefs, &InputError{Field: "topics.estimated_hours", Reason: "must be positive for " + t.ID}
			}
			t.CourseID = c.ID
			nc.Topics = append(nc.Topics, t)
		}
		courses = append(courses, nc)
	}
	return courses, prefs, nil
}

func hasActiveTopics(courses []Course) bool {
	for _, c := range courses {
		if len(c.Topics) > 0 {
			return true
		}
	}
	return false
}

func coursesOf(runs []*courseRun) []Course {
	out := make([]Course, 0, len(runs))
	for _, cr := range runs {
		out = append(out, *cr.course)
	}
	return out
}
