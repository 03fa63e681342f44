package planner

import "time"

// TopicStatus is a topic's lifecycle state.
type TopicStatus string

const (
	TopicNotStarted TopicStatus = "not_started"
	TopicInProgress TopicStatus = "in_progress"
	TopicDone       TopicStatus = "done"
)

// Mode selects how a generated plan replaces the previous one.
type Mode string

const (
	// ModeFull replaces the student's entire schedule.
	ModeFull Mode = "full"
	// ModeRecreate replaces only days from today forward.
	ModeRecreate Mode = "recreate"
)

// Status classifies the outcome of a plan run. Empty inputs are
// terminal states, not errors.
type Status string

const (
	StatusPlanned       Status = "planned"
	StatusNothingToPlan Status = "nothing_to_plan"
	StatusAllComplete   Status = "all_complete"
)

// Topic is an atomic unit of study content within a course.
// Prerequisites may reference topics in the same course only;
// references to done or deleted topics are treated as satisfied.
type Topic struct {
	ID             string      `json:"id"`
	CourseID       string      `json:"course_id"`
	Title          string      `json:"title"`
	Difficulty     int         `json:"difficulty"`      // 1..5, 0 means unset (defaults to 3)
	Importance     int         `json:"importance"`      // 1..5, 0 means unset (defaults to 3)
	EstimatedHours float64     `json:"estimated_hours"` // 0 means unset (defaults to 1.5)
	Prerequisites  []string    `json:"prerequisites,omitempty"`
	Status         TopicStatus `json:"status"`
	OrderIndex     int         `json:"order_index"` // stable tie-break order
}

// Course groups topics under an optional exam deadline. A nil
// ExamDate means no deadline pressure; the course is planned within
// the default horizon.
type Course struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	ExamDate *time.Time `json:"exam_date,omitempty"`
	Topics   []Topic    `json:"topics"`
}

// Preferences holds the student's study-time settings.
type Preferences struct {
	DailyHours float64 `json:"daily_hours"` // 0 means unset (defaults to 3)
	// DaysOff lists lowercase weekday names ("saturday"). Nil means
	// unset; the default is derived from StudyDaysPerWeek.
	DaysOff          []string `json:"days_off,omitempty"`
	StudyDaysPerWeek int      `json:"study_days_per_week,omitempty"`
}

// Snapshot is the engine's full input: the student's active courses
// and preferences as read at invocation time. The engine is a pure
// function of (Snapshot, today).
type Snapshot struct {
	StudentID string      `json:"student_id"`
	Courses   []Course    `json:"courses"`
	Prefs     Preferences `json:"preferences"`
	Mode      Mode        `json:"mode,omitempty"`
}

// ScheduledItem assigns hours of a topic to a calendar date. Hours
// may be less than the topic's total when the topic is split across
// days.
type ScheduledItem struct {
	Date     time.Time `json:"date"`
	CourseID string    `json:"course_id"`
	TopicID  string    `json:"topic_id"`
	Hours    float64   `json:"hours"`
	Order    int       `json:"order"` // position within the day
	Review   bool      `json:"review"`
}

// PlanDay summarizes one calendar day of the horizon.
type PlanDay struct {
	Date       time.Time `json:"date"`
	TotalHours float64   `json:"total_hours"`
	DayOff     bool      `json:"day_off"`
}

// CourseSummary is the per-course diagnostic block.
type CourseSummary struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	// DaysLeft is days until the exam; -1 when the course has none.
	DaysLeft int `json:"days_left"`
	// RemainingTopics counts the course's active topics at
	// invocation time, before any scheduling.
	RemainingTopics int    `json:"remaining_topics"`
	TopicsScheduled int    `json:"topics_scheduled"`
	Urgency         string `json:"urgency"` // critical/high/medium/low/none
}

// Diagnostics reports how the run went. All conditions here are
// non-fatal; the engine degrades rather than refusing to plan.
type Diagnostics struct {
	CoverageRatio   float64         `json:"coverage_ratio"`
	RequiredHours   float64         `json:"required_hours"`
	AvailableHours  float64         `json:"available_hours"`
	PriorityMode    bool            `json:"priority_mode"`
	CyclesDetected  bool            `json:"cycles_detected"`
	CoursesNoExam   []string        `json:"courses_without_exam,omitempty"`
	Courses         []CourseSummary `json:"courses"`
	TopicsScheduled int             `json:"topics_scheduled"`
	TopicsTotal     int             `json:"topics_total"`
	Intensity       string          `json:"intensity"` // light/moderate/heavy/overloaded
	Suggestions     []string        `json:"suggestions,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	// EstimatedCompletion is set only when every topic was fully
	// scheduled within the horizon.
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

// Plan is the engine's output contract.
type Plan struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"student_id"`
	Mode        Mode            `json:"mode"`
	Status      Status          `json:"status"`
	GeneratedAt time.Time       `json:"generated_at"`
	HorizonDays int             `json:"horizon_days"`
	Days        []PlanDay       `json:"days"`
	Items       []ScheduledItem `json:"items"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}

// InputError reports a malformed snapshot. It is fatal to the run:
// no partial schedule is produced.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return "invalid snapshot: " + e.Field + ": " + e.Reason
}

// Defaults applied to unset snapshot fields.
const (
	DefaultDifficulty     = 3
	DefaultImportance     = 3
	DefaultEstimatedHours = 1.5
	DefaultDailyHours     = 3.0
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DeriveDaysOff returns the default days-off set for a
// study-days-per-week preference. Weekends are dropped first, then
// midweek days in a fixed order, so the result is deterministic.
func DeriveDaysOff(studyDaysPerWeek int) []string {
	if studyDaysPerWeek <= 0 || studyDaysPerWeek >= 7 {
		return []string{}
	}
	dropOrder := []string{"sunday", "saturday", "friday", "wednesday", "monday", "tuesday"}
	return dropOrder[:7-studyDaysPerWeek]
}
