package planner

import (
	"math"
	"time"
)

// ScoreWeights holds the priority-scoring constants. Zero values
// produce the defaults below; the weighting is part of the product's
// observed behavior, so change with care.
type ScoreWeights struct {
	Urgency    float64 `json:"urgency"`    // zero → 40
	Workload   float64 `json:"workload"`   // zero → 25
	Importance float64 `json:"importance"` // zero → 20
	Difficulty float64 `json:"difficulty"` // zero → 10
	Volume     float64 `json:"volume"`     // zero → 15

	UrgencySteepness float64 `json:"urgency_steepness"` // zero → 0.15
	UrgencyMidpoint  float64 `json:"urgency_midpoint"`  // zero → 10 days
	ReferenceHours   float64 `json:"reference_hours"`   // zero → 3 h/day
	VolumeCap        int     `json:"volume_cap"`        // zero → 15 topics
}

// DefaultScoreWeights is the tuned production weighting.
var DefaultScoreWeights = ScoreWeights{
	Urgency:          40,
	Workload:         25,
	Importance:       20,
	Difficulty:       10,
	Volume:           15,
	UrgencySteepness: 0.15,
	UrgencyMidpoint:  10,
	ReferenceHours:   3,
	VolumeCap:        15,
}

func (w ScoreWeights) withDefaults() ScoreWeights {
	d := DefaultScoreWeights
	if w.Urgency != 0 {
		d.Urgency = w.Urgency
	}
	if w.Workload != 0 {
		d.Workload = w.Workload
	}
	if w.Importance != 0 {
		d.Importance = w.Importance
	}
	if w.Difficulty != 0 {
		d.Difficulty = w.Difficulty
	}
	if w.Volume != 0 {
		d.Volume = w.Volume
	}
	if w.UrgencySteepness != 0 {
		d.UrgencySteepness = w.UrgencySteepness
	}
	if w.UrgencyMidpoint != 0 {
		d.UrgencyMidpoint = w.UrgencyMidpoint
	}
	if w.ReferenceHours != 0 {
		d.ReferenceHours = w.ReferenceHours
	}
	if w.VolumeCap != 0 {
		d.VolumeCap = w.VolumeCap
	}
	return d
}

// urgency is a logistic decay of days-until-exam: ≈0.5 at the
// midpoint, approaching 1 as the exam nears and 0 as it recedes.
// An exam today or in the past is maximally urgent.
func (w ScoreWeights) urgency(daysUntilExam int) float64 {
	if daysUntilExam <= 0 {
		return 1
	}
	d := float64(daysUntilExam)
	return 1 / (1 + math.Exp(w.UrgencySteepness*(d-w.UrgencyMidpoint)))
}

// coursePriority computes the course's scalar priority. Courses
// without an exam date score zero and sort to the end.
func (w ScoreWeights) coursePriority(c Course, today time.Time) float64 {
	if c.ExamDate == nil {
		return 0
	}
	days := daysBetween(today, *c.ExamDate)

	var totalHours, sumDifficulty, sumImportance float64
	for _, t := range c.Topics {
		totalHours += t.EstimatedHours
		sumDifficulty += float64(t.Difficulty)
		sumImportance += float64(t.Importance)
	}
	n := float64(len(c.Topics))
	if n == 0 {
		return 0
	}

	urgency := w.urgency(days)

	density := 0.0
	if days > 0 {
		density = math.Min(1, (totalHours/float64(days))/w.ReferenceHours)
	} else {
		density = 1
	}

	importance := (sumImportance/n - 1) / 4
	difficulty := (sumDifficulty/n - 3) * 0.1
	volume := math.Min(1, n/float64(w.VolumeCap))

	score := w.Urgency*urgency +
		w.Workload*density +
		w.Importance*importance +
		w.Difficulty*difficulty +
		w.Volume*volume
	return math.Max(0, score)
}

// urgencyTier buckets days-until-exam for diagnostics.
func urgencyTier(daysLeft int) string {
	switch {
	case daysLeft < 0:
		return "none"
	case daysLeft <= 3:
		return "critical"
	case daysLeft <= 7:
		return "high"
	case daysLeft <= 14:
		return "medium"
	default:
		return "low"
	}
}
