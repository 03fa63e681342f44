package planner

import (
	"math"
	"testing"
)

func TestAnalyzeFeasibility_SufficientTime(t *testing.T) {
	courses := []Course{{
		ID:       "c1",
		ExamDate: examIn(5),
		Topics: []Topic{
			{ID: "t1", EstimatedHours: 1},
			{ID: "t2", EstimatedHours: 1},
			{ID: "t3", EstimatedHours: 1},
		},
	}}
	grid := resolveHorizon(courses, testToday, nil)

	f := analyzeFeasibility(courses, grid, 2)
	if f.CoverageRatio != 1 {
		t.Errorf("CoverageRatio = %v, want 1", f.CoverageRatio)
	}
	if f.PriorityMode {
		t.Error("PriorityMode = true, want false")
	}
	// Only the 5 days before the exam are usable: 5 × 2h.
	if f.AvailableHours != 10 {
		t.Errorf("AvailableHours = %v, want 10", f.AvailableHours)
	}
	if f.RequiredHours != 3 {
		t.Errorf("RequiredHours = %v, want 3", f.RequiredHours)
	}
	for id, hours := range f.Compressed {
		if hours != 1 {
			t.Errorf("Compressed[%s] = %v, want uncompressed 1", id, hours)
		}
	}
}

func TestAnalyzeFeasibility_HalfCoverageCompresses(t *testing.T) {
	courses := []Course{{
		ID:       "c1",
		ExamDate: examIn(5),
		Topics: []Topic{
			{ID: "t1", EstimatedHours: 8},
			{ID: "t2", EstimatedHours: 8},
			{ID: "t3", EstimatedHours: 4},
		},
	}}
	grid := resolveHorizon(courses, testToday, nil)

	f := analyzeFeasibility(courses, grid, 2) // 10h available vs 20h required
	if math.Abs(f.CoverageRatio-0.5) > 1e-9 {
		t.Errorf("CoverageRatio = %v, want 0.5", f.CoverageRatio)
	}
	if !f.PriorityMode {
		t.Error("PriorityMode = false, want true")
	}
	for id, want := range map[string]float64{"t1": 4, "t2": 4, "t3": 2} {
		if got := f.Compressed[id]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Compressed[%s] = %v, want %v", id, got, want)
		}
	}
}

func TestAnalyzeFeasibility_CompressionFloor(t *testing.T) {
	topics := make([]Topic, 40)
	for i := range topics {
		topics[i] = Topic{ID: string(rune('a' + i)), EstimatedHours: 1}
	}
	courses := []Course{{ID: "c1", ExamDate: examIn(1), Topics: topics}}
	grid := resolveHorizon(courses, testToday, nil)

	f := analyzeFeasibility(courses, grid, 2) // 2h available vs 40h required
	if !f.PriorityMode {
		t.Fatal("PriorityMode = false, want true")
	}
	for id, hours := range f.Compressed {
		if hours < minTopicHours {
			t.Errorf("Compressed[%s] = %v, below floor %v", id, hours, minTopicHours)
		}
	}
}

func TestAnalyzeFeasibility_NoExamUsesWholeHorizon(t *testing.T) {
	courses := []Course{{
		ID:     "c1",
		Topics: []Topic{{ID: "t1", EstimatedHours: 3}},
	}}
	grid := resolveHorizon(courses, testToday, nil)

	f := analyzeFeasibility(courses, grid, 2)
	if f.AvailableHours != 60 { // 30-day horizon × 2h
		t.Errorf("AvailableHours = %v, want 60", f.AvailableHours)
	}
}

func TestAnalyzeFeasibility_DaysOffExcluded(t *testing.T) {
	courses := []Course{{
		ID:     "c1",
		Topics: []Topic{{ID: "t1", EstimatedHours: 3}},
	}}
	// Five days off per week leaves two study days.
	daysOff, err := parseDaysOff(DeriveDaysOff(2))
	if err != nil {
		t.Fatalf("parseDaysOff() error = %v", err)
	}
	grid := resolveHorizon(courses, testToday, daysOff)

	f := analyzeFeasibility(courses, grid, 2)
	want := float64(grid.StudyDays) * 2
	if f.AvailableHours != want {
		t.Errorf("AvailableHours = %v, want %v", f.AvailableHours, want)
	}
}
