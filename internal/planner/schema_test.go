package planner_test

import (
	"errors"
	"testing"
	"time"

	"github.com/studyflowhq/studyflow/internal/planner"
)

const validSnapshotJSON = `{
	"student_id": "s1",
	"mode": "recreate",
	"preferences": {
		"daily_hours": 2.5,
		"days_off": ["saturday", "sunday"]
	},
	"courses": [
		{
			"id": "math",
			"title": "Mathematics",
			"exam_date": "2026-03-20",
			"topics": [
				{"id": "t1", "title": "Limits", "difficulty": 4, "importance": 5, "estimated_hours": 2, "order_index": 0},
				{"id": "t2", "title": "Derivatives", "prerequisites": ["t1"], "status": "in_progress", "order_index": 1}
			]
		}
	]
}`

func TestParseSnapshot(t *testing.T) {
	snap, err := planner.ParseSnapshot([]byte(validSnapshotJSON))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}

	if snap.StudentID != "s1" {
		t.Errorf("StudentID = %q, want s1", snap.StudentID)
	}
	if snap.Mode != planner.ModeRecreate {
		t.Errorf("Mode = %q, want recreate", snap.Mode)
	}
	if snap.Prefs.DailyHours != 2.5 {
		t.Errorf("DailyHours = %v, want 2.5", snap.Prefs.DailyHours)
	}
	if len(snap.Courses) != 1 {
		t.Fatalf("got %d courses, want 1", len(snap.Courses))
	}

	course := snap.Courses[0]
	wantExam := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	if course.ExamDate == nil || !course.ExamDate.Equal(wantExam) {
		t.Errorf("ExamDate = %v, want %v", course.ExamDate, wantExam)
	}
	if len(course.Topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(course.Topics))
	}
	if course.Topics[0].Status != planner.TopicNotStarted {
		t.Errorf("unset status = %q, want %q", course.Topics[0].Status, planner.TopicNotStarted)
	}
	if course.Topics[1].Status != planner.TopicInProgress {
		t.Errorf("status = %q, want %q", course.Topics[1].Status, planner.TopicInProgress)
	}
	if course.Topics[1].CourseID != "math" {
		t.Errorf("topic CourseID = %q, want math", course.Topics[1].CourseID)
	}
}

func TestParseSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"missing student_id", `{"courses": []}`},
		{"missing courses", `{"student_id": "s1"}`},
		{"bad mode", `{"student_id": "s1", "mode": "partial", "courses": []}`},
		{"difficulty out of range", `{"student_id": "s1", "courses": [
			{"id": "c", "topics": [{"id": "t", "difficulty": 9}]}
		]}`},
		{"bad exam date format", `{"student_id": "s1", "courses": [
			{"id": "c", "exam_date": "20/03/2026", "topics": []}
		]}`},
		{"negative hours", `{"student_id": "s1", "courses": [
			{"id": "c", "topics": [{"id": "t", "estimated_hours": -2}]}
		]}`},
		{"topic without id", `{"student_id": "s1", "courses": [
			{"id": "c", "topics": [{"title": "anonymous"}]}
		]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planner.ParseSnapshot([]byte(tt.json))
			var inputErr *planner.InputError
			if !errors.As(err, &inputErr) {
				t.Errorf("ParseSnapshot() error = %v, want *InputError", err)
			}
		})
	}
}

func TestParseSnapshot_FeedsGenerate(t *testing.T) {
	snap, err := planner.ParseSnapshot([]byte(validSnapshotJSON))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}

	engine := planner.NewEngine(planner.EngineConfig{})
	plan, err := engine.Generate(snap, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if plan.Status != planner.StatusPlanned {
		t.Errorf("Status = %q, want %q", plan.Status, planner.StatusPlanned)
	}
}
