package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studyflowhq/studyflow/internal/planner"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestLoader_Snapshot(t *testing.T) {
	dir := t.TempDir()

	writeFixture(t, dir, "algebra.yaml", `
id: algebra
title: Algebra I
exam_date: "2026-06-15"
topics:
  - id: linear-eq
    title: Linear Equations
    difficulty: 2
    importance: 4
    estimated_hours: 3
    order_index: 1
  - id: quadratics
    title: Quadratics
    difficulty: 3
    importance: 5
    estimated_hours: 4
    prerequisites: [linear-eq]
    status: in_progress
    order_index: 2
`)
	writeFixture(t, dir, "chemistry.yaml", `
id: chemistry
title: Chemistry
topics:
  - id: atoms
    title: Atoms
    order_index: 1
`)
	writeFixture(t, dir, "preferences.yaml", `
daily_hours: 2.5
days_off: [sunday]
study_days_per_week: 6
`)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	snap, err := loader.Snapshot(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if snap.StudentID != "s1" {
		t.Errorf("StudentID = %q, want s1", snap.StudentID)
	}
	if len(snap.Courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(snap.Courses))
	}
	// Courses are sorted by ID.
	if snap.Courses[0].ID != "algebra" || snap.Courses[1].ID != "chemistry" {
		t.Errorf("course order = %q, %q", snap.Courses[0].ID, snap.Courses[1].ID)
	}

	algebra := snap.Courses[0]
	if algebra.ExamDate == nil {
		t.Fatal("algebra.ExamDate is nil")
	}
	wantExam := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if !algebra.ExamDate.Equal(wantExam) {
		t.Errorf("ExamDate = %v, want %v", algebra.ExamDate, wantExam)
	}
	if len(algebra.Topics) != 2 {
		t.Fatalf("got %d algebra topics, want 2", len(algebra.Topics))
	}
	if algebra.Topics[0].Status != planner.TopicNotStarted {
		t.Errorf("default status = %q, want %q", algebra.Topics[0].Status, planner.TopicNotStarted)
	}
	if algebra.Topics[1].Status != planner.TopicInProgress {
		t.Errorf("status = %q, want %q", algebra.Topics[1].Status, planner.TopicInProgress)
	}
	if algebra.Topics[1].CourseID != "algebra" {
		t.Errorf("CourseID = %q, want algebra", algebra.Topics[1].CourseID)
	}

	if snap.Courses[1].ExamDate != nil {
		t.Error("chemistry should have no exam date")
	}

	if snap.Prefs.DailyHours != 2.5 {
		t.Errorf("Prefs.DailyHours = %v, want 2.5", snap.Prefs.DailyHours)
	}
	if len(snap.Prefs.DaysOff) != 1 || snap.Prefs.DaysOff[0] != "sunday" {
		t.Errorf("Prefs.DaysOff = %v, want [sunday]", snap.Prefs.DaysOff)
	}
}

func TestLoader_SkipsInvalidYAML(t *testing.T) {
	dir := t.TempDir()

	writeFixture(t, dir, "broken.yaml", "{{not yaml")
	writeFixture(t, dir, "notes.yaml", "just: a scalar map without an id\n")
	writeFixture(t, dir, "valid.yaml", `
id: physics
title: Physics
topics:
  - id: mechanics
    order_index: 1
`)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	courses := loader.Courses()
	if len(courses) != 1 {
		t.Fatalf("got %d courses, want 1", len(courses))
	}
	if courses[0].ID != "physics" {
		t.Errorf("course = %q, want physics", courses[0].ID)
	}
}

func TestLoader_BadExamDate(t *testing.T) {
	dir := t.TempDir()

	writeFixture(t, dir, "course.yaml", `
id: history
exam_date: "15/06/2026"
`)

	if _, err := NewLoader(dir); err == nil {
		t.Fatal("NewLoader() should reject malformed exam_date")
	}
}

func TestLoader_FeedsEngine(t *testing.T) {
	dir := t.TempDir()

	writeFixture(t, dir, "biology.yaml", `
id: biology
title: Biology
exam_date: "2026-03-10"
topics:
  - id: cells
    estimated_hours: 1
    order_index: 1
  - id: genetics
    estimated_hours: 1
    prerequisites: [cells]
    order_index: 2
`)
	writeFixture(t, dir, "preferences.yaml", "daily_hours: 2\n")

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	snap, err := loader.Snapshot(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan, err := planner.NewEngine(planner.EngineConfig{}).Generate(snap, today)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if plan.Status != planner.StatusPlanned {
		t.Errorf("Status = %q, want %q", plan.Status, planner.StatusPlanned)
	}
	if len(plan.Items) == 0 {
		t.Error("expected scheduled items")
	}
}
