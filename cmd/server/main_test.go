package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/studyflowhq/studyflow/internal/planner"
)

// fixedSource serves one snapshot for every student.
type fixedSource struct {
	snap *planner.Snapshot
}

func (s *fixedSource) Snapshot(ctx context.Context, studentID string) (*planner.Snapshot, error) {
	snap := *s.snap
	snap.StudentID = studentID
	return &snap, nil
}

func testApp() *app {
	exam := time.Now().UTC().AddDate(0, 0, 10)
	snap := &planner.Snapshot{
		Courses: []planner.Course{
			{
				ID:       "algebra",
				Title:    "Algebra I",
				ExamDate: &exam,
				Topics: []planner.Topic{
					{ID: "linear-eq", EstimatedHours: 2, OrderIndex: 1},
					{ID: "quadratics", EstimatedHours: 2, Prerequisites: []string{"linear-eq"}, OrderIndex: 2},
				},
			},
		},
		Prefs: planner.Preferences{DailyHours: 2},
	}
	return &app{
		service: planner.NewService(planner.ServiceConfig{
			Snapshots: &fixedSource{snap: snap},
			Store:     planner.NewMemoryStore(),
		}),
	}
}

func TestHealthEndpoints(t *testing.T) {
	mux := newMux(testApp())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGeneratePlan(t *testing.T) {
	mux := newMux(testApp())

	req := httptest.NewRequest(http.MethodPost, "/v1/students/s1/plan", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var plan planner.Plan
	if err := json.NewDecoder(rec.Body).Decode(&plan); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if plan.StudentID != "s1" {
		t.Errorf("StudentID = %q, want s1", plan.StudentID)
	}
	if plan.Status != planner.StatusPlanned {
		t.Errorf("Status = %q, want %q", plan.Status, planner.StatusPlanned)
	}
	if len(plan.Items) == 0 {
		t.Error("expected scheduled items")
	}
}

func TestGeneratePlan_BadMode(t *testing.T) {
	mux := newMux(testApp())

	req := httptest.NewRequest(http.MethodPost, "/v1/students/s1/plan?mode=weekly", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetPlan(t *testing.T) {
	mux := newMux(testApp())

	// No plan generated yet.
	req := httptest.NewRequest(http.MethodGet, "/v1/students/s1/plan", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before generation", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/students/s1/plan", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/students/s1/plan", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after generation", rec.Code)
	}

	var plan planner.Plan
	if err := json.NewDecoder(rec.Body).Decode(&plan); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if plan.StudentID != "s1" {
		t.Errorf("StudentID = %q, want s1", plan.StudentID)
	}
}

func TestPreview(t *testing.T) {
	mux := newMux(testApp())

	exam := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	body := fmt.Sprintf(`{
		"student_id": "s9",
		"preferences": {"daily_hours": 2},
		"courses": [
			{
				"id": "bio",
				"title": "Biology",
				"exam_date": %q,
				"topics": [
					{"id": "cells", "estimated_hours": 1, "order_index": 1}
				]
			}
		]
	}`, exam)

	req := httptest.NewRequest(http.MethodPost, "/v1/plan/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var plan planner.Plan
	if err := json.NewDecoder(rec.Body).Decode(&plan); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if plan.Status != planner.StatusPlanned {
		t.Errorf("Status = %q, want %q", plan.Status, planner.StatusPlanned)
	}
}

func TestPreview_InvalidSnapshot(t *testing.T) {
	mux := newMux(testApp())

	req := httptest.NewRequest(http.MethodPost, "/v1/plan/preview", strings.NewReader(`{"courses": []}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}
}
