package planner

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a student has no stored plan.
var ErrNotFound = errors.New("plan not found")

// PlanStore persists generated plans. SavePlan must replace the
// student's previous schedule atomically according to the plan's
// mode: ModeFull replaces everything, ModeRecreate replaces only days
// from the plan's generation date forward. Partial writes must fail
// the call so the caller can retry.
type PlanStore interface {
	SavePlan(ctx context.Context, plan *Plan) error
	GetLatestPlan(ctx context.Context, studentID string) (*Plan, error)
}

// MemoryStore is an in-memory PlanStore for tests and single-node
// development runs.
type MemoryStore struct {
	plans map[string]*Plan
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory plan store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]*Plan)}
}

func (s *MemoryStore) SavePlan(ctx context.Context, plan *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.plans[plan.StudentID]
	if !ok || plan.Mode == ModeFull {
		stored := *plan
		s.plans[plan.StudentID] = &stored
		return nil
	}

	// Recreate: keep the previous plan's days and items that fall
	// before the new plan's generation date.
	cutoff := dateOnly(plan.GeneratedAt)
	merged := *plan
	merged.Days = keepBefore(prev.Days, cutoff)
	merged.Days = append(merged.Days, plan.Days...)
	var items []ScheduledItem
	for _, it := range prev.Items {
		if it.Date.Before(cutoff) {
			items = append(items, it)
		}
	}
	merged.Items = append(items, plan.Items...)
	s.plans[plan.StudentID] = &merged
	return nil
}

func (s *MemoryStore) GetLatestPlan(ctx context.Context, studentID string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[studentID]
	if !ok {
		return nil, ErrNotFound
	}
	stored := *plan
	return &stored, nil
}

func keepBefore(days []PlanDay, cutoff time.Time) []PlanDay {
	var out []PlanDay
	for _, d := range days {
		if d.Date.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out
}
