package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrLocked is returned when a plan run is already in flight for the
// student.
var ErrLocked = errors.New("plan generation already in progress")

// SnapshotSource reads a student's active courses, topics, and
// preferences as one consistent snapshot.
type SnapshotSource interface {
	Snapshot(ctx context.Context, studentID string) (*Snapshot, error)
}

// RunLock guards against two concurrent plan runs for one student
// racing to persist conflicting schedules. Acquire returns a release
// func when the lock was taken, or acquired=false when another run
// holds it.
type RunLock interface {
	Acquire(ctx context.Context, studentID string) (release func(context.Context), acquired bool, err error)
}

// noopLock is used when no distributed lock is configured
// (single-process deployments).
type noopLock struct{}

func (noopLock) Acquire(ctx context.Context, studentID string) (func(context.Context), bool, error) {
	return func(context.Context) {}, true, nil
}

// ServiceConfig holds dependencies for the plan service.
type ServiceConfig struct {
	Engine    *Engine
	Snapshots SnapshotSource
	Store     PlanStore
	Lock      RunLock
}

// Service runs the full read-snapshot → compute → persist sequence.
// The sequence is effectively transactional for the student: the
// store replaces the previous schedule atomically, and a failed
// persist returns an error without releasing a half-written plan.
type Service struct {
	engine    *Engine
	snapshots SnapshotSource
	store     PlanStore
	lock      RunLock
}

// NewService creates a plan service. Engine, Store, and Lock default
// to a default-weight engine, an in-memory store, and a no-op lock.
func NewService(cfg ServiceConfig) *Service {
	engine := cfg.Engine
	if engine == nil {
		engine = NewEngine(EngineConfig{})
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	lock := cfg.Lock
	if lock == nil {
		lock = noopLock{}
	}
	return &Service{
		engine:    engine,
		snapshots: cfg.Snapshots,
		store:     store,
		lock:      lock,
	}
}

// GeneratePlan computes and persists a plan for the student. At most
// one run per student proceeds at a time; a concurrent second call
// fails with ErrLocked.
func (s *Service) GeneratePlan(ctx context.Context, studentID string, mode Mode) (*Plan, error) {
	if studentID == "" {
		return nil, &InputError{Field: "student_id", Reason: "is empty"}
	}
	if s.snapshots == nil {
		return nil, fmt.Errorf("no snapshot source configured")
	}

	release, acquired, err := s.lock.Acquire(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("acquiring plan lock: %w", err)
	}
	if !acquired {
		return nil, ErrLocked
	}
	defer release(ctx)

	snap, err := s.snapshots.Snapshot(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	snap.Mode = mode

	plan, err := s.engine.Generate(snap, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if plan.Status == StatusPlanned {
		if err := s.store.SavePlan(ctx, plan); err != nil {
			return nil, fmt.Errorf("persisting plan: %w", err)
		}
	}

	slog.Info("plan generated",
		"student_id", studentID,
		"status", plan.Status,
		"mode", plan.Mode,
		"horizon_days", plan.HorizonDays,
		"items", len(plan.Items),
		"coverage", plan.Diagnostics.CoverageRatio,
	)
	return plan, nil
}

// LatestPlan returns the student's most recently persisted plan.
func (s *Service) LatestPlan(ctx context.Context, studentID string) (*Plan, error) {
	return s.store.GetLatestPlan(ctx, studentID)
}

// Preview validates an inline snapshot and computes a plan without
// persisting or locking anything.
func (s *Service) Preview(ctx context.Context, raw []byte) (*Plan, error) {
	snap, err := ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return s.engine.Generate(snap, time.Now().UTC())
}
