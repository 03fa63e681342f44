package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed PlanStore. Schedule rows are
// keyed by student so a recreate run can keep past days while
// replacing the future; the whole replacement happens in one
// transaction, so a failed write leaves the previous schedule intact.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed plan store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SavePlan(ctx context.Context, plan *Plan) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if plan.StudentID == "" {
		return fmt.Errorf("student_id is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save plan: %w", err)
	}
	defer tx.Rollback(ctx)

	cutoff := dateOnly(plan.GeneratedAt)
	if plan.Mode == ModeRecreate {
		if _, err := tx.Exec(ctx,
			`DELETE FROM plan_days WHERE student_id = $1 AND date >= $2`,
			plan.StudentID, cutoff,
		); err != nil {
			return fmt.Errorf("clear plan days: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM plan_items WHERE student_id = $1 AND date >= $2`,
			plan.StudentID, cutoff,
		); err != nil {
			return fmt.Errorf("clear plan items: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`DELETE FROM plan_days WHERE student_id = $1`, plan.StudentID,
		); err != nil {
			return fmt.Errorf("clear plan days: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM plan_items WHERE student_id = $1`, plan.StudentID,
		); err != nil {
			return fmt.Errorf("clear plan items: %w", err)
		}
	}

	diagnostics, err := json.Marshal(plan.Diagnostics)
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO study_plans (id, student_id, mode, status, generated_at, horizon_days, diagnostics)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		plan.ID, plan.StudentID, string(plan.Mode), string(plan.Status),
		plan.GeneratedAt, plan.HorizonDays, diagnostics,
	); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range plan.Days {
		batch.Queue(
			`INSERT INTO plan_days (student_id, plan_id, date, total_hours, day_off)
			 VALUES ($1, $2::uuid, $3, $4, $5)`,
			plan.StudentID, plan.ID, d.Date, d.TotalHours, d.DayOff,
		)
	}
	for _, it := range plan.Items {
		batch.Queue(
			`INSERT INTO plan_items (student_id, plan_id, date, course_id, topic_id, hours, item_order, review)
			 VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8)`,
			plan.StudentID, plan.ID, it.Date, it.CourseID, it.TopicID, it.Hours, it.Order, it.Review,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert schedule rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLatestPlan(ctx context.Context, studentID string) (*Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	plan := &Plan{StudentID: studentID}
	var mode, status string
	var diagnostics []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, mode, status, generated_at, horizon_days, diagnostics
		 FROM study_plans
		 WHERE student_id = $1
		 ORDER BY generated_at DESC, id DESC
		 LIMIT 1`,
		studentID,
	).Scan(&plan.ID, &mode, &status, &plan.GeneratedAt, &plan.HorizonDays, &diagnostics)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	plan.Mode = Mode(mode)
	plan.Status = Status(status)
	if err := json.Unmarshal(diagnostics, &plan.Diagnostics); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT date, total_hours, day_off
		 FROM plan_days WHERE student_id = $1 ORDER BY date`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("load plan days: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d PlanDay
		if err := rows.Scan(&d.Date, &d.TotalHours, &d.DayOff); err != nil {
			return nil, fmt.Errorf("scan plan day: %w", err)
		}
		plan.Days = append(plan.Days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan days: %w", err)
	}

	itemRows, err := s.pool.Query(ctx,
		`SELECT date, course_id, topic_id, hours, item_order, review
		 FROM plan_items WHERE student_id = $1 ORDER BY date, item_order`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("load plan items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it ScheduledItem
		if err := itemRows.Scan(&it.Date, &it.CourseID, &it.TopicID, &it.Hours, &it.Order, &it.Review); err != nil {
			return nil, fmt.Errorf("scan plan item: %w", err)
		}
		plan.Items = append(plan.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan items: %w", err)
	}

	return plan, nil
}
