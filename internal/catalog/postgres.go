package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyflowhq/studyflow/internal/planner"
)

const dbTimeout = 5 * time.Second

// PostgresSource reads a student's snapshot from the application
// database. The three reads happen inside one repeatable-read
// transaction so the planner sees a consistent view of courses,
// topics, and preferences.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a database-backed snapshot source.
func NewPostgresSource(pool *pgxpool.Pool) (*PostgresSource, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresSource{pool: pool}, nil
}

// Snapshot implements planner.SnapshotSource.
func (s *PostgresSource) Snapshot(ctx context.Context, studentID string) (*planner.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot read: %w", err)
	}
	defer tx.Rollback(ctx)

	snap := &planner.Snapshot{StudentID: studentID}

	if err := s.readPreferences(ctx, tx, studentID, snap); err != nil {
		return nil, err
	}
	if err := s.readCourses(ctx, tx, studentID, snap); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("finish snapshot read: %w", err)
	}
	return snap, nil
}

func (s *PostgresSource) readPreferences(ctx context.Context, tx pgx.Tx, studentID string, snap *planner.Snapshot) error {
	var daysOff []string
	var dailyHours float64
	var studyDays int
	err := tx.QueryRow(ctx,
		`SELECT daily_hours, days_off, study_days_per_week
		 FROM student_preferences
		 WHERE student_id = $1
		 LIMIT 1`,
		studentID,
	).Scan(&dailyHours, &daysOff, &studyDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil // engine defaults apply
	}
	if err != nil {
		return fmt.Errorf("read preferences: %w", err)
	}
	snap.Prefs = planner.Preferences{
		DailyHours:       dailyHours,
		DaysOff:          daysOff,
		StudyDaysPerWeek: studyDays,
	}
	return nil
}

func (s *PostgresSource) readCourses(ctx context.Context, tx pgx.Tx, studentID string, snap *planner.Snapshot) error {
	rows, err := tx.Query(ctx,
		`SELECT id, title, exam_date
		 FROM courses
		 WHERE student_id = $1 AND archived = FALSE
		 ORDER BY id`,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("read courses: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var c planner.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.ExamDate); err != nil {
			return fmt.Errorf("scan course: %w", err)
		}
		index[c.ID] = len(snap.Courses)
		snap.Courses = append(snap.Courses, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate courses: %w", err)
	}

	topicRows, err := tx.Query(ctx,
		`SELECT t.id, t.course_id, t.title, t.difficulty, t.importance,
		        t.estimated_hours, t.prerequisites, t.status, t.order_index
		 FROM topics t
		 JOIN courses c ON c.id = t.course_id
		 WHERE c.student_id = $1 AND c.archived = FALSE
		 ORDER BY t.course_id, t.order_index`,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("read topics: %w", err)
	}
	defer topicRows.Close()

	for topicRows.Next() {
		var t planner.Topic
		var status string
		if err := topicRows.Scan(&t.ID, &t.CourseID, &t.Title, &t.Difficulty, &t.Importance,
			&t.EstimatedHours, &t.Prerequisites, &status, &t.OrderIndex); err != nil {
			return fmt.Errorf("scan topic: %w", err)
		}
		t.Status = planner.TopicStatus(status)
		i, ok := index[t.CourseID]
		if !ok {
			continue
		}
		snap.Courses[i].Topics = append(snap.Courses[i].Topics, t)
	}
	if err := topicRows.Err(); err != nil {
		return fmt.Errorf("iterate topics: %w", err)
	}
	return nil
}
