// Package database provides PostgreSQL connection management via pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// New creates a new database connection pool.
func New(ctx context.Context, url string, maxConns, minConns int) (*DB, error) {
	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = int32(minConns)
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// schema is applied at startup. Schedule rows are keyed by student so
// a recreate run can replace only days from today forward.
const schema = `
CREATE TABLE IF NOT EXISTS student_preferences (
	student_id          TEXT PRIMARY KEY,
	daily_hours         DOUBLE PRECISION NOT NULL,
	days_off            TEXT[] NOT NULL DEFAULT '{}',
	study_days_per_week INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS courses (
	id         TEXT PRIMARY KEY,
	student_id TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	exam_date  TIMESTAMPTZ,
	archived   BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS courses_student_idx ON courses (student_id);

CREATE TABLE IF NOT EXISTS topics (
	id              TEXT PRIMARY KEY,
	course_id       TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
	title           TEXT NOT NULL DEFAULT '',
	difficulty      INT NOT NULL DEFAULT 3,
	importance      INT NOT NULL DEFAULT 3,
	estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 1.5,
	prerequisites   TEXT[] NOT NULL DEFAULT '{}',
	status          TEXT NOT NULL DEFAULT 'not_started',
	order_index     INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS topics_course_idx ON topics (course_id, order_index);

CREATE TABLE IF NOT EXISTS study_plans (
	id           UUID PRIMARY KEY,
	student_id   TEXT NOT NULL,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	horizon_days INT NOT NULL,
	diagnostics  JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS study_plans_student_idx ON study_plans (student_id, generated_at DESC);

CREATE TABLE IF NOT EXISTS plan_days (
	student_id  TEXT NOT NULL,
	plan_id     UUID NOT NULL REFERENCES study_plans (id) ON DELETE CASCADE,
	date        TIMESTAMPTZ NOT NULL,
	total_hours DOUBLE PRECISION NOT NULL,
	day_off     BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS plan_days_student_date_idx ON plan_days (student_id, date);

CREATE TABLE IF NOT EXISTS plan_items (
	student_id TEXT NOT NULL,
	plan_id    UUID NOT NULL REFERENCES study_plans (id) ON DELETE CASCADE,
	date       TIMESTAMPTZ NOT NULL,
	course_id  TEXT NOT NULL,
	topic_id   TEXT NOT NULL,
	hours      DOUBLE PRECISION NOT NULL,
	item_order INT NOT NULL,
	review     BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS plan_items_student_date_idx ON plan_items (student_id, date);
`

// Migrate creates the catalog and plan tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
