// Package catalog supplies course/topic/preference snapshots to the
// planner, either from PostgreSQL or from YAML fixtures on disk.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/studyflowhq/studyflow/internal/planner"
)

// courseDoc is the YAML shape of a course fixture file.
type courseDoc struct {
	ID       string     `yaml:"id"`
	Title    string     `yaml:"title"`
	ExamDate string     `yaml:"exam_date"`
	Topics   []topicDoc `yaml:"topics"`
}

type topicDoc struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Difficulty     int      `yaml:"difficulty"`
	Importance     int      `yaml:"importance"`
	EstimatedHours float64  `yaml:"estimated_hours"`
	Prerequisites  []string `yaml:"prerequisites"`
	Status         string   `yaml:"status"`
	OrderIndex     int      `yaml:"order_index"`
}

// prefsDoc is the YAML shape of the preferences fixture.
type prefsDoc struct {
	DailyHours       float64  `yaml:"daily_hours"`
	DaysOff          []string `yaml:"days_off"`
	StudyDaysPerWeek int      `yaml:"study_days_per_week"`
}

// Loader loads and caches snapshot fixtures from the filesystem.
// Used in development and tests where no database is available.
type Loader struct {
	rootDir string
	courses map[string]planner.Course
	prefs   planner.Preferences
	mu      sync.RWMutex
}

// NewLoader creates a fixture loader and loads all content under
// rootDir. Course files are any *.yaml except preferences.yaml.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		courses: make(map[string]planner.Course),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}

	slog.Info("catalog fixtures loaded", "courses", len(l.courses))
	return l, nil
}

// Snapshot implements planner.SnapshotSource. Fixtures are not
// per-student; every student sees the same catalog.
func (l *Loader) Snapshot(ctx context.Context, studentID string) (*planner.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := &planner.Snapshot{
		StudentID: studentID,
		Prefs:     l.prefs,
	}
	for _, c := range l.courses {
		snap.Courses = append(snap.Courses, c)
	}
	sort.Slice(snap.Courses, func(i, j int) bool {
		return snap.Courses[i].ID < snap.Courses[j].ID
	})
	return snap, nil
}

// Courses returns all loaded courses.
func (l *Loader) Courses() []planner.Course {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]planner.Course, 0, len(l.courses))
	for _, c := range l.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		if strings.HasSuffix(filepath.Base(path), "preferences.yaml") {
			return l.loadPreferences(path)
		}
		return l.loadCourse(path)
	})
}

func (l *Loader) loadCourse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc courseDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("skipping invalid course YAML", "path", path, "error", err)
		return nil
	}
	if doc.ID == "" {
		return nil // Not a course file
	}

	course := planner.Course{ID: doc.ID, Title: doc.Title}
	if doc.ExamDate != "" {
		exam, err := time.ParseInLocation("2006-01-02", doc.ExamDate, time.UTC)
		if err != nil {
			return fmt.Errorf("course %s: bad exam_date %q: %w", doc.ID, doc.ExamDate, err)
		}
		course.ExamDate = &exam
	}
	for _, t := range doc.Topics {
		status := planner.TopicStatus(t.Status)
		if status == "" {
			status = planner.TopicNotStarted
		}
		course.Topics = append(course.Topics, planner.Topic{
			ID:             t.ID,
			CourseID:       doc.ID,
			Title:          t.Title,
			Difficulty:     t.Difficulty,
			Importance:     t.Importance,
			EstimatedHours: t.EstimatedHours,
			Prerequisites:  t.Prerequisites,
			Status:         status,
			OrderIndex:     t.OrderIndex,
		})
	}

	l.mu.Lock()
	l.courses[course.ID] = course
	l.mu.Unlock()
	return nil
}

func (l *Loader) loadPreferences(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc prefsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("preferences %s: %w", path, err)
	}

	l.mu.Lock()
	l.prefs = planner.Preferences{
		DailyHours:       doc.DailyHours,
		DaysOff:          doc.DaysOff,
		StudyDaysPerWeek: doc.StudyDaysPerWeek,
	}
	l.mu.Unlock()
	return nil
}
