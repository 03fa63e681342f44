package planner

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema validates inline snapshots before they reach the
// engine, so malformed input fails as one structured error instead of
// surfacing mid-run.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["student_id", "courses"],
  "properties": {
    "student_id": {"type": "string", "minLength": 1},
    "mode": {"type": "string", "enum": ["full", "recreate"]},
    "preferences": {
      "type": "object",
      "properties": {
        "daily_hours": {"type": "number", "minimum": 0},
        "days_off": {"type": "array", "items": {"type": "string"}},
        "study_days_per_week": {"type": "integer", "minimum": 1, "maximum": 7}
      }
    },
    "courses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "topics"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "exam_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
          "topics": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "title": {"type": "string"},
                "difficulty": {"type": "integer", "minimum": 1, "maximum": 5},
                "importance": {"type": "integer", "minimum": 1, "maximum": 5},
                "estimated_hours": {"type": "number", "minimum": 0},
                "prerequisites": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["not_started", "in_progress", "done"]},
                "order_index": {"type": "integer", "minimum": 0}
              }
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

type snapshotDoc struct {
	StudentID   string      `json:"student_id"`
	Mode        string      `json:"mode"`
	Preferences *prefsDoc   `json:"preferences"`
	Courses     []courseDoc `json:"courses"`
}

type prefsDoc struct {
	DailyHours       float64  `json:"daily_hours"`
	DaysOff          []string `json:"days_off"`
	StudyDaysPerWeek int      `json:"study_days_per_week"`
}

type courseDoc struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	ExamDate string     `json:"exam_date"`
	Topics   []topicDoc `json:"topics"`
}

type topicDoc struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Difficulty     int      `json:"difficulty"`
	Importance     int      `json:"importance"`
	EstimatedHours float64  `json:"estimated_hours"`
	Prerequisites  []string `json:"prerequisites"`
	Status         string   `json:"status"`
	OrderIndex     int      `json:"order_index"`
}

// ParseSnapshot validates raw snapshot JSON against the schema and
// converts it to the engine's input type. Any violation is returned
// as a single *InputError.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &InputError{Field: "snapshot", Reason: err.Error()}
	}
	if !result.Valid() {
		var reasons []string
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		return nil, &InputError{Field: "snapshot", Reason: strings.Join(reasons, "; ")}
	}

	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &InputError{Field: "snapshot", Reason: err.Error()}
	}

	snap := &Snapshot{
		StudentID: doc.StudentID,
		Mode:      Mode(doc.Mode),
	}
	if doc.Preferences != nil {
		snap.Prefs = Preferences{
			DailyHours:       doc.Preferences.DailyHours,
			DaysOff:          doc.Preferences.DaysOff,
			StudyDaysPerWeek: doc.Preferences.StudyDaysPerWeek,
		}
	}
	for _, c := range doc.Courses {
		course := Course{ID: c.ID, Title: c.Title}
		if c.ExamDate != "" {
			exam, err := time.ParseInLocation("2006-01-02", c.ExamDate, time.UTC)
			if err != nil {
				return nil, &InputError{Field: "courses.exam_date", Reason: err.Error()}
			}
			course.ExamDate = &exam
		}
		for _, t := range c.Topics {
			status := TopicStatus(t.Status)
			if status == "" {
				status = TopicNotStarted
			}
			course.Topics = append(course.Topics, Topic{
				ID:             t.ID,
				CourseID:       c.ID,
				Title:          t.Title,
				Difficulty:     t.Difficulty,
				Importance:     t.Importance,
				EstimatedHours: t.EstimatedHours,
				Prerequisites:  t.Prerequisites,
				Status:         status,
				OrderIndex:     t.OrderIndex,
			})
		}
		snap.Courses = append(snap.Courses, course)
	}
	return snap, nil
}
