package planner

// minTopicHours is the compression floor: under priority mode every
// topic keeps at least this much schedulable time instead of
// vanishing.
const minTopicHours = 0.25

// feasibility compares required effort against available study time.
type feasibility struct {
	CoverageRatio  float64
	RequiredHours  float64
	AvailableHours float64
	PriorityMode   bool
	// Compressed maps topic id to its effective required hours.
	Compressed map[string]float64
}

// analyzeFeasibility computes the coverage ratio and, when available
// time is insufficient, compresses every topic's hours uniformly by
// that ratio. Available time counts only study days on which at
// least one course is still schedulable: a day on or past every exam
// contributes nothing, however long the horizon. Uniform compression
// is a deliberate simplicity choice; no topic is dropped or favored.
func analyzeFeasibility(courses []Course, grid dayGrid, dailyHours float64) feasibility {
	f := feasibility{Compressed: make(map[string]float64)}
	for _, c := range courses {
		for _, t := range c.Topics {
			f.RequiredHours += t.EstimatedHours
		}
	}

	for _, day := range grid.Days {
		if day.Off {
			continue
		}
		for _, c := range courses {
			if c.ExamDate == nil || dateOnly(*c.ExamDate).After(day.Date) {
				f.AvailableHours += dailyHours
				break
			}
		}
	}

	f.CoverageRatio = 1
	if f.RequiredHours > 0 && f.AvailableHours < f.RequiredHours {
		f.CoverageRatio = f.AvailableHours / f.RequiredHours
		f.PriorityMode = true
	}

	for _, c := range courses {
		for _, t := range c.Topics {
			hours := t.EstimatedHours
			if f.PriorityMode {
				hours *= f.CoverageRatio
				if hours < minTopicHours {
					hours = minTopicHours
				}
			}
			f.Compressed[t.ID] = hours
		}
	}
	return f
}
