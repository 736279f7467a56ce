package session

import (
	"time"
)

// MinSeconds is the longest run that is still discarded; only runs strictly longer are recorded.
const MinSeconds = 5

// DefaultMinutes is the duration a new timer starts with.
const DefaultMinutes = 25

// Durations lists the selectable timer durations, in minutes.
var Durations = []int{15, 25, 45, 60}

// StudySession is one recorded study run. It is immutable once created.
type StudySession struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	ModuleID  string    `json:"module_id"`
	Duration  int       `json:"duration"`  // whole seconds
	Timestamp time.Time `json:"timestamp"` // UTC, completion time
}

// NewSession is a run reported by a client.
type NewSession struct {
	ModuleID string `json:"module_id" validate:"required"`
	Duration int    `json:"duration" validate:"min=0"`
}

type QueryFilter struct {
	StudentID string
	ModuleIDs []string
}

func IsValidDuration(minutes int) bool {
	for _, d := range Durations {
		if d == minutes {
			return true
		}
	}
	return false
}
