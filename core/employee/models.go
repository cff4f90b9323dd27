package employee

import (
	"math"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Module statuses
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var Statuses = []string{StatusNotStarted, StatusInProgress, StatusCompleted}

// Employee owns its progress ledger: one CourseProgress entry per enrolled
// course ("enrolled" means the entry exists, there is no separate enrollment
// action).
type Employee struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Position   string           `json:"position"`
	Department string           `json:"department"`
	ImageURL   string           `json:"image_url"`
	Email      null.String      `json:"email,omitempty"`
	AccessLink null.String      `json:"access_link,omitempty"`
	Progress   []CourseProgress `json:"progress"`
}

// CourseProgress records one employee's progress through one course.
// Progress is derived from the module statuses; it is never set directly.
type CourseProgress struct {
	CourseID     string           `json:"course_id"`
	Progress     int              `json:"progress"` // 0-100
	LastAccessed time.Time        `json:"last_accessed"`
	Modules      []ModuleProgress `json:"modules,omitempty"`
}

// ModuleProgress tracks one module's three-state machine:
// not_started -> in_progress -> completed. StartedAt and CompletedAt are
// set-once; TimeSpent only accumulates.
type ModuleProgress struct {
	ModuleID    string    `json:"module_id"`
	Status      string    `json:"status"`
	StartedAt   null.Time `json:"started_at,omitempty"`
	CompletedAt null.Time `json:"completed_at,omitempty"`
	TimeSpent   int       `json:"time_spent,omitempty"` // minutes
}

// Clone returns a deep copy of the employee: the ledger slices are duplicated
// so mutations on one copy never reach the other.
func (e Employee) Clone() Employee {
	if e.Progress == nil {
		return e
	}
	progress := make([]CourseProgress, len(e.Progress))
	for i, cp := range e.Progress {
		if cp.Modules != nil {
			cp.Modules = append([]ModuleProgress(nil), cp.Modules...)
		}
		progress[i] = cp
	}
	e.Progress = progress
	return e
}

// CourseProgressFor returns a pointer into the ledger for the given course id,
// or nil if the employee is not enrolled.
func (e *Employee) CourseProgressFor(courseID string) *CourseProgress {
	for i := range e.Progress {
		if e.Progress[i].CourseID == courseID {
			return &e.Progress[i]
		}
	}
	return nil
}

// MeanProgress is the employee's average completion percentage across all
// enrolled courses; 0 when there are none.
func (e Employee) MeanProgress() float64 {
	if len(e.Progress) == 0 {
		return 0
	}
	var sum int
	for _, cp := range e.Progress {
		sum += cp.Progress
	}
	return float64(sum) / float64(len(e.Progress))
}

// OverallProgress is MeanProgress rounded to a whole percentage.
func (e Employee) OverallProgress() int {
	return int(math.Round(e.MeanProgress()))
}

// CompletedCourseCount counts courses this employee fully completed.
func (e Employee) CompletedCourseCount() int {
	var n int
	for _, cp := range e.Progress {
		if cp.Progress == 100 {
			n++
		}
	}
	return n
}

func (cp *CourseProgress) moduleProgressFor(moduleID string) *ModuleProgress {
	for i := range cp.Modules {
		if cp.Modules[i].ModuleID == moduleID {
			return &cp.Modules[i]
		}
	}
	return nil
}

// CompletedModuleCount counts modules marked completed in this entry.
func (cp CourseProgress) CompletedModuleCount() int {
	var n int
	for _, mp := range cp.Modules {
		if mp.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// TotalTimeSpent sums the per-module time accumulators, in minutes.
func (cp CourseProgress) TotalTimeSpent() int {
	var total int
	for _, mp := range cp.Modules {
		total += mp.TimeSpent
	}
	return total
}

// recompute derives the completion percentage from the module statuses.
// totalModules is read fresh from the current course definition by the caller;
// a course with no modules yields 0 (not a division by zero).
func (cp *CourseProgress) recompute(totalModules int) {
	if totalModules <= 0 {
		cp.Progress = 0
		return
	}
	cp.Progress = int(math.Round(100 * float64(cp.CompletedModuleCount()) / float64(totalModules)))
}

// MakeAccessLink builds the direct-access path for an employee. The trailing
// segment is the plain employee id: the link is a convenience, not a
// credential (documented limitation, matching the admin console it serves).
func MakeAccessLink(employeeID string) string {
	return "/access/" + employeeID
}

// ParseAccessToken extracts the employee id from a direct-access token:
// the trailing path segment, looked up verbatim.
func ParseAccessToken(token string) string {
	parts := strings.Split(token, "/")
	return parts[len(parts)-1]
}
