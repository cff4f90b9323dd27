package employee

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tulamba/mafunzo/core"
)

// ProgressUpdate is a single module-status write against one employee's
// ledger. TimeSpent is an additive delta in minutes; nil means no change.
type ProgressUpdate struct {
	CourseID  string `json:"course_id" validate:"required"`
	ModuleID  string `json:"module_id" validate:"required"`
	Status    string `json:"status" validate:"required,modulestatus"`
	TimeSpent *int   `json:"time_spent" validate:"omitempty,gte=0"`
}

func (pu *ProgressUpdate) Validate() error {
	pu.CourseID = core.CleanString(pu.CourseID)
	pu.ModuleID = core.CleanString(pu.ModuleID)
	pu.Status = core.CleanString(pu.Status, true /* lower */)
	return core.Validate.Struct(pu)
}

// ApplyProgressUpdate runs the ledger state machine against this employee:
//
//  1. the CourseProgress entry is created lazily if absent;
//  2. LastAccessed is always refreshed, even when the status does not change;
//  3. the ModuleProgress entry is created lazily (status not_started);
//  4. StartedAt is set only on the first not_started -> in_progress
//     transition, CompletedAt only on the first entry into completed; both
//     stay put across later calls and status reversals;
//  5. the target status is applied unconditionally (any transition is legal,
//     including reopening a completed module);
//  6. a supplied TimeSpent delta is added to the accumulator;
//  7. the completion percentage is recomputed against totalModules, skipped
//     when the course definition no longer resolves (totalModules < 0).
//
// Module ids are deliberately not checked against the course definition:
// the ledger tracks whatever it is told about.
func (e *Employee) ApplyProgressUpdate(upd ProgressUpdate, now time.Time, totalModules int) {
	cp := e.CourseProgressFor(upd.CourseID)
	if cp == nil {
		e.Progress = append(e.Progress, CourseProgress{
			CourseID:     upd.CourseID,
			Progress:     0,
			LastAccessed: now,
		})
		cp = &e.Progress[len(e.Progress)-1]
	}

	cp.LastAccessed = now

	mp := cp.moduleProgressFor(upd.ModuleID)
	if mp == nil {
		cp.Modules = append(cp.Modules, ModuleProgress{
			ModuleID: upd.ModuleID,
			Status:   StatusNotStarted,
		})
		mp = &cp.Modules[len(cp.Modules)-1]
	}

	if upd.Status == StatusInProgress && mp.Status == StatusNotStarted && !mp.StartedAt.Valid {
		mp.StartedAt = null.TimeFrom(now)
	}
	if upd.Status == StatusCompleted && mp.Status != StatusCompleted && !mp.CompletedAt.Valid {
		mp.CompletedAt = null.TimeFrom(now)
	}

	mp.Status = upd.Status

	if upd.TimeSpent != nil {
		mp.TimeSpent += *upd.TimeSpent
	}

	if totalModules >= 0 {
		cp.recompute(totalModules)
	}
}
