package course

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// UpdateCourse replaces the stored definition in place, preserving
		// collection order. Returns ErrNotFound if the id is unknown.
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
	}

	// ProgressSyncer is notified after a course definition changes so that
	// derived completion percentages can be recomputed eagerly instead of
	// waiting for the next progress write.
	ProgressSyncer interface {
		SyncCourseProgress(ctx context.Context, crs Course) error
	}

	Service struct {
		repo   Repository
		syncer ProgressSyncer
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetProgressSyncer wires the employee progress ledger in after both services
// exist; the dependency is circular at construction time.
func (svc *Service) SetProgressSyncer(syncer ProgressSyncer) {
	svc.syncer = syncer
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{
		ID:           uuid.New().String(),
		Title:        nc.Title,
		Description:  nc.Description,
		Duration:     nc.Duration,
		Category:     nc.Category,
		Level:        nc.Level,
		ImageURL:     nc.ImageURL,
		ResourceType: nc.ResourceType,
		ResourceURL:  nc.ResourceURL,
		FileName:     nc.FileName,
		Modules:      buildModules(nc.Modules),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

// Query lists courses matching the filter; a nil or empty filter lists all.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Course, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil || filter == nil || filter.IsEmpty() {
		return courses, err
	}

	matched := make([]Course, 0, len(courses))
	for _, crs := range courses {
		if filter.Match(crs) {
			matched = append(matched, crs)
		}
	}
	return matched, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}

	crs := Course{
		ID:           orig.ID,
		Title:        uc.Title,
		Description:  uc.Description,
		Duration:     uc.Duration,
		Category:     uc.Category,
		Level:        uc.Level,
		ImageURL:     uc.ImageURL,
		ResourceType: uc.ResourceType,
		ResourceURL:  uc.ResourceURL,
		FileName:     uc.FileName,
		Modules:      buildModules(uc.Modules),
	}

	crs, err = svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Course{}, err
	}

	// the module count may have changed; recompute derived percentages now
	if svc.syncer != nil {
		if err := svc.syncer.SyncCourseProgress(ctx, crs); err != nil {
			return Course{}, pkgerrors.Wrap(err, "syncing course progress")
		}
	}
	return crs, nil
}

// Delete removes the course definition. Progress entries referencing it are
// left in place and surface as dangling on read.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func buildModules(mods []NewModule) []Module {
	modules := make([]Module, 0, len(mods))
	for _, nm := range mods {
		mod := Module{
			ID:           nm.ID,
			Title:        nm.Title,
			Duration:     nm.Duration,
			ResourceType: nm.ResourceType,
			ResourceURL:  nm.ResourceURL,
			FileName:     nm.FileName,
		}
		if mod.ID == "" {
			mod.ID = uuid.New().String()
		}
		for _, nct := range nm.Content {
			ct := ModuleContent{
				ID:          nct.ID,
				Title:       nct.Title,
				Type:        nct.Type,
				Duration:    nct.Duration,
				ResourceURL: nct.ResourceURL,
				FileName:    nct.FileName,
				Description: nct.Description,
			}
			if ct.ID == "" {
				ct.ID = uuid.New().String()
			}
			mod.Content = append(mod.Content, ct)
		}
		modules = append(modules, mod)
	}
	return modules
}
