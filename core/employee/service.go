package employee

import (
	"context"
	"errors"
	"math"
	"net/mail"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tulamba/mafunzo/core"
	"github.com/tulamba/mafunzo/core/course"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("employee not found")
	ErrNoEmail  = errors.New("employee has no email address")
)

type (
	Repository interface {
		QueryAllEmployees(ctx context.Context) ([]Employee, error)
		GetEmployeeByID(ctx context.Context, id string) (Employee, error)
		UpdateEmployee(ctx context.Context, emp Employee) (Employee, error)
		// ApplyToEmployee runs apply against the stored record as one atomic
		// read-modify-write; the unit of mutual exclusion covers the whole
		// nested progress structure of that employee.
		ApplyToEmployee(ctx context.Context, id string, apply func(*Employee)) (Employee, error)
	}

	Service struct {
		repo       Repository
		courseRepo course.Repository
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

func NewService(repo Repository, courseRepo course.Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:       repo,
		courseRepo: courseRepo,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Employee, error) {
	return svc.repo.QueryAllEmployees(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Employee, error) {
	return svc.repo.GetEmployeeByID(ctx, id)
}

// GetByAccessToken resolves a direct-access token to an employee. The token's
// trailing path segment is the employee id, looked up verbatim.
func (svc *Service) GetByAccessToken(ctx context.Context, token string) (Employee, error) {
	return svc.repo.GetEmployeeByID(ctx, ParseAccessToken(token))
}

// GenerateAccessLink stores and returns the employee's direct-access path.
func (svc *Service) GenerateAccessLink(ctx context.Context, id string) (Employee, error) {
	return svc.repo.ApplyToEmployee(ctx, id, func(emp *Employee) {
		emp.AccessLink = null.StringFrom(MakeAccessLink(emp.ID))
	})
}

// SendAccessLink emails the employee their direct-access link, generating it
// first if absent. Returns ErrNoEmail when the employee has no address.
func (svc *Service) SendAccessLink(ctx context.Context, id string) error {
	emp, err := svc.repo.GetEmployeeByID(ctx, id)
	if err != nil {
		return err
	}
	if !emp.Email.Valid || emp.Email.String == "" {
		return ErrNoEmail
	}
	if !emp.AccessLink.Valid {
		if emp, err = svc.GenerateAccessLink(ctx, id); err != nil {
			return err
		}
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: emp.Name, Address: emp.Email.String}},
		Subject:      "Your learning portal access",
		TemplateName: "access-link",
		TemplateData: struct {
			Name        string
			AccessLink  string
			CourseCount int
		}{emp.Name, emp.AccessLink.String, len(emp.Progress)},
	})
	svc.logger.Info("access link sent", emp.ID)
	return nil
}

// UpdateModuleProgress is the single entry point into the progress ledger.
// An unknown employee id is a silent no-op, not an error: progress writes are
// best-effort and may race with employee data not yet loaded.
func (svc *Service) UpdateModuleProgress(ctx context.Context, employeeID string, upd ProgressUpdate) error {
	totalModules := -1 // skip recomputation when the course does not resolve
	crs, err := svc.courseRepo.GetCourseByID(ctx, upd.CourseID)
	switch err {
	case nil:
		totalModules = len(crs.Modules)
	case course.ErrNotFound:
	default:
		return pkgerrors.Wrap(err, "resolving course")
	}

	now := NowFunc().UTC()
	if _, err := svc.repo.ApplyToEmployee(ctx, employeeID, func(emp *Employee) {
		emp.ApplyProgressUpdate(upd, now, totalModules)
	}); err != nil {
		if err == ErrNotFound {
			svc.logger.Debug("progress update for unknown employee dropped", employeeID)
			return nil
		}
		return err
	}
	return nil
}

// SyncCourseProgress eagerly recomputes the completion percentage of every
// employee enrolled in the given course; called after the course definition
// (and so its module count) changes.
func (svc *Service) SyncCourseProgress(ctx context.Context, crs course.Course) error {
	emps, err := svc.repo.QueryAllEmployees(ctx)
	if err != nil {
		return err
	}
	for _, emp := range emps {
		if emp.CourseProgressFor(crs.ID) == nil {
			continue
		}
		if _, err := svc.repo.ApplyToEmployee(ctx, emp.ID, func(e *Employee) {
			if cp := e.CourseProgressFor(crs.ID); cp != nil {
				cp.recompute(len(crs.Modules))
			}
		}); err != nil {
			return pkgerrors.Wrapf(err, "syncing progress for employee %s", emp.ID)
		}
	}
	return nil
}

// OverallProgress is the employee's mean completion percentage; 0 when the
// employee has no ledger entries or does not exist.
func (svc *Service) OverallProgress(ctx context.Context, employeeID string) (int, error) {
	emp, err := svc.repo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if err == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return emp.OverallProgress(), nil
}

// CourseWithProgress joins one ledger entry to its course definition.
// Dangling marks entries whose course id no longer resolves; the course field
// then only carries the id.
type CourseWithProgress struct {
	Course       course.Course `json:"course"`
	Progress     int           `json:"progress"`
	LastAccessed time.Time     `json:"last_accessed"`
	Dangling     bool          `json:"dangling,omitempty"`
}

func (svc *Service) CoursesWithProgress(ctx context.Context, employeeID string) ([]CourseWithProgress, error) {
	emp, err := svc.repo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	result := make([]CourseWithProgress, 0, len(emp.Progress))
	for _, cp := range emp.Progress {
		cwp := CourseWithProgress{
			Progress:     cp.Progress,
			LastAccessed: cp.LastAccessed,
		}
		crs, err := svc.courseRepo.GetCourseByID(ctx, cp.CourseID)
		switch err {
		case nil:
			cwp.Course = crs
		case course.ErrNotFound:
			cwp.Course = course.Course{ID: cp.CourseID}
			cwp.Dangling = true
		default:
			return nil, pkgerrors.Wrap(err, "resolving course")
		}
		result = append(result, cwp)
	}
	return result, nil
}

// TimeSpent sums the employee's per-module time for one course, in minutes.
func (svc *Service) TimeSpent(ctx context.Context, employeeID, courseID string) (int, error) {
	emp, err := svc.repo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if err == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	cp := emp.CourseProgressFor(courseID)
	if cp == nil {
		return 0, nil
	}
	return cp.TotalTimeSpent(), nil
}

// AverageTimeSpent is the rounded mean time spent on a course over all
// enrolled employees; 0 when nobody is enrolled.
func (svc *Service) AverageTimeSpent(ctx context.Context, courseID string) (int, error) {
	emps, err := svc.repo.QueryAllEmployees(ctx)
	if err != nil {
		return 0, err
	}

	var total, enrolled int
	for _, emp := range emps {
		if cp := emp.CourseProgressFor(courseID); cp != nil {
			total += cp.TotalTimeSpent()
			enrolled++
		}
	}
	if enrolled == 0 {
		return 0, nil
	}
	return int(math.Round(float64(total) / float64(enrolled))), nil
}

// CompanyAverageCompletion is the mean over all employees of each employee's
// own mean completion percentage. The double average is deliberate: every
// employee weighs the same regardless of how many courses they are
// enrolled in.
func (svc *Service) CompanyAverageCompletion(ctx context.Context) (float64, error) {
	emps, err := svc.repo.QueryAllEmployees(ctx)
	if err != nil {
		return 0, err
	}
	if len(emps) == 0 {
		return 0, nil
	}

	var sum float64
	for _, emp := range emps {
		sum += emp.MeanProgress()
	}
	return sum / float64(len(emps)), nil
}

// TopPerformers returns the n employees with the highest mean completion
// percentage, best first.
func (svc *Service) TopPerformers(ctx context.Context, n int) ([]Employee, error) {
	emps, err := svc.repo.QueryAllEmployees(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(emps, func(i, j int) bool {
		return emps[i].MeanProgress() > emps[j].MeanProgress()
	})
	if n < len(emps) {
		emps = emps[:n]
	}
	return emps, nil
}

// EnrolledEmployee pairs an employee with their progress in one course.
type EnrolledEmployee struct {
	Employee Employee `json:"employee"`
	Progress int      `json:"progress"`
}

func (svc *Service) EnrolledEmployees(ctx context.Context, courseID string) ([]EnrolledEmployee, error) {
	emps, err := svc.repo.QueryAllEmployees(ctx)
	if err != nil {
		return nil, err
	}

	enrolled := make([]EnrolledEmployee, 0)
	for _, emp := range emps {
		if cp := emp.CourseProgressFor(courseID); cp != nil {
			enrolled = append(enrolled, EnrolledEmployee{Employee: emp, Progress: cp.Progress})
		}
	}
	return enrolled, nil
}

// CourseStats aggregates a course's enrollment figures for the admin view.
type CourseStats struct {
	EnrolledCount    int                `json:"enrolled_count"`
	CompletedCount   int                `json:"completed_count"`
	AverageProgress  float64            `json:"average_progress"`
	AverageTimeSpent int                `json:"average_time_spent"` // minutes
	Enrolled         []EnrolledEmployee `json:"enrolled"`
}

func (svc *Service) StatsForCourse(ctx context.Context, courseID string) (CourseStats, error) {
	enrolled, err := svc.EnrolledEmployees(ctx, courseID)
	if err != nil {
		return CourseStats{}, err
	}
	avgTime, err := svc.AverageTimeSpent(ctx, courseID)
	if err != nil {
		return CourseStats{}, err
	}

	stats := CourseStats{
		EnrolledCount:    len(enrolled),
		AverageTimeSpent: avgTime,
		Enrolled:         enrolled,
	}
	var sum int
	for _, ee := range enrolled {
		sum += ee.Progress
		if ee.Progress == 100 {
			stats.CompletedCount++
		}
	}
	if stats.EnrolledCount > 0 {
		stats.AverageProgress = float64(sum) / float64(stats.EnrolledCount)
	}
	return stats, nil
}

// DashboardStats is the company-wide admin overview.
type DashboardStats struct {
	AverageCompletionRate float64    `json:"average_completion_rate"`
	TotalCompletedCourses int        `json:"total_completed_courses"`
	TopPerformers         []Employee `json:"top_performers"`
}

func (svc *Service) Dashboard(ctx context.Context, topN int) (DashboardStats, error) {
	avg, err := svc.CompanyAverageCompletion(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	emps, err := svc.repo.QueryAllEmployees(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	var completed int
	for _, emp := range emps {
		completed += emp.CompletedCourseCount()
	}

	top, err := svc.TopPerformers(ctx, topN)
	if err != nil {
		return DashboardStats{}, err
	}

	return DashboardStats{
		AverageCompletionRate: avg,
		TotalCompletedCourses: completed,
		TopPerformers:         top,
	}, nil
}
