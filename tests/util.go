package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/tulamba/mafunzo/core"
	"github.com/tulamba/mafunzo/core/course"
	"github.com/tulamba/mafunzo/core/employee"
	inmemdb "github.com/tulamba/mafunzo/storage/database/inmem"
	"github.com/tulamba/mafunzo/storage/snapshot"
)

// force TEST behavior regardless of the ENV the tests run under
func init() {
	core.Conf.Debug = false
	core.Conf.TestMode = true
}

// NopLogger discards everything; tests assert on behavior, not log output.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// PrepareDB snapshots the given collections into a fresh file store under a
// test temp dir and opens the in-memory store from it. Pass nil slices for
// empty collections; the embedded seed data is never loaded.
func PrepareDB(t *testing.T, courses []course.Course, employees []employee.Employee) (*inmemdb.DB, snapshot.Store) {
	t.Helper()
	ctx := context.Background()

	snaps, err := snapshot.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if courses == nil {
		courses = []course.Course{}
	}
	if employees == nil {
		employees = []employee.Employee{}
	}
	if err = snaps.Save(ctx, snapshot.Courses, courses); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = snaps.Save(ctx, snapshot.Employees, employees); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}

	db, err := inmemdb.Open(ctx, snaps, NopLogger{})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db, snaps
}

// MakeCourse builds a course definition with n bare modules (m1..mn).
func MakeCourse(id, title string, n int) course.Course {
	crs := course.Course{
		ID:       id,
		Title:    title,
		Category: "Testing",
		Level:    course.LevelBeginner,
	}
	for i := 1; i <= n; i++ {
		crs.Modules = append(crs.Modules, course.Module{
			ID:    fmt.Sprintf("m%d", i),
			Title: fmt.Sprintf("Module %d", i),
		})
	}
	return crs
}

// MakeEmployee builds an employee with the given ledger entries.
func MakeEmployee(id, name string, progress ...employee.CourseProgress) employee.Employee {
	return employee.Employee{
		ID:       id,
		Name:     name,
		Position: "Tester",
		Progress: progress,
	}
}
