package inmemdb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulamba/mafunzo/core"
	"github.com/tulamba/mafunzo/core/course"
	"github.com/tulamba/mafunzo/core/employee"
	inmemdb "github.com/tulamba/mafunzo/storage/database/inmem"
	"github.com/tulamba/mafunzo/storage/snapshot"
	testutil "github.com/tulamba/mafunzo/tests"
)

func TestOpen_seedsOnFirstRun(t *testing.T) {
	ctx := context.Background()
	snaps, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)

	db, err := inmemdb.Open(ctx, snaps, testutil.NopLogger{})
	require.NoError(t, err)

	courses, err := inmemdb.NewCourseRepository(db).QueryAllCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 6)
	assert.Equal(t, "c1", courses[0].ID)

	employees, err := inmemdb.NewEmployeeRepository(db).QueryAllEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 6)
	assert.NotEmpty(t, employees[0].Progress)
}

func TestOpen_corruptSnapshotFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	snaps, err := snapshot.NewFileStore(dir)
	require.NoError(t, err)

	// a valid employees snapshot next to a broken courses one
	require.NoError(t, snaps.Save(ctx, snapshot.Employees, []employee.Employee{testutil.MakeEmployee("e1", "Ada")}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "courses.json"), []byte("{{{"), 0o644))

	db, err := inmemdb.Open(ctx, snaps, testutil.NopLogger{})
	require.NoError(t, err)

	courses, err := inmemdb.NewCourseRepository(db).QueryAllCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 6, "corrupt collection falls back to seed data")

	employees, err := inmemdb.NewEmployeeRepository(db).QueryAllEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1, "healthy collections load from their snapshot")
	assert.Equal(t, "e1", employees[0].ID)
}

func TestOpen_restoresSavedState(t *testing.T) {
	ctx := context.Background()
	db, snaps := testutil.PrepareDB(t, []course.Course{testutil.MakeCourse("c1", "Safety", 2)}, nil)
	repo := inmemdb.NewCourseRepository(db)

	crs := testutil.MakeCourse("c2", "Privacy", 3)
	_, err := repo.CreateCourse(ctx, crs)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteCourse(ctx, "c1"))

	// a new process over the same store sees the mutated collection
	db2, err := inmemdb.Open(ctx, snaps, testutil.NopLogger{})
	require.NoError(t, err)
	courses, err := inmemdb.NewCourseRepository(db2).QueryAllCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c2", courses[0].ID)
}

func TestEmployeeRepository_readsAreIsolatedFromWrites(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.PrepareDB(t, nil, []employee.Employee{
		testutil.MakeEmployee("e1", "Ada", employee.CourseProgress{
			CourseID: "c1",
			Modules:  []employee.ModuleProgress{{ModuleID: "m1", Status: employee.StatusNotStarted}},
		}),
	})
	repo := inmemdb.NewEmployeeRepository(db)

	got, err := repo.GetEmployeeByID(ctx, "e1")
	require.NoError(t, err)

	// in-place ledger writes must not show through previously returned copies
	applied, err := repo.ApplyToEmployee(ctx, "e1", func(e *employee.Employee) {
		mp := &e.Progress[0].Modules[0]
		mp.Status = employee.StatusCompleted
		mp.TimeSpent += 30
	})
	require.NoError(t, err)
	assert.Equal(t, employee.StatusNotStarted, got.Progress[0].Modules[0].Status)
	assert.Zero(t, got.Progress[0].Modules[0].TimeSpent)

	// nor must mutating a returned copy reach the table
	applied.Progress[0].Modules[0].TimeSpent = 999
	reread, err := repo.GetEmployeeByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 30, reread.Progress[0].Modules[0].TimeSpent)
}

func TestCourseRepository_readsAreIsolatedFromWrites(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.PrepareDB(t, []course.Course{testutil.MakeCourse("c1", "Safety", 2)}, nil)
	repo := inmemdb.NewCourseRepository(db)

	got, err := repo.GetCourseByID(ctx, "c1")
	require.NoError(t, err)
	got.Modules[0].Title = "scribbled over"

	reread, err := repo.GetCourseByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Module 1", reread.Modules[0].Title)
}

// run with -race: a reader holding a copy must not observe in-place ledger
// writes happening under the table's write lock.
func TestEmployeeRepository_concurrentReadAndApply(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.PrepareDB(t, nil, []employee.Employee{
		testutil.MakeEmployee("e1", "Ada", employee.CourseProgress{
			CourseID: "c1",
			Modules:  []employee.ModuleProgress{{ModuleID: "m1", Status: employee.StatusNotStarted}},
		}),
	})
	repo := inmemdb.NewEmployeeRepository(db)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			emp, err := repo.GetEmployeeByID(ctx, "e1")
			if err != nil {
				t.Error(err)
				return
			}
			_ = emp.Progress[0].Modules[0].Status
			_ = emp.Progress[0].Modules[0].TimeSpent
		}
	}()

	for i := 0; i < 200; i++ {
		_, err := repo.ApplyToEmployee(ctx, "e1", func(e *employee.Employee) {
			mp := &e.Progress[0].Modules[0]
			mp.Status = employee.StatusInProgress
			mp.TimeSpent++
		})
		require.NoError(t, err)
	}
	<-done
}

func TestEmployeeRepository_ApplyToEmployee(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.PrepareDB(t, nil, []employee.Employee{testutil.MakeEmployee("e1", "Ada")})
	repo := inmemdb.NewEmployeeRepository(db)

	emp, err := repo.ApplyToEmployee(ctx, "e1", func(e *employee.Employee) {
		e.Position = "Engineer"
	})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", emp.Position)

	got, err := repo.GetEmployeeByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Position)

	_, err = repo.ApplyToEmployee(ctx, "ghost", func(*employee.Employee) {})
	assert.Equal(t, employee.ErrNotFound, err)
}

// brokenStore seeds on load and rejects every save.
type brokenStore struct{ saveErr error }

func (s brokenStore) Load(ctx context.Context, collection string, dest interface{}) error {
	return snapshot.ErrNotFound
}

func (s brokenStore) Save(ctx context.Context, collection string, data interface{}) error {
	return s.saveErr
}

func TestDB_failedWriteThroughIsShutdownError(t *testing.T) {
	ctx := context.Background()
	db, err := inmemdb.Open(ctx, brokenStore{saveErr: errors.New("disk full")}, testutil.NopLogger{})
	require.NoError(t, err, "opening only loads; it must survive a store that cannot save")

	_, err = inmemdb.NewEmployeeRepository(db).ApplyToEmployee(ctx, "e1", func(e *employee.Employee) {
		e.Position = "Engineer"
	})
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err), "a failed write-through leaves memory and disk diverged")

	_, err = inmemdb.NewCourseRepository(db).CreateCourse(ctx, testutil.MakeCourse("c9", "Doomed", 1))
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err))
}
