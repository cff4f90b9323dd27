// Package inmemdb is the authoritative runtime store: plain tables guarded by
// RW mutexes, written through to a snapshot.Store on every mutation. Snapshots
// are taken while the write lock is held so a saved blob always reflects one
// consistent state.
package inmemdb

import (
	"context"
	"encoding/json"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/tulamba/mafunzo/core"
	"github.com/tulamba/mafunzo/core/course"
	"github.com/tulamba/mafunzo/core/employee"
	"github.com/tulamba/mafunzo/fs"
	"github.com/tulamba/mafunzo/storage/snapshot"
)

type (
	DB struct {
		courses   *courseTable
		employees *employeeTable
		snaps     snapshot.Store
		logger    core.Logger
	}

	// tables keep an insertion-order index next to the map so listings and
	// snapshots stay deterministic.
	courseTable struct {
		table map[string]*course.Course
		order []string
		mutex sync.RWMutex
	}

	employeeTable struct {
		table map[string]*employee.Employee
		order []string
		mutex sync.RWMutex
	}
)

// Open restores both collections from the snapshot store. A missing snapshot
// means first run; a corrupt one is logged and left on disk, and the embedded
// seed data is used instead. Either way the store starts usable.
func Open(ctx context.Context, snaps snapshot.Store, logger core.Logger) (*DB, error) {
	db := &DB{
		courses:   &courseTable{table: make(map[string]*course.Course)},
		employees: &employeeTable{table: make(map[string]*employee.Employee)},
		snaps:     snaps,
		logger:    logger,
	}

	var courses []course.Course
	if err := db.restore(ctx, snapshot.Courses, "data/courses.json", &courses); err != nil {
		return nil, err
	}
	for i := range courses {
		crs := courses[i]
		db.courses.table[crs.ID] = &crs
		db.courses.order = append(db.courses.order, crs.ID)
	}

	var employees []employee.Employee
	if err := db.restore(ctx, snapshot.Employees, "data/employees.json", &employees); err != nil {
		return nil, err
	}
	for i := range employees {
		emp := employees[i]
		db.employees.table[emp.ID] = &emp
		db.employees.order = append(db.employees.order, emp.ID)
	}
	return db, nil
}

func (db *DB) restore(ctx context.Context, collection, seedPath string, dest interface{}) error {
	err := db.snaps.Load(ctx, collection, dest)
	if err == nil {
		return nil
	}

	switch {
	case err == snapshot.ErrNotFound:
		db.logger.Info("no snapshot; seeding", collection)
	case snapshot.IsCorrupt(err):
		db.logger.Warn("corrupt snapshot; falling back to seed data", collection, err)
	default:
		return pkgerrors.Wrapf(err, "loading %s snapshot", collection)
	}

	blob, err := appfs.FS.ReadFile(seedPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "reading %s seed", collection)
	}
	if err = json.Unmarshal(blob, dest); err != nil {
		return pkgerrors.Wrapf(err, "decoding %s seed", collection)
	}
	return nil
}

// saveCourses snapshots the course table; caller must hold at least the
// read lock. A failed save means the durable state no longer matches memory:
// an integrity fault, reported as a shutdown error.
func (db *DB) saveCourses(ctx context.Context) error {
	courses := make([]course.Course, 0, len(db.courses.order))
	for _, id := range db.courses.order {
		courses = append(courses, *db.courses.table[id])
	}
	if err := db.snaps.Save(ctx, snapshot.Courses, courses); err != nil {
		return core.NewShutdownError("saving courses snapshot: " + err.Error())
	}
	return nil
}

// saveEmployees snapshots the employee table; caller must hold at least the
// read lock. Save failures are shutdown errors, see saveCourses.
func (db *DB) saveEmployees(ctx context.Context) error {
	employees := make([]employee.Employee, 0, len(db.employees.order))
	for _, id := range db.employees.order {
		employees = append(employees, *db.employees.table[id])
	}
	if err := db.snaps.Save(ctx, snapshot.Employees, employees); err != nil {
		return core.NewShutdownError("saving employees snapshot: " + err.Error())
	}
	return nil
}
