package inmemdb

import (
	"context"

	"github.com/tulamba/mafunzo/core/course"
)

type courseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// Records cross the repository boundary as deep copies in both directions;
// the table never shares nested slices with callers.

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	tbl := repo.db.courses
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	stored := crs.Clone()
	tbl.table[crs.ID] = &stored
	tbl.order = append(tbl.order, crs.ID)
	if err := repo.db.saveCourses(ctx); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	tbl := repo.db.courses
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	courses := make([]course.Course, 0, len(tbl.order))
	for _, id := range tbl.order {
		courses = append(courses, tbl.table[id].Clone())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	tbl := repo.db.courses
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if crs, ok := tbl.table[id]; ok {
		return crs.Clone(), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	tbl := repo.db.courses
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, ok := tbl.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	stored := crs.Clone()
	tbl.table[crs.ID] = &stored
	if err := repo.db.saveCourses(ctx); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	tbl := repo.db.courses
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, ok := tbl.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(tbl.table, id)
	for i, oid := range tbl.order {
		if oid == id {
			tbl.order = append(tbl.order[:i], tbl.order[i+1:]...)
			break
		}
	}
	return repo.db.saveCourses(ctx)
}
