package inmemdb

import (
	"context"

	"github.com/tulamba/mafunzo/core/employee"
)

type employeeRepository struct {
	db *DB
}

func NewEmployeeRepository(db *DB) employee.Repository {
	return &employeeRepository{db: db}
}

// Reads hand out deep copies. The stored records' nested ledger slices are
// mutated in place by ApplyToEmployee, so a returned record must not alias
// them once the lock is released.

func (repo *employeeRepository) QueryAllEmployees(ctx context.Context) ([]employee.Employee, error) {
	tbl := repo.db.employees
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	employees := make([]employee.Employee, 0, len(tbl.order))
	for _, id := range tbl.order {
		employees = append(employees, tbl.table[id].Clone())
	}
	return employees, nil
}

func (repo *employeeRepository) GetEmployeeByID(ctx context.Context, id string) (employee.Employee, error) {
	tbl := repo.db.employees
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if emp, ok := tbl.table[id]; ok {
		return emp.Clone(), nil
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	tbl := repo.db.employees
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, ok := tbl.table[emp.ID]; !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	stored := emp.Clone()
	tbl.table[emp.ID] = &stored
	if err := repo.db.saveEmployees(ctx); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

// ApplyToEmployee mutates the stored record in place under the write lock,
// making concurrent progress writes against the same employee serialize
// instead of clobbering each other.
func (repo *employeeRepository) ApplyToEmployee(ctx context.Context, id string, apply func(*employee.Employee)) (employee.Employee, error) {
	tbl := repo.db.employees
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	emp, ok := tbl.table[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	apply(emp)
	if err := repo.db.saveEmployees(ctx); err != nil {
		return employee.Employee{}, err
	}
	return emp.Clone(), nil
}
