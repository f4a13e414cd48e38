// Package memory keeps the roster and attendance in process memory. It backs
// STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
)

type employeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
	now       func() time.Time
}

func NewEmployeeRepository() employee.EmployeeRepository {
	return &employeeRepository{
		employees: make(map[string]employee.Employee),
		now:       time.Now,
	}
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employees := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool {
		if !employees[i].CreatedAt.Equal(employees[j].CreatedAt) {
			return employees[i].CreatedAt.After(employees[j].CreatedAt)
		}
		return employees[i].EmployeeID < employees[j].EmployeeID
	})

	return employees, nil
}

// GetByEmployeeID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[employeeID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.employees[newEmployee.EmployeeID]; exists {
		return employee.Employee{}, employee.ErrEmployeeIDExists
	}

	newEmployee.CreatedAt = r.now().UTC()
	r.employees[newEmployee.EmployeeID] = newEmployee
	return newEmployee, nil
}

// Delete implements employee.EmployeeRepository.
func (r *employeeRepository) Delete(ctx context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[employeeID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.employees, employeeID)
	return nil
}
