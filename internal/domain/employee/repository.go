package employee

import "context"

// EmployeeRepository is the roster provider. Attendance and dashboard code only
// use List and GetByEmployeeID; Create and Delete back the roster endpoints.
type EmployeeRepository interface {
	// List returns every employee, newest first
	List(ctx context.Context) ([]Employee, error)

	// GetByEmployeeID returns ErrEmployeeNotFound for unknown ids
	GetByEmployeeID(ctx context.Context, employeeID string) (Employee, error)

	// Create returns ErrEmployeeIDExists when the id is taken
	Create(ctx context.Context, newEmployee Employee) (Employee, error)

	// Delete removes the roster entry only; attendance records stay behind
	Delete(ctx context.Context, employeeID string) error
}
