package employee

import (
	"context"
)

// EmployeeService defines business logic for roster operations
type EmployeeService interface {
	// ListEmployees returns the roster ordered by creation date, newest first
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	// GetEmployee retrieves a single employee by employee_id
	GetEmployee(ctx context.Context, employeeID string) (EmployeeResponse, error)

	// CreateEmployee adds a new employee to the roster
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee removes an employee; their attendance history is kept
	DeleteEmployee(ctx context.Context, employeeID string) error
}
