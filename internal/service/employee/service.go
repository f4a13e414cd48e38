package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}
	return responses, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, employeeID string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		EmployeeID: req.EmployeeID,
		FullName:   req.FullName,
		Department: req.Department,
		Email:      req.Email,
	})
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeIDExists) {
			slog.Error("failed to create employee", "employee_id", req.EmployeeID, "error", err)
		}
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.EmployeeID)
	return employee.NewEmployeeResponse(created), nil
}

// DeleteEmployee implements employee.EmployeeService.
// Attendance records of the employee are left in place.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, employeeID string) error {
	if err := s.employeeRepo.Delete(ctx, employeeID); err != nil {
		return err
	}

	slog.Info("employee deleted", "employee_id", employeeID)
	return nil
}
