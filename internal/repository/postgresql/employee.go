package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

type employeeRepository struct {
	db database.Pool
}

func NewEmployeeRepository(db database.Pool) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, full_name, department, email, created_at
		FROM employees
		ORDER BY created_at DESC, employee_id ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(&e.EmployeeID, &e.FullName, &e.Department, &e.Email, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// GetByEmployeeID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, full_name, department, email, created_at
		FROM employees
		WHERE employee_id = $1
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query, employeeID).Scan(&e.EmployeeID, &e.FullName, &e.Department, &e.Email, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return e, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (employee_id, full_name, department, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		newEmployee.EmployeeID,
		newEmployee.FullName,
		newEmployee.Department,
		newEmployee.Email,
	).Scan(&newEmployee.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return employee.Employee{}, employee.ErrEmployeeIDExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return newEmployee, nil
}

// Delete implements employee.EmployeeRepository.
// Attendance rows are not touched: the attendance table has no foreign key to employees.
func (r *employeeRepository) Delete(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}
