package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = "id, employee_id, date, status, created_at, updated_at"

type attendanceRepository struct {
	db database.Pool
}

func NewAttendanceRepository(db database.Pool) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var status string
	if err := row.Scan(&att.ID, &att.EmployeeID, &att.Date, &status, &att.CreatedAt, &att.UpdatedAt); err != nil {
		return attendance.Attendance{}, err
	}
	att.Status = attendance.Status(status)
	return att, nil
}

// Upsert implements attendance.AttendanceRepository.
func (a *attendanceRepository) Upsert(ctx context.Context, employeeID string, date time.Time, status attendance.Status) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	// The existing id survives a conflict, only the status changes.
	query := `
		INSERT INTO attendance (id, employee_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, id.String(), employeeID, date, string(status)))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE employee_id = $1
		  AND date = $2
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Exact date takes precedence over the range
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	} else {
		if filter.StartDate != nil {
			conditions = append(conditions, fmt.Sprintf("date >= $%d", argIdx))
			args = append(args, *filter.StartDate)
			argIdx++
		}
		if filter.EndDate != nil {
			conditions = append(conditions, fmt.Sprintf("date <= $%d", argIdx))
			args = append(args, *filter.EndDate)
			argIdx++
		}
	}

	query := "SELECT " + attendanceColumns + " FROM attendance"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, employee_id ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return records, nil
}

// BulkUpsert implements attendance.AttendanceRepository.
// All marks go through one transaction, so other sessions see the whole day or nothing.
func (a *attendanceRepository) BulkUpsert(ctx context.Context, date time.Time, marks []attendance.Mark) ([]attendance.Attendance, error) {
	var records []attendance.Attendance

	err := WithTransaction(ctx, a.db, func(txCtx context.Context, _ pgx.Tx) error {
		records = make([]attendance.Attendance, 0, len(marks))
		for _, m := range marks {
			att, err := a.Upsert(txCtx, m.EmployeeID, date, m.Status)
			if err != nil {
				return fmt.Errorf("employee %s: %w", m.EmployeeID, err)
			}
			records = append(records, att)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk upsert attendance: %w", err)
	}

	return records, nil
}

// InsertMissing implements attendance.AttendanceRepository.
func (a *attendanceRepository) InsertMissing(ctx context.Context, date time.Time, marks []attendance.Mark) ([]attendance.Attendance, error) {
	query := `
		INSERT INTO attendance (id, employee_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING ` + attendanceColumns

	var records []attendance.Attendance

	err := WithTransaction(ctx, a.db, func(txCtx context.Context, tx pgx.Tx) error {
		records = make([]attendance.Attendance, 0, len(marks))
		for _, m := range marks {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate attendance id: %w", err)
			}

			att, err := scanAttendance(tx.QueryRow(txCtx, query, id.String(), m.EmployeeID, date, string(m.Status)))
			if err != nil {
				// A conflict returns no row: the existing record wins
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				return fmt.Errorf("employee %s: %w", m.EmployeeID, err)
			}
			records = append(records, att)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert missing attendance: %w", err)
	}

	return records, nil
}
