package attendance

import (
	"context"
	"time"
)

// AttendanceRepository stores one record per (employee_id, date).
//
// Referential integrity against the roster is advisory: the repository never
// checks that an employee_id exists, and records survive employee deletion.
// Callers that need roster membership check it themselves.
type AttendanceRepository interface {
	// Upsert writes the record for (employeeID, date), replacing the status if one exists.
	// The record keeps its original ID on replacement.
	Upsert(ctx context.Context, employeeID string, date time.Time, status Status) (Attendance, error)

	// GetByEmployeeAndDate returns nil when there is no record for the pair
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// List returns the records matching filter, newest date first, then by employee_id
	List(ctx context.Context, filter Filter) ([]Attendance, error)

	// BulkUpsert applies every mark for date as one unit: readers see all of them or none.
	// Within one call a repeated employee_id resolves to its last mark.
	BulkUpsert(ctx context.Context, date time.Time, marks []Mark) ([]Attendance, error)

	// InsertMissing writes the marks whose (employee_id, date) has no record yet and
	// leaves existing records untouched, as one unit. It returns only the inserted records.
	InsertMissing(ctx context.Context, date time.Time, marks []Mark) ([]Attendance, error)
}
