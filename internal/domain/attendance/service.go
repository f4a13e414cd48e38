package attendance

import (
	"context"
	"io"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkAttendance marks one employee for one date; the employee must be on the roster
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)

	// BulkMarkAttendance writes every record of the request for its date, roster or not
	BulkMarkAttendance(ctx context.Context, req BulkMarkAttendanceRequest) ([]AttendanceResponse, error)

	// ListAttendance queries records, joined with the employee's name when still on the roster
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceResponse, error)

	// GetSummary counts present and absent days for a roster employee
	GetSummary(ctx context.Context, employeeID string) (SummaryResponse, error)

	// PrepareDailyMarking projects the roster onto a date, defaulting unmarked employees to Absent
	PrepareDailyMarking(ctx context.Context, date string) (DailyMarkingResponse, error)

	// SaveDailyMarking records a status for every roster employee, Absent unless given
	SaveDailyMarking(ctx context.Context, req BulkMarkAttendanceRequest) (DailyMarkingResponse, error)

	// CloseOutDay stores Absent for every roster employee without a record on date.
	// Marks written concurrently are never overwritten. Returns the number of records created.
	CloseOutDay(ctx context.Context, date string) (int, error)

	// ExportAttendance writes the queried records as an XLSX workbook
	ExportAttendance(ctx context.Context, filter AttendanceFilter, w io.Writer) error
}
