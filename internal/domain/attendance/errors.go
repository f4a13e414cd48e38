package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidStatus     = errors.New("status must be 'Present' or 'Absent'")
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidEmployeeID = errors.New("invalid employee id format")
)
