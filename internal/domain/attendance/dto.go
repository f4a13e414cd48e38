package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

type MarkAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`

	// Populated by Validate
	ParsedDate   time.Time `json:"-"`
	ParsedStatus Status    `json:"-"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	if err := checkEmployeeID(r.EmployeeID); err != nil {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: err.Error()})
	}

	if date, err := parseRequiredDate(r.Date); err != nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: err.Error()})
	} else {
		r.ParsedDate = date
	}

	if status, err := parseRequiredStatus(r.Status); err != nil {
		errs = append(errs, validator.ValidationError{Field: "status", Message: err.Error()})
	} else {
		r.ParsedStatus = status
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BulkMarkItem struct {
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
}

// BulkMarkAttendanceRequest marks many employees for one date. It is used both
// for the raw bulk endpoint and for saving a day's marking sheet.
type BulkMarkAttendanceRequest struct {
	Date    string         `json:"date"`
	Records []BulkMarkItem `json:"records"`

	// Populated by Validate
	ParsedDate  time.Time `json:"-"`
	ParsedMarks []Mark    `json:"-"`
}

// Validate checks every record before anything is written; one bad record
// rejects the whole request.
func (r *BulkMarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if date, err := parseRequiredDate(r.Date); err != nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: err.Error()})
	} else {
		r.ParsedDate = date
	}

	marks := make([]Mark, 0, len(r.Records))
	for i := range r.Records {
		r.Records[i].EmployeeID = strings.TrimSpace(r.Records[i].EmployeeID)
		item := r.Records[i]

		if err := checkEmployeeID(item.EmployeeID); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("records[%d].employee_id", i),
				Message: err.Error(),
			})
		}

		status, err := parseRequiredStatus(item.Status)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("records[%d].status", i),
				Message: err.Error(),
			})
			continue
		}
		marks = append(marks, Mark{EmployeeID: item.EmployeeID, Status: status})
	}

	if len(errs) > 0 {
		return errs
	}

	r.ParsedMarks = marks
	return nil
}

// AttendanceFilter carries the optional query parameters, all YYYY-MM-DD
type AttendanceFilter struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`

	// Populated by Validate
	Parsed Filter `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors
	var parsed Filter

	f.EmployeeID = strings.TrimSpace(f.EmployeeID)
	if f.EmployeeID != "" {
		employeeID := f.EmployeeID
		parsed.EmployeeID = &employeeID
	}

	optionalDates := []struct {
		field string
		value string
		dest  **time.Time
	}{
		{"date", f.Date, &parsed.Date},
		{"start_date", f.StartDate, &parsed.StartDate},
		{"end_date", f.EndDate, &parsed.EndDate},
	}
	for _, d := range optionalDates {
		if validator.IsEmpty(d.value) {
			continue
		}
		date, err := calendar.Parse(d.value)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: d.field, Message: ErrInvalidDate.Error()})
			continue
		}
		*d.dest = &date
	}

	if len(errs) > 0 {
		return errs
	}

	f.Parsed = parsed
	return nil
}

// checkEmployeeID applies the roster's id format, so ids that could never be
// stored are rejected before any write.
func checkEmployeeID(id string) error {
	if validator.IsEmpty(id) {
		return fmt.Errorf("employee_id is required")
	}
	if !validator.IsValidEmployeeID(id) {
		return ErrInvalidEmployeeID
	}
	return nil
}

func parseRequiredDate(s string) (time.Time, error) {
	if validator.IsEmpty(s) {
		return time.Time{}, fmt.Errorf("date is required")
	}
	date, err := calendar.Parse(s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func parseRequiredStatus(s string) (Status, error) {
	if validator.IsEmpty(s) {
		return "", fmt.Errorf("status is required")
	}
	return ParseStatus(s)
}

// ========================================
// RESPONSE DTOs
// ========================================

type AttendanceResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	FullName   *string `json:"full_name"` // null when the employee left the roster
	Date       string  `json:"date"`
	Status     string  `json:"status"`
}

func NewAttendanceResponse(a Attendance, fullName *string) AttendanceResponse {
	return AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		FullName:   fullName,
		Date:       calendar.Format(a.Date),
		Status:     string(a.Status),
	}
}

type SummaryResponse struct {
	EmployeeID   string `json:"employee_id"`
	FullName     string `json:"full_name"`
	TotalPresent int    `json:"total_present"`
	TotalAbsent  int    `json:"total_absent"`
}

type DailyMarkingItem struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Marked     bool   `json:"marked"` // false when Status is the Absent default
}

type DailyMarkingResponse struct {
	Date    string             `json:"date"`
	Records []DailyMarkingItem `json:"records"`
}
