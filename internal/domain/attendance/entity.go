package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// DefaultStatus is what an employee without a mark for the day is saved as.
const DefaultStatus = StatusAbsent

func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// ParseStatus accepts exactly "Present" or "Absent".
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Attendance is the single record kept for an (EmployeeID, Date) pair.
// Date is a calendar day at midnight UTC.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Mark is one entry of a bulk write
type Mark struct {
	EmployeeID string
	Status     Status
}

// Filter narrows a query. Nil fields are ignored; set fields are ANDed.
// Date is an exact match and wins over StartDate/EndDate, which are inclusive.
type Filter struct {
	EmployeeID *string
	Date       *time.Time
	StartDate  *time.Time
	EndDate    *time.Time
}

// Matches reports whether a record passes the filter.
func (f Filter) Matches(a Attendance) bool {
	if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Date != nil {
		return a.Date.Equal(*f.Date)
	}
	if f.StartDate != nil && a.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && a.Date.After(*f.EndDate) {
		return false
	}
	return true
}

// Tally counts records per status.
type Tally struct {
	Present int
	Absent  int
}

func Count(records []Attendance) Tally {
	var t Tally
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			t.Present++
		case StatusAbsent:
			t.Absent++
		}
	}
	return t
}
