package employee

import (
	"time"
)

// Employee is a roster entry. EmployeeID is assigned by the caller and never changes.
type Employee struct {
	EmployeeID string
	FullName   string
	Department string
	Email      string
	CreatedAt  time.Time
}
