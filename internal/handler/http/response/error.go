package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidStatus):
		ValidationError(w, map[string]string{"status": err.Error()})
	case errors.Is(err, attendance.ErrInvalidDate):
		ValidationError(w, map[string]string{"date": err.Error()})
	case errors.Is(err, attendance.ErrInvalidEmployeeID):
		ValidationError(w, map[string]string{"employee_id": err.Error()})

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeIDExists):
		Conflict(w, "Employee ID already exists")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
