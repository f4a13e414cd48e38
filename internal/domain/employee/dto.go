package employee

import (
	"strings"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: ErrInvalidEmployeeID.Error(),
		})
	}

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: ErrFullNameRequired.Error(),
		})
	}

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: ErrInvalidEmail.Error(),
		})
	}

	// Department is optional and kept verbatim; the dashboard groups on the raw value.

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	CreatedAt  string `json:"created_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}
