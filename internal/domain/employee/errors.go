package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmployeeIDExists  = errors.New("employee id already exists")
	ErrInvalidEmployeeID = errors.New("invalid employee id format")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrFullNameRequired  = errors.New("full name is required")
)
