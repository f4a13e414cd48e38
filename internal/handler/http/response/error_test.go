package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails map[string]string
	}{
		{
			name:        "invalid status",
			err:         attendance.ErrInvalidStatus,
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "VALIDATION_ERROR",
			wantDetails: map[string]string{"status": attendance.ErrInvalidStatus.Error()},
		},
		{
			name:        "invalid date",
			err:         fmt.Errorf("parse filter: %w", attendance.ErrInvalidDate),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "VALIDATION_ERROR",
			wantDetails: map[string]string{"date": "parse filter: " + attendance.ErrInvalidDate.Error()},
		},
		{
			name:        "invalid attendance employee id",
			err:         attendance.ErrInvalidEmployeeID,
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "VALIDATION_ERROR",
			wantDetails: map[string]string{"employee_id": attendance.ErrInvalidEmployeeID.Error()},
		},
		{
			name: "wrapped validation errors",
			err: fmt.Errorf("create employee: %w", validator.ValidationErrors{
				{Field: "email", Message: "invalid email address"},
				{Field: "full_name", Message: "full name is required"},
			}),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
			wantDetails: map[string]string{
				"email":     "invalid email address",
				"full_name": "full name is required",
			},
		},
		{
			name:       "employee not found",
			err:        fmt.Errorf("lookup: %w", employee.ErrEmployeeNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "duplicate employee id",
			err:        employee.ErrEmployeeIDExists,
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "unknown error",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}
