package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Mark(w http.ResponseWriter, r *http.Request)
	BulkMark(w http.ResponseWriter, r *http.Request)
	PrepareDaily(w http.ResponseWriter, r *http.Request)
	SaveDaily(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func filterFromQuery(r *http.Request) attendance.AttendanceFilter {
	q := r.URL.Query()
	return attendance.AttendanceFilter{
		EmployeeID: q.Get("employee_id"),
		Date:       q.Get("date"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListAttendance(r.Context(), filterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode mark attendance request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.MarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance marked successfully", result)
}

// BulkMark implements AttendanceHandler.
func (h *attendanceHandlerImpl) BulkMark(w http.ResponseWriter, r *http.Request) {
	var req attendance.BulkMarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode bulk attendance request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.BulkMarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance marked successfully", result)
}

// PrepareDaily implements AttendanceHandler.
func (h *attendanceHandlerImpl) PrepareDaily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date") // format: YYYY-MM-DD, default: today

	result, err := h.attendanceService.PrepareDailyMarking(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SaveDaily implements AttendanceHandler.
func (h *attendanceHandlerImpl) SaveDaily(w http.ResponseWriter, r *http.Request) {
	var req attendance.BulkMarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode daily marking request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.SaveDailyMarking(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily attendance saved successfully", result)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.attendanceService.GetSummary(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements AttendanceHandler.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.attendanceService.ExportAttendance(r.Context(), filterFromQuery(r), &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write attendance export", "error", err)
	}
}
