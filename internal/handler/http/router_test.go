package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/config"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/sse"
	"github.com/hrms-lite/hrms-backend-go/internal/repository/memory"
	attendanceService "github.com/hrms-lite/hrms-backend-go/internal/service/attendance"
	dashboardService "github.com/hrms-lite/hrms-backend-go/internal/service/dashboard"
	employeeService "github.com/hrms-lite/hrms-backend-go/internal/service/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithHub(t, sse.NewHub())
}

func newTestRouterWithHub(t *testing.T, hub *sse.Hub) http.Handler {
	t.Helper()

	employeeRepo := memory.NewEmployeeRepository()
	attendanceRepo := memory.NewAttendanceRepository()
	clock := calendar.FixedClock(testToday)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(
		config.AppConfig{CORSAllowedOrigins: []string{"http://localhost:5173"}},
		logger,
		NewEmployeeHandler(employeeService.NewEmployeeService(employeeRepo)),
		NewAttendanceHandler(attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, clock, hub)),
		NewDashboardHandler(dashboardService.NewDashboardService(employeeRepo, attendanceRepo, clock), hub),
	)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createEmployee(t *testing.T, h http.Handler, id, name, dept string) {
	t.Helper()
	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/employees", map[string]string{
		"employee_id": id,
		"full_name":   name,
		"email":       strings.ToLower(id) + "@example.com",
		"department":  dept,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHeartbeat(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEmployeeEndpoints(t *testing.T) {
	h := newTestRouter(t)

	createEmployee(t, h, "EMP1", "Ani", "Eng")

	rec, env := doJSON(t, h, http.MethodPost, "/api/v1/employees", map[string]string{
		"employee_id": "EMP1", "full_name": "Dup", "email": "dup@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)

	rec, env = doJSON(t, h, http.MethodPost, "/api/v1/employees", map[string]string{"employee_id": "EMP2"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "full_name")

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/employees/EMP1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"full_name":"Ani"`)

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/v1/employees/EMP1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/employees/EMP1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAttendanceEndpoints(t *testing.T) {
	h := newTestRouter(t)
	createEmployee(t, h, "EMP1", "Ani", "Eng")
	createEmployee(t, h, "EMP2", "Budi", "Ops")

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/attendance", map[string]string{
		"employee_id": "EMP1", "date": "2024-01-09", "status": "Present",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := doJSON(t, h, http.MethodPost, "/api/v1/attendance", map[string]string{
		"employee_id": "EMP1", "date": "2024-01-09", "status": "present",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Error.Details, "status")

	rec, env = doJSON(t, h, http.MethodPost, "/api/v1/attendance/bulk", map[string]interface{}{
		"date":    "2024-01-09",
		"records": []map[string]string{{"employee_id": strings.Repeat("X", 65), "status": "Present"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "records[0].employee_id")

	rec, _ = doJSON(t, h, http.MethodPost, "/api/v1/attendance", map[string]string{
		"employee_id": "GHOST", "date": "2024-01-09", "status": "Present",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/api/v1/attendance/bulk", map[string]interface{}{
		"date": "2024-01-08",
		"records": []map[string]string{
			{"employee_id": "EMP1", "status": "Absent"},
			{"employee_id": "EMP2", "status": "Present"},
		},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/attendance?employee_id=EMP1&start_date=2024-01-08&end_date=2024-01-09", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "2024-01-09", list[0]["date"])

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/attendance/summary/EMP1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"employee_id":"EMP1","full_name":"Ani","total_present":1,"total_absent":1}`, string(env.Data))

	rec, _ = doJSON(t, h, http.MethodGet, "/api/v1/attendance/summary/GHOST", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, "/api/v1/attendance?date=bad", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDailyMarkingEndpoints(t *testing.T) {
	h := newTestRouter(t)
	createEmployee(t, h, "EMP1", "Ani", "Eng")
	createEmployee(t, h, "EMP2", "Budi", "Ops")

	rec, env := doJSON(t, h, http.MethodGet, "/api/v1/attendance/daily", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"date":"2024-01-10"`)

	rec, _ = doJSON(t, h, http.MethodPut, "/api/v1/attendance/daily", map[string]interface{}{
		"date":    "2024-01-10",
		"records": []map[string]string{{"employee_id": "EMP1", "status": "Present"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, h, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.EqualValues(t, 2, snapshot["total_employees"])
	assert.EqualValues(t, 1, snapshot["present_today"])
	assert.EqualValues(t, 1, snapshot["absent_today"])
}

func TestExportEndpoint(t *testing.T) {
	h := newTestRouter(t)
	createEmployee(t, h, "EMP1", "Ani", "Eng")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/attendance/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}

func TestDashboardStream(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	created, err := http.Post(srv.URL+"/api/v1/employees", "application/json",
		strings.NewReader(`{"employee_id":"EMP1","full_name":"Ani","email":"ani@example.com"}`))
	require.NoError(t, err)
	created.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/dashboard/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextSnapshot := func() map[string]interface{} {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") && strings.Contains(line, "total_employees") {
				var snapshot map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snapshot))
				return snapshot
			}
		}
	}

	first := nextSnapshot()
	assert.EqualValues(t, 0, first["present_today"])

	marked, err := http.Post(srv.URL+"/api/v1/attendance", "application/json",
		strings.NewReader(`{"employee_id":"EMP1","date":"2024-01-10","status":"Present"}`))
	require.NoError(t, err)
	marked.Body.Close()

	second := nextSnapshot()
	assert.EqualValues(t, 1, second["present_today"])
}

func TestDashboardStream_ReleasesSubscriptionOnDisconnect(t *testing.T) {
	hub := sse.NewHub()
	srv := httptest.NewServer(newTestRouterWithHub(t, hub))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/dashboard/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	assert.Equal(t, 1, hub.SubscriberCount(sse.TopicAttendance))

	cancel()
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		return hub.TotalSubscribers() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
