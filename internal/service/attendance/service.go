package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/sse"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// EventPublisher receives a notification after every attendance write.
// *sse.Hub satisfies it.
type EventPublisher interface {
	Publish(topic string, event sse.Event)
}

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	clock          calendar.Clock
	publisher      EventPublisher
}

// NewAttendanceService wires the service. publisher may be nil.
func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	clock calendar.Clock,
	publisher EventPublisher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		clock:          clock,
		publisher:      publisher,
	}
}

// MarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.GetByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.attendanceRepo.Upsert(ctx, req.EmployeeID, req.ParsedDate, req.ParsedStatus)
	if err != nil {
		slog.Error("failed to mark attendance", "employee_id", req.EmployeeID, "date", req.Date, "error", err)
		return attendance.AttendanceResponse{}, err
	}

	s.notify(record.Date)
	return attendance.NewAttendanceResponse(record, &emp.FullName), nil
}

// BulkMarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BulkMarkAttendance(ctx context.Context, req attendance.BulkMarkAttendanceRequest) ([]attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.BulkUpsert(ctx, req.ParsedDate, req.ParsedMarks)
	if err != nil {
		slog.Error("failed to bulk mark attendance", "date", req.Date, "count", len(req.ParsedMarks), "error", err)
		return nil, err
	}

	names, err := s.rosterNames(ctx)
	if err != nil {
		return nil, err
	}

	s.notify(req.ParsedDate)
	return withNames(records, names), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, error) {
	records, names, err := s.query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return withNames(records, names), nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, employeeID string) (attendance.SummaryResponse, error) {
	// Records of employees no longer on the roster are not summarized
	emp, err := s.employeeRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	records, err := s.attendanceRepo.List(ctx, attendance.Filter{EmployeeID: &employeeID})
	if err != nil {
		return attendance.SummaryResponse{}, fmt.Errorf("failed to list attendance for summary: %w", err)
	}

	tally := attendance.Count(records)
	return attendance.SummaryResponse{
		EmployeeID:   emp.EmployeeID,
		FullName:     emp.FullName,
		TotalPresent: tally.Present,
		TotalAbsent:  tally.Absent,
	}, nil
}

// PrepareDailyMarking implements attendance.AttendanceService.
// An empty date means today.
func (s *AttendanceServiceImpl) PrepareDailyMarking(ctx context.Context, date string) (attendance.DailyMarkingResponse, error) {
	day := s.clock.Today()
	if !validator.IsEmpty(date) {
		parsed, err := calendar.Parse(date)
		if err != nil {
			return attendance.DailyMarkingResponse{}, validator.ValidationErrors{
				{Field: "date", Message: attendance.ErrInvalidDate.Error()},
			}
		}
		day = parsed
	}

	var (
		roster  []employee.Employee
		records []attendance.Attendance
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.employeeRepo.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.List(gCtx, attendance.Filter{Date: &day})
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.DailyMarkingResponse{}, fmt.Errorf("failed to prepare daily marking: %w", err)
	}

	stored := make(map[string]attendance.Status, len(records))
	for _, r := range records {
		stored[r.EmployeeID] = r.Status
	}

	items := make([]attendance.DailyMarkingItem, 0, len(roster))
	for _, emp := range roster {
		status, marked := stored[emp.EmployeeID]
		if !marked {
			status = attendance.DefaultStatus
		}
		items = append(items, attendance.DailyMarkingItem{
			EmployeeID: emp.EmployeeID,
			FullName:   emp.FullName,
			Department: emp.Department,
			Status:     string(status),
			Marked:     marked,
		})
	}

	return attendance.DailyMarkingResponse{
		Date:    calendar.Format(day),
		Records: items,
	}, nil
}

// SaveDailyMarking implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SaveDailyMarking(ctx context.Context, req attendance.BulkMarkAttendanceRequest) (attendance.DailyMarkingResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyMarkingResponse{}, err
	}

	roster, err := s.employeeRepo.List(ctx)
	if err != nil {
		return attendance.DailyMarkingResponse{}, fmt.Errorf("failed to list roster: %w", err)
	}

	onRoster := make(map[string]struct{}, len(roster))
	for _, emp := range roster {
		onRoster[emp.EmployeeID] = struct{}{}
	}

	// Later entries for the same employee override earlier ones
	explicit := make(map[string]attendance.Status, len(req.ParsedMarks))
	for _, m := range req.ParsedMarks {
		if _, ok := onRoster[m.EmployeeID]; !ok {
			slog.Warn("ignoring daily marking entry for employee not on roster", "employee_id", m.EmployeeID, "date", req.Date)
			continue
		}
		explicit[m.EmployeeID] = m.Status
	}

	marks := make([]attendance.Mark, 0, len(roster))
	items := make([]attendance.DailyMarkingItem, 0, len(roster))
	for _, emp := range roster {
		status, ok := explicit[emp.EmployeeID]
		if !ok {
			status = attendance.DefaultStatus
		}
		marks = append(marks, attendance.Mark{EmployeeID: emp.EmployeeID, Status: status})
		items = append(items, attendance.DailyMarkingItem{
			EmployeeID: emp.EmployeeID,
			FullName:   emp.FullName,
			Department: emp.Department,
			Status:     string(status),
			Marked:     true,
		})
	}

	if len(marks) > 0 {
		if _, err := s.attendanceRepo.BulkUpsert(ctx, req.ParsedDate, marks); err != nil {
			slog.Error("failed to save daily marking", "date", req.Date, "error", err)
			return attendance.DailyMarkingResponse{}, err
		}
		s.notify(req.ParsedDate)
	}

	slog.Info("daily marking saved", "date", req.Date, "employees", len(marks), "explicit", len(explicit))
	return attendance.DailyMarkingResponse{
		Date:    calendar.Format(req.ParsedDate),
		Records: items,
	}, nil
}

// CloseOutDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CloseOutDay(ctx context.Context, date string) (int, error) {
	day, err := calendar.Parse(date)
	if err != nil {
		return 0, validator.ValidationErrors{
			{Field: "date", Message: attendance.ErrInvalidDate.Error()},
		}
	}

	roster, err := s.employeeRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list roster: %w", err)
	}
	if len(roster) == 0 {
		return 0, nil
	}

	marks := make([]attendance.Mark, 0, len(roster))
	for _, emp := range roster {
		marks = append(marks, attendance.Mark{EmployeeID: emp.EmployeeID, Status: attendance.DefaultStatus})
	}

	// Insert-only, so a mark made after the roster was read is kept
	created, err := s.attendanceRepo.InsertMissing(ctx, day, marks)
	if err != nil {
		slog.Error("failed to close out day", "date", date, "error", err)
		return 0, err
	}

	if len(created) > 0 {
		s.notify(day)
	}
	return len(created), nil
}

// query validates the filter and fetches matching records together with the roster names
func (s *AttendanceServiceImpl) query(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, map[string]string, error) {
	if err := filter.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		records []attendance.Attendance
		names   map[string]string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.List(gCtx, filter.Parsed)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = s.rosterNames(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to query attendance: %w", err)
	}

	return records, names, nil
}

func (s *AttendanceServiceImpl) rosterNames(ctx context.Context) (map[string]string, error) {
	roster, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}

	names := make(map[string]string, len(roster))
	for _, emp := range roster {
		names[emp.EmployeeID] = emp.FullName
	}
	return names, nil
}

// withNames joins records with roster names; orphans get a nil name
func withNames(records []attendance.Attendance, names map[string]string) []attendance.AttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		var fullName *string
		if name, ok := names[r.EmployeeID]; ok {
			fullName = &name
		}
		responses = append(responses, attendance.NewAttendanceResponse(r, fullName))
	}
	return responses
}

func (s *AttendanceServiceImpl) notify(date time.Time) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(sse.TopicAttendance, sse.Event{
		Event: sse.EventAttendanceChanged,
		Data:  map[string]string{"date": calendar.Format(date)},
	})
}
