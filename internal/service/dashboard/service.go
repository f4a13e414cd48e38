package dashboard

import (
	"context"
	"sort"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/dashboard"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/employee"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	clock          calendar.Clock
}

func NewDashboardService(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	clock calendar.Clock,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		clock:          clock,
	}
}

// GetDashboard returns the snapshot for today using parallel goroutines
// 2 goroutines: roster and today's attendance
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	today := s.clock.Today()

	var (
		roster  []employee.Employee
		records []attendance.Attendance
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Roster (total and departments)
	g.Go(func() error {
		var err error
		roster, err = s.employeeRepo.List(gCtx)
		return err
	})

	// 2. Today's stored records; employees without one are not counted
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.List(gCtx, attendance.Filter{Date: &today})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tally := attendance.Count(records)

	return &dashboard.DashboardResponse{
		TotalEmployees: len(roster),
		PresentToday:   tally.Present,
		AbsentToday:    tally.Absent,
		Departments:    departmentCounts(roster),
		Date:           calendar.Format(today),
	}, nil
}

// departmentCounts groups the roster by raw department value, largest first then by name
func departmentCounts(roster []employee.Employee) []dashboard.DepartmentCount {
	counts := make(map[string]int)
	for _, e := range roster {
		counts[e.Department]++
	}

	departments := make([]dashboard.DepartmentCount, 0, len(counts))
	for name, count := range counts {
		departments = append(departments, dashboard.DepartmentCount{Department: name, Count: count})
	}
	sort.Slice(departments, func(i, j int) bool {
		if departments[i].Count != departments[j].Count {
			return departments[i].Count > departments[j].Count
		}
		return departments[i].Department < departments[j].Department
	})

	return departments
}
