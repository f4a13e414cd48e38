package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
)

type recordKey struct {
	employeeID string
	date       string
}

func keyOf(employeeID string, date time.Time) recordKey {
	return recordKey{employeeID: employeeID, date: calendar.Format(date)}
}

type attendanceRepository struct {
	mu      sync.RWMutex
	records map[recordKey]attendance.Attendance
	now     func() time.Time
}

func NewAttendanceRepository() attendance.AttendanceRepository {
	return &attendanceRepository{
		records: make(map[recordKey]attendance.Attendance),
		now:     time.Now,
	}
}

// Upsert implements attendance.AttendanceRepository.
func (a *attendanceRepository) Upsert(ctx context.Context, employeeID string, date time.Time, status attendance.Status) (attendance.Attendance, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.upsertLocked(employeeID, date, status)
}

// upsertLocked requires a.mu to be held for writing.
func (a *attendanceRepository) upsertLocked(employeeID string, date time.Time, status attendance.Status) (attendance.Attendance, error) {
	now := a.now().UTC()
	key := keyOf(employeeID, date)

	if existing, ok := a.records[key]; ok {
		existing.Status = status
		existing.UpdatedAt = now
		a.records[key] = existing
		return existing, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	att := attendance.Attendance{
		ID:         id.String(),
		EmployeeID: employeeID,
		Date:       calendar.DateOf(date),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	a.records[key] = att
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	att, ok := a.records[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	records := make([]attendance.Attendance, 0)
	for _, att := range a.records {
		if filter.Matches(att) {
			records = append(records, att)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})

	return records, nil
}

// BulkUpsert implements attendance.AttendanceRepository.
// The whole batch is applied under one write lock.
func (a *attendanceRepository) BulkUpsert(ctx context.Context, date time.Time, marks []attendance.Mark) ([]attendance.Attendance, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// A failure part way restores every record the batch touched.
	snapshot := make(map[recordKey]attendance.Attendance, len(marks))
	for _, m := range marks {
		key := keyOf(m.EmployeeID, date)
		if old, ok := a.records[key]; ok {
			if _, seen := snapshot[key]; !seen {
				snapshot[key] = old
			}
		}
	}

	records := make([]attendance.Attendance, 0, len(marks))
	for _, m := range marks {
		att, err := a.upsertLocked(m.EmployeeID, date, m.Status)
		if err != nil {
			a.restoreLocked(date, marks, snapshot)
			return nil, fmt.Errorf("failed to bulk upsert attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, nil
}

func (a *attendanceRepository) restoreLocked(date time.Time, marks []attendance.Mark, snapshot map[recordKey]attendance.Attendance) {
	for _, m := range marks {
		key := keyOf(m.EmployeeID, date)
		if old, ok := snapshot[key]; ok {
			a.records[key] = old
		} else {
			delete(a.records, key)
		}
	}
}

// InsertMissing implements attendance.AttendanceRepository.
// The existence check and the writes share one write lock.
func (a *attendanceRepository) InsertMissing(ctx context.Context, date time.Time, marks []attendance.Mark) ([]attendance.Attendance, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records := make([]attendance.Attendance, 0, len(marks))
	inserted := make([]attendance.Mark, 0, len(marks))
	for _, m := range marks {
		if _, exists := a.records[keyOf(m.EmployeeID, date)]; exists {
			continue
		}
		att, err := a.upsertLocked(m.EmployeeID, date, m.Status)
		if err != nil {
			a.restoreLocked(date, inserted, nil)
			return nil, fmt.Errorf("failed to insert missing attendance: %w", err)
		}
		inserted = append(inserted, m)
		records = append(records, att)
	}

	return records, nil
}
