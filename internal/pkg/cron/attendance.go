package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
)

const CloseOutJobName = "close_out_previous_day"

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	clock         calendar.Clock
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, clock calendar.Clock) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		clock:         clock,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(CloseOutJobName, interval, j.CloseOutPreviousDay)
}

// CloseOutPreviousDay stores Absent for every roster employee left unmarked
// yesterday. Only missing records are inserted; existing marks, including ones
// made while the job runs, are never touched.
func (j *AttendanceJobs) CloseOutPreviousDay(ctx context.Context) error {
	day := calendar.Format(j.clock.Today().AddDate(0, 0, -1))

	created, err := j.attendanceSvc.CloseOutDay(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to close out %s: %w", day, err)
	}

	if created == 0 {
		slog.Debug("Cron: nothing to close out", "date", day)
		return nil
	}

	slog.Info("Cron: closed out attendance", "date", day, "marked_absent", created)
	return nil
}
