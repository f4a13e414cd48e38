package attendance

import (
	"context"
	"fmt"
	"io"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/attendance"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/calendar"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Attendance"
	unknownEmployee   = "(unknown employee)"
	exportDefaultName = "Sheet1"
)

var exportHeaders = []string{"Date", "Employee ID", "Full Name", "Status"}

// ExportAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportAttendance(ctx context.Context, filter attendance.AttendanceFilter, w io.Writer) error {
	records, names, err := s.query(ctx, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(exportDefaultName, exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range records {
		name, ok := names[r.EmployeeID]
		if !ok {
			name = unknownEmployee
		}
		row := []interface{}{calendar.Format(r.Date), r.EmployeeID, name, string(r.Status)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "B", 14)
	_ = f.SetColWidth(exportSheet, "C", "C", 28)
	_ = f.SetColWidth(exportSheet, "D", "D", 10)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
