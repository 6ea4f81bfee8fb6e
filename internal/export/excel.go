// Package export renders day schedules as Excel workbooks, one sheet per
// staff member.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"salonbook/internal/model"
)

// Directory supplies staff and their bookings for the exported window.
type Directory interface {
	ListStaff(ctx context.Context) ([]model.StaffMember, error)
	StaffBookings(ctx context.Context, staffID string, from, to time.Time) ([]model.Booking, error)
}

var scheduleColumns = []string{"Start", "End", "Duration (min)", "Customer", "Status"}

// ScheduleExporter writes the booked schedule of one day.
type ScheduleExporter struct {
	dir Directory
	loc *time.Location
}

func NewScheduleExporter(dir Directory, loc *time.Location) *ScheduleExporter {
	return &ScheduleExporter{dir: dir, loc: loc}
}

// WriteDay renders the schedule for the given local date to w.
func (e *ScheduleExporter) WriteDay(ctx context.Context, date time.Time, w io.Writer) error {
	staffSet, err := e.dir.ListStaff(ctx)
	if err != nil {
		return fmt.Errorf("list staff: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, e.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, staff := range staffSet {
		sheet := sheetName(staff.Name)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		for col, name := range scheduleColumns {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return err
			}
		}
		endCell, _ := excelize.CoordinatesToCellName(len(scheduleColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)

		bookings, err := e.dir.StaffBookings(ctx, staff.ID, dayStart.UTC(), dayEnd.UTC())
		if err != nil {
			return fmt.Errorf("bookings for %s: %w", staff.ID, err)
		}

		for row, b := range bookings {
			values := []interface{}{
				b.StartTime.In(e.loc).Format("15:04"),
				b.EndTime.In(e.loc).Format("15:04"),
				b.DurationMinutes,
				b.CustomerID,
				b.Status,
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
		}
	}

	return f.Write(w)
}

// sheetName trims a staff name to the 31-char Excel sheet limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
