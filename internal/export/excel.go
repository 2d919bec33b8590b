package export

import (
	"fmt"
	"time"

	"roomdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{"Booking ID", "Room", "User", "Start", "End", "Duration", "Status", "Notes", "Admin Notes"}

// Workbook renders the given bookings into an xlsx workbook, one row
// per booking, ordered as provided. The caller owns the returned file
// and must Close it.
func Workbook(from, to time.Time, bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		from.Format("2006-01-02"), to.Format("2006-01-02")))

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 3
		values := []any{
			booking.ID,
			booking.RoomName,
			booking.UserName,
			booking.StartTime.Format(time.RFC3339),
			booking.EndTime.Format(time.RFC3339),
			booking.Duration().String(),
			booking.Status,
			booking.Notes,
			booking.AdminNotes,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "C", 22)
	_ = f.SetColWidth(sheetName, "D", "E", 24)
	_ = f.SetColWidth(sheetName, "F", lastCol, 16)

	return f, nil
}
