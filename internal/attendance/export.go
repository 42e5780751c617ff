package attendance

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var summaryHeaders = []string{
	"Employee Code", "Employee", "Department", "Days Present", "Late Days", "Missing Punch-outs", "Worked Hours",
}

// ExportMonthlySummary writes the period summary as an xlsx workbook to w.
func (s *Service) ExportMonthlySummary(ctx context.Context, w io.Writer, period Period, departmentID int64) error {
	summaries, err := s.MonthlySummary(ctx, period, departmentID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Attendance summary %s to %s", period.From.Format(dateLayout), period.To.Format(dateLayout))
	if err := f.SetCellValue(summarySheet, "A1", title); err != nil {
		return err
	}
	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(summaryHeaders), 2)
	if err := f.SetCellStyle(summarySheet, "A2", last, headerStyle); err != nil {
		return err
	}

	for i, sum := range summaries {
		values := []interface{}{
			sum.EmployeeCode,
			sum.EmployeeName,
			sum.DepartmentName,
			sum.DaysPresent,
			sum.LateDays,
			sum.MissingPunchOuts,
			math.Round(sum.WorkedHours*100) / 100,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+3)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "G", 18); err != nil {
		return err
	}

	s.logger.Info("attendance summary exported", "rows", len(summaries), "from", period.From.Format(dateLayout), "to", period.To.Format(dateLayout))
	return f.Write(w)
}
