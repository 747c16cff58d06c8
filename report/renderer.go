package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"secureentry.com/secureentry/core"
)

// Renderer turns an aggregated report into an attachment body. The aggregator
// never formats anything itself; swapping this for a PDF renderer touches no
// core code.
type Renderer interface {
	Render(rep *core.Report) ([]byte, error)
}

const sheetName = "Work Time"

// WorkbookRenderer renders the report as an XLSX workbook.
type WorkbookRenderer struct{}

func (WorkbookRenderer) Render(rep *core.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%s - %s", rep.StartDate.Format("2006-01-02"), rep.EndDate.Format("2006-01-02"))
	f.SetCellValue(sheetName, "A1", "Work Time Report")
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Period: %s (%d days)", period, rep.WindowDays))

	headerRow := 4
	for col, title := range []string{"ID", "First Name", "Last Name", "Hours"} {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, title)
	}

	row := headerRow + 1
	for _, r := range rep.Rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.EmployeeId)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.FirstName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Surname)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.TotalHours)
		row++
	}

	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "TOTAL")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), rep.TotalHours)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row+1), fmt.Sprintf("Employees: %d", rep.Count))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
