package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"secureentry.com/secureentry/core"
)

func TestWorkbookRendererRows(t *testing.T) {
	end := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rep := &core.Report{
		WindowDays: 30,
		StartDate:  end.AddDate(0, 0, -30),
		EndDate:    end,
		Rows: []core.ReportRow{
			{EmployeeId: 1, FirstName: "Anna", Surname: "Nowak", TotalHours: 3},
			{EmployeeId: 2, FirstName: "Piotr", Surname: "Zielinski", TotalHours: 1.5},
		},
		TotalHours: 4.5,
		Count:      2,
	}

	data, err := WorkbookRenderer{}.Render(rep)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Work Time Report", get("A1"))
	assert.Equal(t, "ID", get("A4"))
	assert.Equal(t, "Anna", get("B5"))
	assert.Equal(t, "Zielinski", get("C6"))
	assert.Equal(t, "1.5", get("D6"))
	assert.Equal(t, "TOTAL", get("A8"))
	assert.Equal(t, "4.5", get("D8"))
}

func TestWorkbookRendererEmptyReport(t *testing.T) {
	now := time.Now()
	rep := &core.Report{WindowDays: 7, StartDate: now.AddDate(0, 0, -7), EndDate: now}

	data, err := WorkbookRenderer{}.Render(rep)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
