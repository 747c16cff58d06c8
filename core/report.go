package core

import (
	"time"

	"gorm.io/gorm"
)

type ReportRow struct {
	EmployeeId uint    `json:"employeeId"`
	FirstName  string  `json:"firstName"`
	Surname    string  `json:"lastName"`
	TotalHours float64 `json:"totalHours"`
}

type Report struct {
	WindowDays int         `json:"periodDays"`
	StartDate  time.Time   `json:"startDate"`
	EndDate    time.Time   `json:"endDate"`
	Rows       []ReportRow `json:"rows"`
	TotalHours float64     `json:"totalHours"`
	Count      int         `json:"employeesCount"`
}

// BuildReport sums session minutes per employee over the trailing window and
// converts them to hours. Rows come back ordered by ascending employee id.
// The aggregator only computes numbers; rendering and delivery are the
// caller's collaborators.
func BuildReport(db *gorm.DB, windowDays int) (*Report, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -windowDays)

	var totals []struct {
		EmployeeId uint
		FirstName  string
		Surname    string
		Minutes    int64
	}
	err := db.Table("work_sessions").
		Select(`work_sessions.employee_id AS employee_id,
			employees.first_name AS first_name,
			employees.surname AS surname,
			SUM(work_sessions.duration_minutes) AS minutes`).
		Joins("JOIN employees ON employees.employee_id = work_sessions.employee_id").
		Where("work_sessions.entry_time >= ?", since).
		Group("work_sessions.employee_id, employees.first_name, employees.surname").
		Order("work_sessions.employee_id ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	report := &Report{
		WindowDays: windowDays,
		StartDate:  since,
		EndDate:    now,
		Rows:       make([]ReportRow, 0, len(totals)),
	}
	for _, t := range totals {
		hours := float64(t.Minutes) / 60
		report.Rows = append(report.Rows, ReportRow{
			EmployeeId: t.EmployeeId,
			FirstName:  t.FirstName,
			Surname:    t.Surname,
			TotalHours: hours,
		})
		report.TotalHours += hours
	}
	report.Count = len(report.Rows)
	return report, nil
}
