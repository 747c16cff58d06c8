package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSession(t *testing.T, db *gorm.DB, employeeID uint, entry time.Time, minutes int) {
	t.Helper()
	session := NewWorkSession(employeeID, entry, entry.Add(time.Duration(minutes)*time.Minute))
	require.NoError(t, db.Create(&session).Error)
}

func TestBuildReportAggregatesPerEmployee(t *testing.T) {
	db := newTestDB(t)
	photos := newMemPhotoStore()
	anna := seedEmployee(t, db, photos, "anna@example.com", false)
	piotr := seedEmployee(t, db, photos, "piotr@example.com", false)

	now := time.Now()
	seedSession(t, db, anna.EmployeeId, now.Add(-48*time.Hour), 120)
	seedSession(t, db, anna.EmployeeId, now.Add(-24*time.Hour), 60)
	seedSession(t, db, piotr.EmployeeId, now.Add(-24*time.Hour), 90)

	// outside the window: must not count
	seedSession(t, db, anna.EmployeeId, now.Add(-40*24*time.Hour), 600)

	rep, err := BuildReport(db, 30)
	require.NoError(t, err)

	assert.Equal(t, 30, rep.WindowDays)
	assert.Equal(t, 2, rep.Count)
	require.Len(t, rep.Rows, 2)

	// ordered by ascending employee id
	assert.Equal(t, anna.EmployeeId, rep.Rows[0].EmployeeId)
	assert.Equal(t, piotr.EmployeeId, rep.Rows[1].EmployeeId)

	assert.InDelta(t, 3.0, rep.Rows[0].TotalHours, 1e-9)
	assert.InDelta(t, 1.5, rep.Rows[1].TotalHours, 1e-9)
	assert.InDelta(t, 4.5, rep.TotalHours, 1e-9)
}

func TestBuildReportEmptyWindow(t *testing.T) {
	db := newTestDB(t)

	rep, err := BuildReport(db, 7)
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Zero(t, rep.TotalHours)
	assert.Zero(t, rep.Count)
}
