package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

type memPhotoStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	failSave bool
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{files: make(map[string][]byte)}
}

func (m *memPhotoStore) Save(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("photo store unavailable")
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memPhotoStore) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, errors.New("no such photo: " + name)
	}
	return data, nil
}

func (m *memPhotoStore) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func seedEmployee(t *testing.T, db *gorm.DB, photos *memPhotoStore, email string, withPhoto bool) *Employee {
	t.Helper()

	emp := Employee{Email: email, FirstName: "Jan", Surname: "Kowalski"}
	require.NoError(t, db.Create(&emp).Error)

	if withPhoto {
		name := "user_seed.png"
		require.NoError(t, photos.Save(name, []byte("reference-image")))
		require.NoError(t, db.Model(&Employee{}).Where("employee_id = ?", emp.EmployeeId).
			Update("photo_name", name).Error)
		emp.PhotoName = &name
	}
	return &emp
}

func countAttempts(t *testing.T, db *gorm.DB, employeeID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&AttemptRecord{}).Where("employee_id = ?", employeeID).Count(&n).Error)
	return n
}

func currentPresence(t *testing.T, db *gorm.DB, employeeID uint) bool {
	t.Helper()
	emp, err := FindEmployeeByID(db, employeeID)
	require.NoError(t, err)
	require.NotNil(t, emp)
	return emp.IsPresent
}
