package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/infrastructure/facematch"
	"secureentry.com/secureentry/security"
)

type memStore struct{ files map[string][]byte }

func (m *memStore) Save(name string, data []byte) error {
	m.files[name] = data
	return nil
}

func (m *memStore) Read(name string) ([]byte, error) {
	return m.files[name], nil
}

func newGateRouter(t *testing.T) (*gin.Engine, *gorm.DB, *core.GateEngine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, core.Migrate(db))

	matcher := facematch.MatcherFunc(func(context.Context, []byte, []byte, float64) (bool, error) {
		return true, nil
	})
	engine := core.NewGateEngine(db, &memStore{files: map[string][]byte{}}, matcher, 0.5)

	r := gin.New()
	r.POST("/api/entries", GateAccessHandler(engine))
	return r, db, engine
}

func swipeRequest(t *testing.T, payload string, photo []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("qr_code_payload", payload))
	part, err := writer.CreateFormFile("photo", "probe.png")
	require.NoError(t, err)
	_, err = part.Write(photo)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/entries", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestGateAccessMalformedPayload(t *testing.T) {
	r, db, _ := newGateRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, swipeRequest(t, "not-a-credential", []byte("probe")))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// rejected before the pipeline: nothing audited
	var count int64
	require.NoError(t, db.Model(&core.AttemptRecord{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGateAccessDenialIsStructured(t *testing.T) {
	r, db, _ := newGateRouter(t)

	// employee without a reference photo, valid-looking credential
	emp := core.Employee{Email: "gate@example.com", FirstName: "Jan", Surname: "Kowalski"}
	require.NoError(t, db.Create(&emp).Error)
	payload := security.EncodeCredential(emp.EmployeeId, "some-secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, swipeRequest(t, payload, []byte("probe")))

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Data core.SwipeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Granted)
	require.NotNil(t, resp.Data.DenialReason)
	assert.Equal(t, core.DenialNoReferencePhoto, *resp.Data.DenialReason)

	var count int64
	require.NoError(t, db.Model(&core.AttemptRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGateAccessGranted(t *testing.T) {
	r, db, engine := newGateRouter(t)

	emp := core.Employee{Email: "granted@example.com", FirstName: "Anna", Surname: "Nowak"}
	require.NoError(t, db.Create(&emp).Error)
	name := "user_ref.png"
	require.NoError(t, db.Model(&core.Employee{}).Where("employee_id = ?", emp.EmployeeId).
		Update("photo_name", name).Error)

	credential, err := engine.IssueCredential(emp.EmployeeId)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, swipeRequest(t, credential, []byte("probe")))

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data core.SwipeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Granted)
	assert.Equal(t, core.DirectionEntry, resp.Data.Direction)
	assert.True(t, resp.Data.IsPresent)
}

func TestGateAccessMissingPhoto(t *testing.T) {
	r, _, _ := newGateRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("qr_code_payload", security.EncodeCredential(1, "secret")))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/entries", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
