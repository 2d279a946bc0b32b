package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/stock-portfolio-tracker/internal/testutil"
	"github.com/ndewijer/stock-portfolio-tracker/internal/version"
)

func setupSystemHandler(t *testing.T) (*SystemHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewSystemHandler(testutil.NewTestSystemService(t, db)), db
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("returns healthy status when database is connected", func(t *testing.T) {
		handler, _ := setupSystemHandler(t)
		w := httptest.NewRecorder()

		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := testutil.DecodeJSON[HealthResponse](t, w)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "connected", body.Database)
		assert.Empty(t, body.Error)
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		handler, db := setupSystemHandler(t)
		db.Close()
		w := httptest.NewRecorder()

		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := testutil.DecodeJSON[HealthResponse](t, w)
		assert.Equal(t, "unhealthy", body.Status)
		assert.NotEmpty(t, body.Error)
	})
}

func TestSystemHandler_Version(t *testing.T) {
	t.Run("returns version information successfully", func(t *testing.T) {
		handler, _ := setupSystemHandler(t)
		w := httptest.NewRecorder()

		handler.Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := testutil.DecodeJSON[VersionInfoResponse](t, w)
		assert.Equal(t, version.Version, body.AppVersion)
		assert.Equal(t, int64(1), body.DbVersion)
	})

	t.Run("returns 500 when database is closed", func(t *testing.T) {
		handler, db := setupSystemHandler(t)
		db.Close()
		w := httptest.NewRecorder()

		handler.Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
