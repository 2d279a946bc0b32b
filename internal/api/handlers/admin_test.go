package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/testutil"
)

func TestAdminHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.NewAccount().Admin().Build(t, db)
	user := testutil.NewAccount().Build(t, db)
	testutil.NewPosition(user.ID).Build(t, db)
	handler := NewAdminHandler(testutil.NewTestAdminService(t, db))

	withID := func(method, path, id string, body any) *http.Request {
		req := testutil.NewJSONRequest(t, method, path, body, map[string]string{"uuid": id})
		return testutil.AsAccount(req, admin)
	}

	t.Run("lists users with counts", func(t *testing.T) {
		w := httptest.NewRecorder()

		handler.ListUsers(w, testutil.AsAccount(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), admin))

		require.Equal(t, http.StatusOK, w.Code)
		summaries := testutil.DecodeJSON[[]model.AccountSummary](t, w)
		require.Len(t, summaries, 2)
		for _, s := range summaries {
			if s.ID == user.ID {
				assert.Equal(t, 1, s.PositionCount)
			}
		}
	})

	t.Run("confirms and unconfirms email", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ConfirmUserEmail(w, withID(http.MethodPost, "/confirm_email", user.ID, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, testutil.DecodeJSON[model.Account](t, w).EmailConfirmed)

		w = httptest.NewRecorder()
		handler.UnconfirmUserEmail(w, withID(http.MethodPost, "/unconfirm_email", user.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, testutil.DecodeJSON[model.Account](t, w).EmailConfirmed)
	})

	t.Run("changes email", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ChangeUserEmail(w, withID(http.MethodPut, "/email", user.ID, map[string]string{"email": "renamed@example.com"}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "renamed@example.com", testutil.DecodeJSON[model.Account](t, w).Email)

		w = httptest.NewRecorder()
		handler.ChangeUserEmail(w, withID(http.MethodPut, "/email", user.ID, map[string]string{"email": admin.Email}))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("changes password", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ChangeUserPassword(w, withID(http.MethodPut, "/password", user.ID, map[string]string{"password": "FlaskIsTheBest987"}))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ConfirmUserEmail(w, withID(http.MethodPost, "/confirm_email", testutil.MakeID(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admin cannot be deleted", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.DeleteUser(w, withID(http.MethodDelete, "/", admin.ID, nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deletes user", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.DeleteUser(w, withID(http.MethodDelete, "/", user.ID, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		testutil.AssertRowCount(t, db, "position", 0)
	})
}
