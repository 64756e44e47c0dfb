package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshit358/Job-Tracker-CRM/internal/handler"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.seedUser(t, "user@example.com", model.RoleUser)

	rec := app.request(t, http.MethodGet, "/api/admin/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminDashboard(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.seedUser(t, "admin@example.com", model.RoleAdmin)
	app.seedUser(t, "user@example.com", model.RoleUser)

	rec := app.request(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dash := decodeBody[struct {
		Users struct {
			Total int `json:"total"`
		} `json:"users"`
	}](t, rec)
	assert.Equal(t, 2, dash.Users.Total)
}

func TestAdminSelfDeactivateIsBadRequest(t *testing.T) {
	app := newTestApp(t)
	admin, adminToken := app.seedUser(t, "admin@example.com", model.RoleAdmin)

	rec := app.request(t, http.MethodPost, "/api/admin/users/"+admin.ID+"/deactivate", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[handler.ErrorResponse](t, rec)
	assert.Equal(t, "you cannot deactivate your own account", body.Message)
}

func TestAdminDeactivateAndDeleteOtherUser(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.seedUser(t, "admin@example.com", model.RoleAdmin)
	target, _ := app.seedUser(t, "target@example.com", model.RoleUser)

	rec := app.request(t, http.MethodPost, "/api/admin/users/"+target.ID+"/deactivate", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deactivated := decodeBody[model.User](t, rec)
	assert.False(t, deactivated.IsActive)

	rec = app.request(t, http.MethodDelete, "/api/admin/users/"+target.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(t, http.MethodDelete, "/api/admin/users/"+target.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminBroadcastEndpoint(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.seedUser(t, "admin@example.com", model.RoleAdmin)
	app.seedUser(t, "one@example.com", model.RoleUser)
	app.seedUser(t, "two@example.com", model.RoleUser)

	rec := app.request(t, http.MethodPost, "/api/admin/broadcast", adminToken, map[string]any{
		"subject": "Maintenance",
		"message": "Saturday 02:00 UTC.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeBody[struct {
		Recipients int `json:"recipients"`
		Sent       int `json:"sent"`
		Failed     int `json:"failed"`
	}](t, rec)
	assert.Equal(t, 3, result.Recipients, "admin included: all seeded users are verified and active")
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestAdminBroadcast_MissingFields(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.seedUser(t, "admin@example.com", model.RoleAdmin)

	rec := app.request(t, http.MethodPost, "/api/admin/broadcast", adminToken, map[string]any{
		"subject": "",
		"message": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
