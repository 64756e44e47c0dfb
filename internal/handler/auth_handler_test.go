package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshit358/Job-Tracker-CRM/internal/handler"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":     "ada@example.com",
		"password":  "password123",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decodeBody[model.User](t, rec)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsEmailVerified)
	assert.Equal(t, 1, app.mail.sent, "registration sends a verification email")

	rec = app.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}](t, rec)
	require.NotEmpty(t, login.Token)

	rec = app.request(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[model.User](t, rec)
	assert.Equal(t, user.ID, me.ID)
}

func TestUpdateMe(t *testing.T) {
	app := newTestApp(t)
	user, token := app.seedUser(t, "rename@example.com", model.RoleUser)

	rec := app.request(t, http.MethodPatch, "/api/auth/me", token, map[string]any{
		"firstName": "Grace",
		"lastName":  "Hopper",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[model.User](t, rec)
	assert.Equal(t, "Grace", me.FirstName)
	assert.Equal(t, "Hopper", me.LastName)
	assert.Equal(t, user.Email, me.Email)

	// Omitting a field leaves it alone.
	rec = app.request(t, http.MethodPatch, "/api/auth/me", token, map[string]any{
		"lastName": "Hopper-Murray",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	me = decodeBody[model.User](t, rec)
	assert.Equal(t, "Grace", me.FirstName)
	assert.Equal(t, "Hopper-Murray", me.LastName)

	rec = app.request(t, http.MethodPatch, "/api/auth/me", "", map[string]any{"firstName": "X"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]any{
		"email":     "dupe@example.com",
		"password":  "password123",
		"firstName": "D",
	}
	rec := app.request(t, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[handler.ErrorResponse](t, rec)
	assert.Equal(t, "conflict", body.Error)
}

func TestLogin_BadCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_InvalidJSON(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/auth/register", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
