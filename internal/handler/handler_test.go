package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Akshit358/Job-Tracker-CRM/internal/auth"
	"github.com/Akshit358/Job-Tracker-CRM/internal/handler"
	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	sqliteRepo "github.com/Akshit358/Job-Tracker-CRM/internal/repository/sqlite"
	"github.com/Akshit358/Job-Tracker-CRM/internal/service"
)

// testApp wires real services over an in-memory database behind a chi
// router, mirroring the production route tree. Handler tests go through
// HTTP end to end; only the mail transport is a stub.
type testApp struct {
	router *chi.Mux
	db     *sqliteRepo.DB
	tokens *auth.TokenService
	mail   *acceptAllMailer
}

type acceptAllMailer struct {
	sent int
}

func (m *acceptAllMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent++
	return nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	mail := &acceptAllMailer{}
	dispatcher := mailer.NewDispatcher(mail, db.EmailLogs, logger)

	authHandler := handler.NewAuthHandler(
		service.NewAuthService(db.Users, dispatcher, tokens, logger, "http://localhost:3000"))
	appHandler := handler.NewApplicationHandler(
		service.NewApplicationService(db.Applications, db.Activities, logger))
	adminHandler := handler.NewAdminHandler(
		service.NewAdminService(db.Users, dispatcher, db.EmailLogs, logger),
		service.NewAnalyticsService(db.Applications, db.Users, db.Analytics, logger))

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Get("/me", authHandler.HandleMe)
				r.Patch("/me", authHandler.HandleUpdateMe)
			})
		})
		r.Route("/applications", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/", appHandler.HandleList)
			r.Post("/", appHandler.HandleCreate)
			r.Get("/statistics", appHandler.HandleStatistics)
			r.Get("/{id}", appHandler.HandleGet)
			r.Put("/{id}", appHandler.HandleUpdate)
			r.Patch("/{id}", appHandler.HandleUpdate)
			r.Get("/{id}/activities", appHandler.HandleActivities)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(auth.RequireAdmin())
			r.Get("/dashboard", adminHandler.HandleDashboard)
			r.Post("/users/{id}/deactivate", adminHandler.HandleDeactivateUser)
			r.Delete("/users/{id}", adminHandler.HandleDeleteUser)
			r.Post("/broadcast", adminHandler.HandleBroadcast)
		})
	})

	return &testApp{router: router, db: db, tokens: tokens, mail: mail}
}

// seedUser inserts a user directly and returns it with a valid token.
func (a *testApp) seedUser(t *testing.T, email string, role model.Role) (*model.User, string) {
	t.Helper()
	user := &model.User{
		Email:           email,
		PasswordHash:    "$2a$04$notarealhash",
		FirstName:       "Test",
		Role:            role,
		IsActive:        true,
		IsEmailVerified: true,
	}
	require.NoError(t, a.db.Users.Create(context.Background(), user))
	token, err := a.tokens.Generate(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}
