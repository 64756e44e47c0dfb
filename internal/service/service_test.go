package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	sqliteRepo "github.com/Akshit358/Job-Tracker-CRM/internal/repository/sqlite"
)

// Service tests run against real in-memory SQLite stores so that the SQL
// the services depend on is exercised too. Only the mail transport is
// faked.

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestDB(t *testing.T) *sqliteRepo.DB {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeMailer records sends and fails delivery for addresses listed in
// failFor.
type fakeMailer struct {
	sent    []fakeEmail
	failFor map[string]bool
}

type fakeEmail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if f.failFor[to] {
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, fakeEmail{To: to, Subject: subject, Body: body})
	return nil
}

func newTestDispatcher(t *testing.T, db *sqliteRepo.DB) (*mailer.Dispatcher, *fakeMailer) {
	t.Helper()
	fm := &fakeMailer{failFor: make(map[string]bool)}
	return mailer.NewDispatcher(fm, db.EmailLogs, newTestLogger()), fm
}

func seedUser(t *testing.T, db *sqliteRepo.DB, email string, verified bool) *model.User {
	t.Helper()
	user := &model.User{
		Email:           email,
		PasswordHash:    "$2a$04$notarealhash",
		FirstName:       "Test",
		IsActive:        true,
		IsEmailVerified: verified,
	}
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedApplication(t *testing.T, db *sqliteRepo.DB, userID, company string, status model.Status, applied time.Time) *model.Application {
	t.Helper()
	app := &model.Application{
		UserID:          userID,
		CompanyName:     company,
		JobTitle:        "Engineer",
		ApplicationDate: model.DateOf(applied),
		Status:          status,
	}
	if err := db.Applications.Create(context.Background(), app, nil); err != nil {
		t.Fatalf("failed to seed application: %v", err)
	}
	return app
}
