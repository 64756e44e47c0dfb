package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup
// closes it so each test is fully isolated.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$notarealhash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestApplication(t *testing.T, db *DB, userID, company, title string, status model.Status) *model.Application {
	t.Helper()
	app := &model.Application{
		UserID:          userID,
		CompanyName:     company,
		JobTitle:        title,
		ApplicationDate: model.DateOf(time.Now()),
		Status:          status,
	}
	if err := db.Applications.Create(context.Background(), app, nil); err != nil {
		t.Fatalf("failed to create test application: %v", err)
	}
	return app
}
