package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "create@example.com",
		PasswordHash: "hash",
		FirstName:    "Ada",
		IsActive:     true,
	}
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.Role != model.RoleUser {
		t.Errorf("Role = %q, want default %q", user.Role, model.RoleUser)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dupe@example.com")

	duplicate := &model.User{Email: "dupe@example.com", PasswordHash: "hash", FirstName: "Bob"}
	err := db.Users.Create(context.Background(), duplicate)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "byemail@example.com")

	found, err := db.Users.GetByEmail(context.Background(), "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	if _, err := db.Users.GetByEmail(context.Background(), "missing@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByToken_EmptyNeverMatches(t *testing.T) {
	db := newTestDB(t)
	// A user whose token column is empty must not be findable by "".
	createTestUser(t, db, "token@example.com")

	if _, err := db.Users.GetByToken(context.Background(), ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByToken(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByToken(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "verify@example.com")
	user.VerificationToken = "tok-123"
	if err := db.Users.Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Users.GetByToken(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("ID = %q, want %q", found.ID, user.ID)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "missing", Email: "ghost@example.com"}
	if err := db.Users.Update(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete_CascadesApplications(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "cascade@example.com")
	createTestApplication(t, db, user.ID, "Acme", "Engineer", model.StatusApplied)

	if err := db.Users.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := db.Applications.Count(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("applications after user delete = %d, want 0", count)
	}
}

func TestUserList_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	active := createTestUser(t, db, "active@example.com")

	inactive := createTestUser(t, db, "inactive@example.com")
	inactive.IsActive = false
	if err := db.Users.Update(ctx, inactive); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	isActive := true
	users, err := db.Users.List(ctx, repository.UserFilter{IsActive: &isActive})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 1 || users[0].ID != active.ID {
		t.Fatalf("List(active) = %d users, want just %s", len(users), active.ID)
	}

	users, err = db.Users.List(ctx, repository.UserFilter{Search: "inactive"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 1 || users[0].ID != inactive.ID {
		t.Fatalf("List(search) = %d users, want just %s", len(users), inactive.ID)
	}
}

func TestUserListActive_VerifiedOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	verified := createTestUser(t, db, "v@example.com")
	verified.IsEmailVerified = true
	if err := db.Users.Update(ctx, verified); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	createTestUser(t, db, "unverified@example.com")

	all, err := db.Users.ListActive(ctx, false)
	if err != nil {
		t.Fatalf("ListActive(false) error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListActive(false) = %d users, want 2", len(all))
	}

	onlyVerified, err := db.Users.ListActive(ctx, true)
	if err != nil {
		t.Fatalf("ListActive(true) error = %v", err)
	}
	if len(onlyVerified) != 1 || onlyVerified[0].ID != verified.ID {
		t.Errorf("ListActive(true) = %d users, want just the verified one", len(onlyVerified))
	}
}

func TestUserCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	verified := createTestUser(t, db, "one@example.com")
	verified.IsEmailVerified = true
	if err := db.Users.Update(ctx, verified); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	inactive := createTestUser(t, db, "two@example.com")
	inactive.IsActive = false
	if err := db.Users.Update(ctx, inactive); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	monthStart := model.DateOf(time.Now()).AddDate(0, 0, -1)
	counts, err := db.Users.Counts(ctx, monthStart)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	if counts.Total != 2 {
		t.Errorf("Total = %d, want 2", counts.Total)
	}
	if counts.Active != 1 {
		t.Errorf("Active = %d, want 1", counts.Active)
	}
	if counts.Verified != 1 {
		t.Errorf("Verified = %d, want 1", counts.Verified)
	}
	if counts.NewThisMonth != 2 {
		t.Errorf("NewThisMonth = %d, want 2", counts.NewThisMonth)
	}
}
