// Package repository defines the persistence interfaces consumed by the
// service layer. Services depend on these interfaces, never on a concrete
// store — internal/repository/sqlite provides the production
// implementation, tests provide in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

// Pagination bounds shared by every list query. A zero limit means
// DefaultPageSize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions is shared limit/offset pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

// ApplicationFilter narrows an application listing. Zero values mean
// "no constraint". Company and JobTitle are case-insensitive substring
// matches; Statuses is an OR set.
type ApplicationFilter struct {
	Company     string
	JobTitle    string
	Statuses    []model.Status
	DateFrom    *time.Time // application_date >=
	DateTo      *time.Time // application_date <=
	CreatedFrom *time.Time // created_at >=
	CreatedTo   *time.Time // created_at <=
	ListOptions
}

// UserFilter narrows an admin user listing.
type UserFilter struct {
	Role       model.Role
	IsVerified *bool
	IsActive   *bool
	Search     string // matches first name, last name, or email
	ListOptions
}

// UserCounts aggregates the user table for the admin dashboard.
type UserCounts struct {
	Total        int
	Active       int
	Verified     int
	NewThisMonth int
}

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, error)
	// ListActive returns active users, optionally restricted to verified
	// accounts. Used by aggregation runs, summaries, and broadcasts.
	ListActive(ctx context.Context, verifiedOnly bool) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context, monthStart time.Time) (*UserCounts, error)
}

// ApplicationRepository stores job applications and their audit trail.
//
// Writes that must be atomic with activity appends take the activities as
// arguments: Create and Update run the record write plus every append in
// a single transaction, so either all of them persist or none do.
//
// Read methods that take a userID treat the empty string as "system-wide"
// (all users); a non-empty userID scopes the query to that owner. GetByID
// always requires an owner and returns NotFound for both a missing id and
// an id owned by someone else.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application, initial *model.Activity) error
	GetByID(ctx context.Context, id, userID string) (*model.Application, error)
	List(ctx context.Context, userID string, filter ApplicationFilter) ([]model.Application, error)
	Update(ctx context.Context, app *model.Application, activities ...*model.Activity) error

	Count(ctx context.Context, userID string) (int, error)
	CountActive(ctx context.Context, userID string) (int, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	// CountBetween counts applications whose application_date falls in the
	// half-open interval [from, until).
	CountBetween(ctx context.Context, userID string, from, until time.Time) (int, error)
	StatusDistribution(ctx context.Context, userID string) (map[model.Status]int, error)
	// TopCompanies ranks by count descending, company name ascending on
	// ties, truncated to limit. The secondary key keeps output stable
	// across identical runs.
	TopCompanies(ctx context.Context, userID string, limit int) ([]model.CompanyCount, error)
	Recent(ctx context.Context, userID string, limit int) ([]model.Application, error)
	ListByStatuses(ctx context.Context, userID string, statuses []model.Status) ([]model.Application, error)
	// InterviewsOn returns applications in interviewing status whose
	// interview falls on the given calendar day.
	InterviewsOn(ctx context.Context, day time.Time) ([]model.Application, error)
	CreatedSince(ctx context.Context, userID string, since time.Time, limit int) ([]model.Application, error)
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// ActivityRepository is the append-only audit log. There is deliberately
// no update or delete: immutability is the contract.
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	// ListForApplication returns entries newest-first.
	ListForApplication(ctx context.Context, applicationID string) ([]model.Activity, error)
}

// AnalyticsRepository stores aggregation snapshots. System snapshots are
// append-only history; user snapshots are a singleton per user.
type AnalyticsRepository interface {
	CreateSystemSnapshot(ctx context.Context, snap *model.SystemSnapshot) error
	LatestSystemSnapshot(ctx context.Context) (*model.SystemSnapshot, error)
	ListSystemSnapshots(ctx context.Context, limit int) ([]model.SystemSnapshot, error)
	UpsertUserSnapshot(ctx context.Context, snap *model.UserSnapshot) error
	GetUserSnapshot(ctx context.Context, userID string) (*model.UserSnapshot, error)
}

// EmailLogRepository is the append-only record of send attempts.
type EmailLogRepository interface {
	Create(ctx context.Context, entry *model.EmailLog) error
	ListRecent(ctx context.Context, limit int) ([]model.EmailLog, error)
}
