// Package service contains the business logic. Handlers parse HTTP and
// delegate here; services validate, enforce ownership, and orchestrate
// repositories and the notification dispatcher. Nothing in this package
// knows about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

const (
	MaxCompanyNameLength = 200
	MaxJobTitleLength    = 200
	MaxNotesLength       = 10000

	statsTopCompanies = 5
	statsRecent       = 5
)

// dateLayout is the wire format for application dates.
const dateLayout = "2006-01-02"

// ApplicationService implements the status-update workflow and the
// per-user read surface for job applications.
//
// The injected clock feeds the statistics windows so tests can pin "now".
type ApplicationService struct {
	apps       repository.ApplicationRepository
	activities repository.ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewApplicationService creates an ApplicationService.
func NewApplicationService(apps repository.ApplicationRepository, activities repository.ActivityRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		apps:       apps,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateInput carries a new application's fields.
type CreateInput struct {
	CompanyName     string     `json:"companyName"`
	JobTitle        string     `json:"jobTitle"`
	ApplicationDate string     `json:"applicationDate"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes"`
	ResumeURL       string     `json:"resumeUrl"`
	InterviewDate   *time.Time `json:"interviewDate"`
}

// UpdateInput carries a partial update. Nil pointers mean "leave as is";
// this is what lets PATCH distinguish "clear notes" from "don't touch
// notes".
type UpdateInput struct {
	CompanyName     *string    `json:"companyName"`
	JobTitle        *string    `json:"jobTitle"`
	ApplicationDate *string    `json:"applicationDate"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes"`
	ResumeURL       *string    `json:"resumeUrl"`
	InterviewDate   *time.Time `json:"interviewDate"`
}

// Create validates and saves a new application for the given owner.
// Creation always records exactly one status_change activity describing
// the initial status, in the same transaction as the insert.
func (s *ApplicationService) Create(ctx context.Context, userID string, input CreateInput) (*model.Application, error) {
	company := strings.TrimSpace(input.CompanyName)
	title := strings.TrimSpace(input.JobTitle)

	fields := map[string]string{}
	if company == "" {
		fields["companyName"] = "company name is required"
	} else if len(company) > MaxCompanyNameLength {
		fields["companyName"] = fmt.Sprintf("company name must be %d characters or less", MaxCompanyNameLength)
	}
	if title == "" {
		fields["jobTitle"] = "job title is required"
	} else if len(title) > MaxJobTitleLength {
		fields["jobTitle"] = fmt.Sprintf("job title must be %d characters or less", MaxJobTitleLength)
	}
	if len(input.Notes) > MaxNotesLength {
		fields["notes"] = fmt.Sprintf("notes must be %d characters or less", MaxNotesLength)
	}

	appDate, err := parseDate(input.ApplicationDate)
	if err != nil {
		fields["applicationDate"] = "application date must be in YYYY-MM-DD format"
	}

	status := model.StatusApplied
	if input.Status != "" {
		status = model.Status(input.Status)
		if !status.Valid() {
			fields["status"] = fmt.Sprintf("status must be one of: %s", statusList())
		}
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	app := &model.Application{
		UserID:          userID,
		CompanyName:     company,
		JobTitle:        title,
		ApplicationDate: appDate,
		Status:          status,
		Notes:           input.Notes,
		ResumeURL:       strings.TrimSpace(input.ResumeURL),
		InterviewDate:   input.InterviewDate,
	}
	initial := &model.Activity{
		Kind:        model.ActivityStatusChange,
		Description: fmt.Sprintf("Application created with status: %s", status.Label()),
	}

	if err := s.apps.Create(ctx, app, initial); err != nil {
		s.logger.Error("failed to create application",
			slog.String("userId", userID),
			slog.String("company", company),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating application: %w", err)
	}

	s.logger.Info("application created",
		slog.String("id", app.ID),
		slog.String("userId", userID),
		slog.String("company", app.CompanyName),
	)
	return app, nil
}

// Get retrieves one application owned by userID. A record owned by
// someone else is indistinguishable from a missing one.
func (s *ApplicationService) Get(ctx context.Context, userID, id string) (*model.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "application ID is required")
	}
	return s.apps.GetByID(ctx, id, userID)
}

// List returns the owner's applications matching the filter.
func (s *ApplicationService) List(ctx context.Context, userID string, filter repository.ApplicationFilter) ([]model.Application, error) {
	apps, err := s.apps.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list applications",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return apps, nil
}

// Update applies a partial update to an owned application.
//
// Two audit checks run independently: a provided status that differs from
// the stored one appends a status_change entry naming both display
// labels, and provided notes that differ append a note_added entry. A
// single request can therefore produce zero, one, or two entries. Field
// mutation and the appends commit in one transaction.
func (s *ApplicationService) Update(ctx context.Context, userID, id string, input UpdateInput) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	var activities []*model.Activity

	if input.Status != nil {
		newStatus := model.Status(*input.Status)
		if !newStatus.Valid() {
			return nil, apperror.ValidationFailed("status",
				fmt.Sprintf("status must be one of: %s", statusList()))
		}
		if newStatus != app.Status {
			activities = append(activities, &model.Activity{
				Kind: model.ActivityStatusChange,
				Description: fmt.Sprintf("Status changed from %s to %s",
					app.Status.Label(), newStatus.Label()),
			})
			app.Status = newStatus
		}
	}

	if input.Notes != nil {
		if len(*input.Notes) > MaxNotesLength {
			return nil, apperror.ValidationFailed("notes",
				fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
		}
		if *input.Notes != app.Notes {
			activities = append(activities, &model.Activity{
				Kind:        model.ActivityNoteAdded,
				Description: "Notes updated",
			})
			app.Notes = *input.Notes
		}
	}

	if input.CompanyName != nil {
		company := strings.TrimSpace(*input.CompanyName)
		if company == "" {
			return nil, apperror.ValidationFailed("companyName", "company name is required")
		}
		if len(company) > MaxCompanyNameLength {
			return nil, apperror.ValidationFailed("companyName",
				fmt.Sprintf("company name must be %d characters or less", MaxCompanyNameLength))
		}
		app.CompanyName = company
	}
	if input.JobTitle != nil {
		title := strings.TrimSpace(*input.JobTitle)
		if title == "" {
			return nil, apperror.ValidationFailed("jobTitle", "job title is required")
		}
		if len(title) > MaxJobTitleLength {
			return nil, apperror.ValidationFailed("jobTitle",
				fmt.Sprintf("job title must be %d characters or less", MaxJobTitleLength))
		}
		app.JobTitle = title
	}
	if input.ApplicationDate != nil {
		date, err := parseDate(*input.ApplicationDate)
		if err != nil {
			return nil, apperror.ValidationFailed("applicationDate",
				"application date must be in YYYY-MM-DD format")
		}
		app.ApplicationDate = date
	}
	if input.ResumeURL != nil {
		app.ResumeURL = strings.TrimSpace(*input.ResumeURL)
	}
	if input.InterviewDate != nil {
		t := *input.InterviewDate
		app.InterviewDate = &t
	}

	if err := s.apps.Update(ctx, app, activities...); err != nil {
		s.logger.Error("failed to update application",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating application: %w", err)
	}

	s.logger.Info("application updated",
		slog.String("id", app.ID),
		slog.Int("activities", len(activities)),
	)
	return app, nil
}

// Activities returns the audit trail for an owned application,
// newest-first. Ownership is checked first so activity existence leaks no
// more than the application itself.
func (s *ApplicationService) Activities(ctx context.Context, userID, id string) ([]model.Activity, error) {
	if _, err := s.apps.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.activities.ListForApplication(ctx, id)
}

// Statistics is the per-user stats summary.
type Statistics struct {
	TotalApplications     int                  `json:"totalApplications"`
	ApplicationsThisMonth int                  `json:"applicationsThisMonth"`
	ApplicationsThisWeek  int                  `json:"applicationsThisWeek"`
	StatusDistribution    map[model.Status]int `json:"statusDistribution"`
	TopCompanies          []model.CompanyCount `json:"topCompanies"`
	RecentApplications    []model.Application  `json:"recentApplications"`
}

// Statistics computes the owner's dashboard numbers from the live table.
func (s *ApplicationService) Statistics(ctx context.Context, userID string) (*Statistics, error) {
	now := s.now()

	total, err := s.apps.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting applications: %w", err)
	}
	thisMonth, err := s.apps.CountSince(ctx, userID, monthStart(now))
	if err != nil {
		return nil, fmt.Errorf("counting this month: %w", err)
	}
	thisWeek, err := s.apps.CountSince(ctx, userID, weekStart(now))
	if err != nil {
		return nil, fmt.Errorf("counting this week: %w", err)
	}
	dist, err := s.apps.StatusDistribution(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	top, err := s.apps.TopCompanies(ctx, userID, statsTopCompanies)
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}
	recent, err := s.apps.Recent(ctx, userID, statsRecent)
	if err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}

	return &Statistics{
		TotalApplications:     total,
		ApplicationsThisMonth: thisMonth,
		ApplicationsThisWeek:  thisWeek,
		StatusDistribution:    dist,
		TopCompanies:          top,
		RecentApplications:    recent,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return model.DateOf(t), nil
}

func statusList() string {
	names := make([]string, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

// monthStart returns midnight UTC on the first of now's calendar month.
func monthStart(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// weekStart returns midnight UTC seven days before now. Date precision
// keeps the window deterministic for a fixed "now".
func weekStart(now time.Time) time.Time {
	return model.DateOf(now).AddDate(0, 0, -7)
}
