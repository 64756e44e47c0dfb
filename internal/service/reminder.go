package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

const summaryListLimit = 5

// ReminderService sends the scheduled notifications: interview reminders
// the day before an interview and weekly activity summaries. Both run as
// batch jobs and both go through the dispatcher, so every attempt leaves
// an email log row.
type ReminderService struct {
	apps       repository.ApplicationRepository
	users      repository.UserRepository
	activities repository.ActivityRepository
	dispatcher *mailer.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewReminderService creates a ReminderService.
func NewReminderService(apps repository.ApplicationRepository, users repository.UserRepository, activities repository.ActivityRepository, dispatcher *mailer.Dispatcher, logger *slog.Logger) *ReminderService {
	return &ReminderService{
		apps:       apps,
		users:      users,
		activities: activities,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// SendInterviewReminders emails every user with an interviewing-stage
// application whose interview falls on tomorrow's date. A delivered
// reminder is recorded on the application's activity trail.
func (s *ReminderService) SendInterviewReminders(ctx context.Context) (*BatchReport, error) {
	tomorrow := model.DateOf(s.now()).AddDate(0, 0, 1)

	apps, err := s.apps.InterviewsOn(ctx, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("finding tomorrow's interviews: %w", err)
	}

	report := &BatchReport{}
	for _, app := range apps {
		user, err := s.users.GetByID(ctx, app.UserID)
		if err != nil {
			report.Failures = append(report.Failures, ItemFailure{
				ID:     app.ID,
				Reason: fmt.Sprintf("loading owner: %v", err),
			})
			continue
		}
		if !user.IsActive {
			continue
		}

		subject := fmt.Sprintf("Interview Reminder: %s at %s", app.JobTitle, app.CompanyName)
		body := fmt.Sprintf(
			"Hi %s,\n\nThis is a reminder that you have an interview tomorrow for the %s position at %s.\n\nGood luck!",
			user.FirstName, app.JobTitle, app.CompanyName,
		)

		if !s.dispatcher.Dispatch(ctx, model.EmailInterviewReminder, user.ID, user.Email, subject, body) {
			report.Failures = append(report.Failures, ItemFailure{
				ID:     app.ID,
				Reason: "email delivery failed",
			})
			continue
		}
		report.Succeeded++

		activity := &model.Activity{
			ApplicationID: app.ID,
			Kind:          model.ActivityReminderSent,
			Description:   "Interview reminder sent",
		}
		if err := s.activities.Create(ctx, activity); err != nil {
			s.logger.Error("failed to record reminder activity",
				slog.String("applicationId", app.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("interview reminders sent",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed()),
	)
	return report, nil
}

// SendWeeklySummaries emails every active, verified user who created at
// least one application in the trailing seven days. Users with no recent
// activity get nothing.
func (s *ReminderService) SendWeeklySummaries(ctx context.Context) (*BatchReport, error) {
	since := model.DateOf(s.now()).AddDate(0, 0, -7)

	users, err := s.users.ListActive(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing active users: %w", err)
	}

	report := &BatchReport{}
	for _, user := range users {
		count, err := s.apps.CountCreatedSince(ctx, user.ID, since)
		if err != nil {
			report.Failures = append(report.Failures, ItemFailure{
				ID:     user.ID,
				Reason: fmt.Sprintf("counting recent applications: %v", err),
			})
			continue
		}
		if count == 0 {
			continue
		}

		recent, err := s.apps.CreatedSince(ctx, user.ID, since, summaryListLimit)
		if err != nil {
			report.Failures = append(report.Failures, ItemFailure{
				ID:     user.ID,
				Reason: fmt.Sprintf("listing recent applications: %v", err),
			})
			continue
		}

		body := weeklySummaryBody(user.FirstName, count, recent)
		if !s.dispatcher.Dispatch(ctx, model.EmailWeeklySummary, user.ID, user.Email,
			"Your Weekly Job Application Summary", body) {
			report.Failures = append(report.Failures, ItemFailure{
				ID:     user.ID,
				Reason: "email delivery failed",
			})
			continue
		}
		report.Succeeded++
	}

	s.logger.Info("weekly summaries sent",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed()),
	)
	return report, nil
}

func weeklySummaryBody(firstName string, count int, recent []model.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName)
	noun := "applications"
	if count == 1 {
		noun = "application"
	}
	fmt.Fprintf(&b, "You submitted %d %s this week:\n\n", count, noun)
	for _, app := range recent {
		fmt.Fprintf(&b, "- %s at %s (%s)\n", app.JobTitle, app.CompanyName, app.Status.Label())
	}
	b.WriteString("\nKeep up the great work!")
	return b.String()
}
