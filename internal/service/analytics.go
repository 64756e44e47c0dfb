package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

const (
	systemTopCompanies = 10
	trendMonths        = 6
	dashboardRecent    = 10
)

// responseStatuses are the statuses that count as an employer response
// when computing average response time.
var responseStatuses = []model.Status{
	model.StatusInterviewing,
	model.StatusOffer,
	model.StatusRejected,
}

// BatchReport summarizes a batch job. Failures carry enough context to
// chase down individual items without failing the whole run.
type BatchReport struct {
	Succeeded int           `json:"succeeded"`
	Failures  []ItemFailure `json:"failures,omitempty"`
}

// ItemFailure records one item that a batch run could not process.
type ItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Failed returns the number of failed items.
func (r *BatchReport) Failed() int { return len(r.Failures) }

// AnalyticsService computes system-wide and per-user aggregates from the
// live application table and persists them as snapshots.
type AnalyticsService struct {
	apps   repository.ApplicationRepository
	users  repository.UserRepository
	snaps  repository.AnalyticsRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(apps repository.ApplicationRepository, users repository.UserRepository, snaps repository.AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		apps:   apps,
		users:  users,
		snaps:  snaps,
		logger: logger,
		now:    time.Now,
	}
}

// RunSystemAggregation recomputes the system-wide aggregate and appends a
// new snapshot row. Every derived number comes from the live tables, so a
// rerun after no data changes produces an identical snapshot.
func (s *AnalyticsService) RunSystemAggregation(ctx context.Context) (*model.SystemSnapshot, error) {
	now := s.now()

	userCounts, err := s.users.Counts(ctx, monthStart(now))
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	total, err := s.apps.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting applications: %w", err)
	}
	active, err := s.apps.CountActive(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting active applications: %w", err)
	}
	thisMonth, err := s.apps.CountSince(ctx, "", monthStart(now))
	if err != nil {
		return nil, fmt.Errorf("counting this month: %w", err)
	}
	thisWeek, err := s.apps.CountSince(ctx, "", weekStart(now))
	if err != nil {
		return nil, fmt.Errorf("counting this week: %w", err)
	}
	dist, err := s.apps.StatusDistribution(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	top, err := s.apps.TopCompanies(ctx, "", systemTopCompanies)
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}
	trend, err := s.monthlyTrend(ctx, now)
	if err != nil {
		return nil, err
	}

	snap := &model.SystemSnapshot{
		TotalUsers:            userCounts.Total,
		TotalApplications:     total,
		ActiveApplications:    active,
		ApplicationsThisMonth: thisMonth,
		ApplicationsThisWeek:  thisWeek,
		StatusDistribution:    dist,
		TopCompanies:          top,
		MonthlyTrend:          trend,
	}
	if err := s.snaps.CreateSystemSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving system snapshot: %w", err)
	}

	s.logger.Info("system aggregation complete",
		slog.Int("totalUsers", snap.TotalUsers),
		slog.Int("totalApplications", snap.TotalApplications),
	)
	return snap, nil
}

// monthlyTrend buckets creations into the current calendar month and the
// five before it, newest first. Buckets are true calendar months, so a
// 31-day month and February land in the right buckets.
func (s *AnalyticsService) monthlyTrend(ctx context.Context, now time.Time) ([]model.MonthCount, error) {
	y, m, _ := now.UTC().Date()
	trend := make([]model.MonthCount, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		start := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		count, err := s.apps.CountBetween(ctx, "", start, end)
		if err != nil {
			return nil, fmt.Errorf("counting month %s: %w", start.Format("2006-01"), err)
		}
		trend = append(trend, model.MonthCount{
			Month: start.Format("2006-01"),
			Count: count,
		})
	}
	return trend, nil
}

// RunUserAggregation recomputes one user's aggregate and upserts their
// snapshot row in place.
func (s *AnalyticsService) RunUserAggregation(ctx context.Context, userID string) (*model.UserSnapshot, error) {
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
	avg, err := s.averageResponseDays(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &model.UserSnapshot{
		UserID:                userID,
		TotalApplications:     total,
		ApplicationsThisMonth: thisMonth,
		ApplicationsThisWeek:  thisWeek,
		StatusDistribution:    dist,
		TopCompanies:          top,
		AverageResponseDays:   avg,
	}
	if err := s.snaps.UpsertUserSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving user snapshot: %w", err)
	}
	return snap, nil
}

// averageResponseDays is the mean of date-precision gaps between applying
// and the last touch, over applications that left the applied status.
// Only positive gaps count. No qualifying applications means 0.
func (s *AnalyticsService) averageResponseDays(ctx context.Context, userID string) (float64, error) {
	apps, err := s.apps.ListByStatuses(ctx, userID, responseStatuses)
	if err != nil {
		return 0, fmt.Errorf("listing responded applications: %w", err)
	}
	var sum, n int
	for _, app := range apps {
		days := int(model.DateOf(app.UpdatedAt).Sub(model.DateOf(app.ApplicationDate)).Hours() / 24)
		if days > 0 {
			sum += days
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

// RunAll runs the system aggregation, then a per-user aggregation for
// every active user. One user's failure does not stop the rest.
func (s *AnalyticsService) RunAll(ctx context.Context) (*BatchReport, error) {
	if _, err := s.RunSystemAggregation(ctx); err != nil {
		return nil, err
	}

	users, err := s.users.ListActive(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing active users: %w", err)
	}

	report := &BatchReport{}
	for _, user := range users {
		if _, err := s.RunUserAggregation(ctx, user.ID); err != nil {
			s.logger.Error("user aggregation failed",
				slog.String("userId", user.ID),
				slog.String("error", err.Error()),
			)
			report.Failures = append(report.Failures, ItemFailure{
				ID:     user.ID,
				Reason: err.Error(),
			})
			continue
		}
		report.Succeeded++
	}

	s.logger.Info("aggregation run complete",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed()),
	)
	return report, nil
}

// UserSnapshot returns the stored per-user aggregate.
func (s *AnalyticsService) UserSnapshot(ctx context.Context, userID string) (*model.UserSnapshot, error) {
	return s.snaps.GetUserSnapshot(ctx, userID)
}

// Dashboard is the admin overview, computed live rather than from the
// latest snapshot so it never lags the data.
type Dashboard struct {
	Users              repository.UserCounts `json:"users"`
	TotalApplications  int                   `json:"totalApplications"`
	ActiveApplications int                   `json:"activeApplications"`
	StatusDistribution map[model.Status]int  `json:"statusDistribution"`
	TopCompanies       []model.CompanyCount  `json:"topCompanies"`
	MonthlyTrend       []model.MonthCount    `json:"monthlyTrend"`
	RecentApplications []model.Application   `json:"recentApplications"`
}

// Dashboard assembles the admin dashboard.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	userCounts, err := s.users.Counts(ctx, monthStart(now))
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	total, err := s.apps.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting applications: %w", err)
	}
	active, err := s.apps.CountActive(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting active applications: %w", err)
	}
	dist, err := s.apps.StatusDistribution(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	top, err := s.apps.TopCompanies(ctx, "", systemTopCompanies)
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}
	trend, err := s.monthlyTrend(ctx, now)
	if err != nil {
		return nil, err
	}
	recent, err := s.apps.Recent(ctx, "", dashboardRecent)
	if err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}

	return &Dashboard{
		Users:              *userCounts,
		TotalApplications:  total,
		ActiveApplications: active,
		StatusDistribution: dist,
		TopCompanies:       top,
		MonthlyTrend:       trend,
		RecentApplications: recent,
	}, nil
}
