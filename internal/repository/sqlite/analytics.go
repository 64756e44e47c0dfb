package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

// AnalyticsStore implements repository.AnalyticsRepository.
type AnalyticsStore struct {
	conn *sql.DB
}

var _ repository.AnalyticsRepository = (*AnalyticsStore)(nil)

// The distribution/ranking fields are JSON columns: they are written and
// read as whole values, never queried into, so a serialized blob beats
// three extra tables.

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateSystemSnapshot appends one system-wide aggregation result.
// History is retained: every run adds a row.
func (st *AnalyticsStore) CreateSystemSnapshot(ctx context.Context, snap *model.SystemSnapshot) error {
	snap.ID = xid.New().String()
	now := time.Now()
	snap.CreatedAt = now
	snap.UpdatedAt = now

	dist, err := marshalJSON(snap.StatusDistribution)
	if err != nil {
		return fmt.Errorf("sqlite: encoding status distribution: %w", err)
	}
	companies, err := marshalJSON(snap.TopCompanies)
	if err != nil {
		return fmt.Errorf("sqlite: encoding top companies: %w", err)
	}
	trend, err := marshalJSON(snap.MonthlyTrend)
	if err != nil {
		return fmt.Errorf("sqlite: encoding monthly trend: %w", err)
	}

	_, err = st.conn.ExecContext(ctx,
		`INSERT INTO system_snapshots (id, total_users, total_applications,
			active_applications, applications_this_month, applications_this_week,
			status_distribution, top_companies, monthly_trend, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.TotalUsers, snap.TotalApplications, snap.ActiveApplications,
		snap.ApplicationsThisMonth, snap.ApplicationsThisWeek,
		dist, companies, trend, snap.CreatedAt, snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating system snapshot: %w", err)
	}
	return nil
}

func scanSystemSnapshot(row interface{ Scan(...any) error }) (*model.SystemSnapshot, error) {
	var (
		s                      model.SystemSnapshot
		dist, companies, trend string
	)
	err := row.Scan(
		&s.ID, &s.TotalUsers, &s.TotalApplications, &s.ActiveApplications,
		&s.ApplicationsThisMonth, &s.ApplicationsThisWeek,
		&dist, &companies, &trend, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dist), &s.StatusDistribution); err != nil {
		return nil, fmt.Errorf("decoding status distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(companies), &s.TopCompanies); err != nil {
		return nil, fmt.Errorf("decoding top companies: %w", err)
	}
	if err := json.Unmarshal([]byte(trend), &s.MonthlyTrend); err != nil {
		return nil, fmt.Errorf("decoding monthly trend: %w", err)
	}
	return &s, nil
}

const systemSnapshotColumns = `id, total_users, total_applications,
	active_applications, applications_this_month, applications_this_week,
	status_distribution, top_companies, monthly_trend, created_at, updated_at`

// LatestSystemSnapshot returns the most recent system snapshot.
func (st *AnalyticsStore) LatestSystemSnapshot(ctx context.Context) (*model.SystemSnapshot, error) {
	snap, err := scanSystemSnapshot(st.conn.QueryRowContext(ctx,
		`SELECT `+systemSnapshotColumns+` FROM system_snapshots
		 ORDER BY created_at DESC, id DESC LIMIT 1`))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("system snapshot", "latest")
		}
		return nil, fmt.Errorf("sqlite: getting latest system snapshot: %w", err)
	}
	return snap, nil
}

// ListSystemSnapshots returns snapshot history, newest-first.
func (st *AnalyticsStore) ListSystemSnapshots(ctx context.Context, limit int) ([]model.SystemSnapshot, error) {
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	rows, err := st.conn.QueryContext(ctx,
		`SELECT `+systemSnapshotColumns+` FROM system_snapshots
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing system snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.SystemSnapshot
	for rows.Next() {
		s, err := scanSystemSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning system snapshot: %w", err)
		}
		snaps = append(snaps, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating system snapshots: %w", err)
	}
	return snaps, nil
}

// UpsertUserSnapshot writes the singleton per-user snapshot. The UNIQUE
// constraint on user_id plus ON CONFLICT keeps exactly one live row per
// user no matter how many times aggregation runs.
func (st *AnalyticsStore) UpsertUserSnapshot(ctx context.Context, snap *model.UserSnapshot) error {
	now := time.Now()
	snap.UpdatedAt = now

	dist, err := marshalJSON(snap.StatusDistribution)
	if err != nil {
		return fmt.Errorf("sqlite: encoding status distribution: %w", err)
	}
	companies, err := marshalJSON(snap.TopCompanies)
	if err != nil {
		return fmt.Errorf("sqlite: encoding top companies: %w", err)
	}

	id := xid.New().String()
	_, err = st.conn.ExecContext(ctx,
		`INSERT INTO user_snapshots (id, user_id, total_applications,
			applications_this_month, applications_this_week,
			status_distribution, top_companies, average_response_days,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			total_applications = excluded.total_applications,
			applications_this_month = excluded.applications_this_month,
			applications_this_week = excluded.applications_this_week,
			status_distribution = excluded.status_distribution,
			top_companies = excluded.top_companies,
			average_response_days = excluded.average_response_days,
			updated_at = excluded.updated_at`,
		id, snap.UserID, snap.TotalApplications,
		snap.ApplicationsThisMonth, snap.ApplicationsThisWeek,
		dist, companies, snap.AverageResponseDays,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user snapshot: %w", err)
	}
	return nil
}

// GetUserSnapshot returns the user's live snapshot.
func (st *AnalyticsStore) GetUserSnapshot(ctx context.Context, userID string) (*model.UserSnapshot, error) {
	var (
		s               model.UserSnapshot
		dist, companies string
	)
	err := st.conn.QueryRowContext(ctx,
		`SELECT id, user_id, total_applications, applications_this_month,
			applications_this_week, status_distribution, top_companies,
			average_response_days, created_at, updated_at
		 FROM user_snapshots WHERE user_id = ?`,
		userID,
	).Scan(
		&s.ID, &s.UserID, &s.TotalApplications, &s.ApplicationsThisMonth,
		&s.ApplicationsThisWeek, &dist, &companies,
		&s.AverageResponseDays, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user snapshot", userID)
		}
		return nil, fmt.Errorf("sqlite: getting user snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(dist), &s.StatusDistribution); err != nil {
		return nil, fmt.Errorf("sqlite: decoding status distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(companies), &s.TopCompanies); err != nil {
		return nil, fmt.Errorf("sqlite: decoding top companies: %w", err)
	}
	return &s, nil
}
