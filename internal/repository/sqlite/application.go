package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

// ApplicationStore implements repository.ApplicationRepository.
type ApplicationStore struct {
	conn *sql.DB
}

var _ repository.ApplicationRepository = (*ApplicationStore)(nil)

const applicationColumns = `id, user_id, company_name, job_title, application_date,
	status, notes, resume_url, interview_date, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*model.Application, error) {
	var (
		a         model.Application
		interview sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.CompanyName, &a.JobTitle, &a.ApplicationDate,
		&a.Status, &a.Notes, &a.ResumeURL, &interview,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if interview.Valid {
		t := interview.Time
		a.InterviewDate = &t
	}
	return &a, nil
}

func insertActivityTx(ctx context.Context, tx *sql.Tx, activity *model.Activity) error {
	activity.ID = xid.New().String()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO activities (id, application_id, kind, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		activity.ID, activity.ApplicationID, activity.Kind,
		activity.Description, activity.CreatedAt,
	)
	return err
}

// Create inserts a new application and its initial activity entry in one
// transaction. Either both rows persist or neither does.
func (s *ApplicationStore) Create(ctx context.Context, app *model.Application, initial *model.Activity) error {
	app.ID = xid.New().String()
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var interview any
	if app.InterviewDate != nil {
		interview = *app.InterviewDate
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.CompanyName, app.JobTitle, app.ApplicationDate,
		app.Status, app.Notes, app.ResumeURL, interview,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating application: %w", err)
	}

	if initial != nil {
		initial.ApplicationID = app.ID
		if err := insertActivityTx(ctx, tx, initial); err != nil {
			return fmt.Errorf("sqlite: creating initial activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing application create: %w", err)
	}
	return nil
}

// GetByID retrieves one application scoped to its owner. The userID is
// part of the WHERE clause, so a missing id and someone else's id are the
// same NotFound — existence never leaks to non-owners.
func (s *ApplicationStore) GetByID(ctx context.Context, id, userID string) (*model.Application, error) {
	app, err := scanApplication(s.conn.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ? AND user_id = ?`,
		id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting application %s: %w", id, err)
	}
	return app, nil
}

// List returns the owner's applications matching the filter, ordered by
// application date then creation time, newest first.
func (s *ApplicationStore) List(ctx context.Context, userID string, filter repository.ApplicationFilter) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = ?`
	args := []any{userID}

	if filter.Company != "" {
		query += ` AND company_name LIKE '%' || ? || '%'`
		args = append(args, filter.Company)
	}
	if filter.JobTitle != "" {
		query += ` AND job_title LIKE '%' || ? || '%'`
		args = append(args, filter.JobTitle)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Statuses)), ",")
		query += ` AND status IN (` + placeholders + `)`
		for _, s := range filter.Statuses {
			args = append(args, s)
		}
	}
	if filter.DateFrom != nil {
		query += ` AND application_date >= ?`
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query += ` AND application_date <= ?`
		args = append(args, *filter.DateTo)
	}
	if filter.CreatedFrom != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query += ` AND created_at <= ?`
		args = append(args, *filter.CreatedTo)
	}

	query += ` ORDER BY application_date DESC, created_at DESC LIMIT ? OFFSET ?`
	limit, offset := clampPage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)

	return s.queryApplications(ctx, query, args...)
}

// Update persists every mutable field and appends the given activity
// entries, all in one transaction.
func (s *ApplicationStore) Update(ctx context.Context, app *model.Application, activities ...*model.Activity) error {
	app.UpdatedAt = time.Now()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var interview any
	if app.InterviewDate != nil {
		interview = *app.InterviewDate
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE applications
		 SET company_name = ?, job_title = ?, application_date = ?, status = ?,
			 notes = ?, resume_url = ?, interview_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		app.CompanyName, app.JobTitle, app.ApplicationDate, app.Status,
		app.Notes, app.ResumeURL, interview, app.UpdatedAt,
		app.ID, app.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating application %s: %w", app.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("application", app.ID)
	}

	for _, activity := range activities {
		activity.ApplicationID = app.ID
		if err := insertActivityTx(ctx, tx, activity); err != nil {
			return fmt.Errorf("sqlite: appending activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing application update: %w", err)
	}
	return nil
}

// userScope appends an optional user_id constraint. Aggregate queries
// reuse the same SQL for the system-wide and per-user cases.
func userScope(query, userID string, args []any) (string, []any) {
	if userID != "" {
		return query + ` AND user_id = ?`, append(args, userID)
	}
	return query, args
}

// Count returns the number of applications, optionally scoped to a user.
func (s *ApplicationStore) Count(ctx context.Context, userID string) (int, error) {
	query, args := userScope(`SELECT COUNT(*) FROM applications WHERE 1=1`, userID, nil)
	var n int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting applications: %w", err)
	}
	return n, nil
}

// CountActive counts applications still in play (applied or interviewing).
func (s *ApplicationStore) CountActive(ctx context.Context, userID string) (int, error) {
	query, args := userScope(
		`SELECT COUNT(*) FROM applications WHERE status IN (?, ?)`,
		userID, []any{model.StatusApplied, model.StatusInterviewing})
	var n int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting active applications: %w", err)
	}
	return n, nil
}

// CountSince counts applications with application_date on or after since.
func (s *ApplicationStore) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query, args := userScope(
		`SELECT COUNT(*) FROM applications WHERE application_date >= ?`,
		userID, []any{since})
	var n int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting applications since: %w", err)
	}
	return n, nil
}

// CountBetween counts applications with application_date in [from, until).
func (s *ApplicationStore) CountBetween(ctx context.Context, userID string, from, until time.Time) (int, error) {
	query, args := userScope(
		`SELECT COUNT(*) FROM applications WHERE application_date >= ? AND application_date < ?`,
		userID, []any{from, until})
	var n int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting applications between: %w", err)
	}
	return n, nil
}

// StatusDistribution returns status → count.
func (s *ApplicationStore) StatusDistribution(ctx context.Context, userID string) (map[model.Status]int, error) {
	query, args := userScope(
		`SELECT status, COUNT(*) FROM applications WHERE 1=1`, userID, nil)
	query += ` GROUP BY status`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: status distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[model.Status]int)
	for rows.Next() {
		var (
			status model.Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning status row: %w", err)
		}
		dist[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating status rows: %w", err)
	}
	return dist, nil
}

// TopCompanies ranks companies by application count. Ties break on
// company name ascending so identical inputs always rank identically.
func (s *ApplicationStore) TopCompanies(ctx context.Context, userID string, limit int) ([]model.CompanyCount, error) {
	query, args := userScope(
		`SELECT company_name, COUNT(*) AS cnt FROM applications WHERE 1=1`, userID, nil)
	query += ` GROUP BY company_name ORDER BY cnt DESC, company_name ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: top companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.CompanyCount, 0, limit)
	for rows.Next() {
		var c model.CompanyCount
		if err := rows.Scan(&c.CompanyName, &c.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating company rows: %w", err)
	}
	return companies, nil
}

// Recent returns the most recently created applications.
func (s *ApplicationStore) Recent(ctx context.Context, userID string, limit int) ([]model.Application, error) {
	query, args := userScope(
		`SELECT `+applicationColumns+` FROM applications WHERE 1=1`, userID, nil)
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	return s.queryApplications(ctx, query, args...)
}

// ListByStatuses returns applications whose status is in the given set.
func (s *ApplicationStore) ListByStatuses(ctx context.Context, userID string, statuses []model.Status) ([]model.Application, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status IN (` + placeholders + `)`
	var args []any
	for _, s := range statuses {
		args = append(args, s)
	}
	query, args = userScope(query, userID, args)
	query += ` ORDER BY created_at ASC, id ASC`
	return s.queryApplications(ctx, query, args...)
}

// InterviewsOn returns interviewing-status applications whose interview
// falls on the given calendar day.
func (s *ApplicationStore) InterviewsOn(ctx context.Context, day time.Time) ([]model.Application, error) {
	start := model.DateOf(day)
	end := start.AddDate(0, 0, 1)
	return s.queryApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE status = ? AND interview_date >= ? AND interview_date < ?
		 ORDER BY interview_date ASC, id ASC`,
		model.StatusInterviewing, start, end)
}

// CreatedSince returns applications created on or after since, newest
// first, truncated to limit.
func (s *ApplicationStore) CreatedSince(ctx context.Context, userID string, since time.Time, limit int) ([]model.Application, error) {
	query, args := userScope(
		`SELECT `+applicationColumns+` FROM applications WHERE created_at >= ?`,
		userID, []any{since})
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	return s.queryApplications(ctx, query, args...)
}

// CountCreatedSince counts applications created on or after since.
func (s *ApplicationStore) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query, args := userScope(
		`SELECT COUNT(*) FROM applications WHERE created_at >= ?`,
		userID, []any{since})
	var n int
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting created applications: %w", err)
	}
	return n, nil
}

func (s *ApplicationStore) queryApplications(ctx context.Context, query string, args ...any) ([]model.Application, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}
	return apps, nil
}
