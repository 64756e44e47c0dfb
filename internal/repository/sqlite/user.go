package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

// UserStore implements repository.UserRepository.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, email, password_hash, first_name, last_name, role,
	is_email_verified, is_active, verification_token, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role,
		&u.IsEmailVerified, &u.IsActive, &u.VerificationToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user, generating its ID and timestamps.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Role, user.IsEmailVerified, user.IsActive, user.VerificationToken,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// GetByToken retrieves a user by verification/reset token. An empty token
// never matches — a blank token column must not be a valid credential.
func (s *UserStore) GetByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.NotFound("user", "")
	}
	u, err := scanUser(s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = ?`, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", token)
		}
		return nil, fmt.Errorf("sqlite: getting user by token: %w", err)
	}
	return u, nil
}

// List returns users matching the admin filter, newest-first.
func (s *UserStore) List(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	var args []any

	if filter.Role != "" {
		query += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.IsVerified != nil {
		query += ` AND is_email_verified = ?`
		args = append(args, *filter.IsVerified)
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		query += ` AND (first_name LIKE '%' || ? || '%'
			OR last_name LIKE '%' || ? || '%'
			OR email LIKE '%' || ? || '%')`
		args = append(args, filter.Search, filter.Search, filter.Search)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	limit, offset := clampPage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// ListActive returns active users, oldest-first so batch jobs process
// accounts in a stable order across runs.
func (s *UserStore) ListActive(ctx context.Context, verifiedOnly bool) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = 1`
	if verifiedOnly {
		query += ` AND is_email_verified = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing active users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating active users: %w", err)
	}
	return users, nil
}

// Update persists every mutable user field.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, first_name = ?,
			last_name = ?, role = ?, is_email_verified = ?, is_active = ?,
			verification_token = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Role, user.IsEmailVerified, user.IsActive, user.VerificationToken,
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

// Delete removes a user. Applications, activities and the user snapshot
// follow via ON DELETE CASCADE; email logs intentionally remain.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Counts aggregates the user table in one pass.
func (s *UserStore) Counts(ctx context.Context, monthStart time.Time) (*repository.UserCounts, error) {
	var c repository.UserCounts
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(is_active), 0),
			COALESCE(SUM(is_email_verified), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		 FROM users`,
		monthStart,
	).Scan(&c.Total, &c.Active, &c.Verified, &c.NewThisMonth)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return &c, nil
}
