package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

// EmailLogStore implements repository.EmailLogRepository.
type EmailLogStore struct {
	conn *sql.DB
}

var _ repository.EmailLogRepository = (*EmailLogStore)(nil)

// Create appends one send-attempt record. Rows are never updated:
// the log is the durable evidence of what was attempted and how it went.
func (s *EmailLogStore) Create(ctx context.Context, entry *model.EmailLog) error {
	entry.ID = xid.New().String()
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO email_logs (id, user_id, kind, recipient, subject,
			sent_at, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Kind, entry.Recipient, entry.Subject,
		entry.SentAt, entry.Success, entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating email log: %w", err)
	}
	return nil
}

// ListRecent returns the latest send attempts, newest-first.
func (s *EmailLogStore) ListRecent(ctx context.Context, limit int) ([]model.EmailLog, error) {
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, user_id, kind, recipient, subject, sent_at, success, error_message
		 FROM email_logs
		 ORDER BY sent_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing email logs: %w", err)
	}
	defer rows.Close()

	var entries []model.EmailLog
	for rows.Next() {
		var e model.EmailLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Recipient, &e.Subject,
			&e.SentAt, &e.Success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("sqlite: scanning email log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating email logs: %w", err)
	}
	return entries, nil
}
