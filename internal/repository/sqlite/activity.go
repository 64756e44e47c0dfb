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

// ActivityStore implements repository.ActivityRepository.
type ActivityStore struct {
	conn *sql.DB
}

var _ repository.ActivityRepository = (*ActivityStore)(nil)

// Create appends one activity entry outside any application write. Used
// by the reminder job; workflow writes go through the transactional
// application methods instead.
func (s *ActivityStore) Create(ctx context.Context, activity *model.Activity) error {
	activity.ID = xid.New().String()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO activities (id, application_id, kind, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		activity.ID, activity.ApplicationID, activity.Kind,
		activity.Description, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating activity: %w", err)
	}
	return nil
}

// ListForApplication returns the application's audit trail newest-first.
// The secondary id ordering keeps entries written in the same instant in
// a stable order (xids sort by creation time).
func (s *ActivityStore) ListForApplication(ctx context.Context, applicationID string) ([]model.Activity, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, application_id, kind, description, created_at
		 FROM activities
		 WHERE application_id = ?
		 ORDER BY created_at DESC, id DESC`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.ApplicationID, &a.Kind, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}
	return activities, nil
}
