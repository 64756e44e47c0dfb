package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Akshit358/Job-Tracker-CRM/internal/apperror"
	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

const emailLogLimit = 50

// AdminService covers user lifecycle management and broadcast email.
// Every operation here sits behind the admin role check at the router.
type AdminService struct {
	users      repository.UserRepository
	dispatcher *mailer.Dispatcher
	emailLogs  repository.EmailLogRepository
	logger     *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(users repository.UserRepository, dispatcher *mailer.Dispatcher, emailLogs repository.EmailLogRepository, logger *slog.Logger) *AdminService {
	return &AdminService{
		users:      users,
		dispatcher: dispatcher,
		emailLogs:  emailLogs,
		logger:     logger,
	}
}

// ListUsers returns users matching the filter.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	return s.users.List(ctx, filter)
}

// GetUser returns one user by ID.
func (s *AdminService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Deactivate disables a user's account. Deactivated users keep their data
// but cannot log in. Admins cannot deactivate themselves.
func (s *AdminService) Deactivate(ctx context.Context, actorID, targetID string) (*model.User, error) {
	if actorID == targetID {
		return nil, apperror.SelfAction("deactivate")
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return user, nil
	}

	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("deactivating user: %w", err)
	}

	s.logger.Info("user deactivated",
		slog.String("id", targetID),
		slog.String("actorId", actorID),
	)
	return user, nil
}

// Activate re-enables a deactivated account.
func (s *AdminService) Activate(ctx context.Context, targetID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return user, nil
	}

	user.IsActive = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("activating user: %w", err)
	}

	s.logger.Info("user activated", slog.String("id", targetID))
	return user, nil
}

// Delete permanently removes a user along with their applications and
// activity history. Admins cannot delete themselves.
func (s *AdminService) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperror.SelfAction("delete")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		slog.String("id", targetID),
		slog.String("actorId", actorID),
	)
	return nil
}

// BroadcastResult reports how a broadcast went per recipient.
type BroadcastResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// Broadcast emails every active, verified user. Each delivery is
// attempted and logged independently; one bounce never stops the rest.
func (s *AdminService) Broadcast(ctx context.Context, subject, message string) (*BroadcastResult, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)

	fields := map[string]string{}
	if subject == "" {
		fields["subject"] = "subject is required"
	}
	if message == "" {
		fields["message"] = "message is required"
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	users, err := s.users.ListActive(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing recipients: %w", err)
	}

	result := &BroadcastResult{Recipients: len(users)}
	for _, user := range users {
		if s.dispatcher.Dispatch(ctx, model.EmailBroadcast, user.ID, user.Email, subject, message) {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	s.logger.Info("broadcast complete",
		slog.String("subject", subject),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// RecentEmailLogs returns the most recent delivery attempts.
func (s *AdminService) RecentEmailLogs(ctx context.Context) ([]model.EmailLog, error) {
	return s.emailLogs.ListRecent(ctx, emailLogLimit)
}
