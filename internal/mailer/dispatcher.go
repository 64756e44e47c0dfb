package mailer

import (
	"context"
	"log/slog"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
	"github.com/Akshit358/Job-Tracker-CRM/internal/repository"
)

// Dispatcher is the notification boundary. Every call writes exactly one
// EmailLog row — success or failure — and never returns an error: a dead
// SMTP server must not fail a registration or roll back an update that
// already committed. Callers get a bool so batch jobs can count outcomes.
type Dispatcher struct {
	mailer Mailer
	logs   repository.EmailLogRepository
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(mailer Mailer, logs repository.EmailLogRepository, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		logs:   logs,
		logger: logger,
	}
}

// Dispatch attempts one send and records the attempt. userID may be empty
// when the recipient is not tied to an account. Returns true when the
// transport accepted the message.
func (d *Dispatcher) Dispatch(ctx context.Context, kind model.EmailKind, userID, recipient, subject, body string) bool {
	sendErr := d.mailer.Send(ctx, recipient, subject, body)

	entry := &model.EmailLog{
		UserID:    userID,
		Kind:      kind,
		Recipient: recipient,
		Subject:   subject,
		Success:   sendErr == nil,
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
	}

	// The log write itself is best-effort too; losing a log row must not
	// surface as a send failure to the workflow that triggered it.
	if err := d.logs.Create(ctx, entry); err != nil {
		d.logger.Error("failed to record email log",
			slog.String("kind", string(kind)),
			slog.String("recipient", recipient),
			slog.String("error", err.Error()),
		)
	}

	if sendErr != nil {
		d.logger.Warn("email send failed",
			slog.String("kind", string(kind)),
			slog.String("recipient", recipient),
			slog.String("error", sendErr.Error()),
		)
		return false
	}

	d.logger.Info("email sent",
		slog.String("kind", string(kind)),
		slog.String("recipient", recipient),
	)
	return true
}
