package model

import "time"

// EmailKind classifies an outbound notification.
type EmailKind string

const (
	EmailVerification      EmailKind = "verification"
	EmailPasswordReset     EmailKind = "password_reset"
	EmailInterviewReminder EmailKind = "interview_reminder"
	EmailWeeklySummary     EmailKind = "weekly_summary"
	EmailBroadcast         EmailKind = "broadcast"
)

// EmailLog records one send attempt, written exactly once per attempt
// whether or not the transport succeeded, and never mutated afterwards.
// UserID is optional: broadcasts may log attempts before a recipient is
// resolved to an account.
type EmailLog struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"userId"       db:"user_id"`
	Kind         EmailKind `json:"kind"         db:"kind"`
	Recipient    string    `json:"recipient"    db:"recipient"`
	Subject      string    `json:"subject"      db:"subject"`
	SentAt       time.Time `json:"sentAt"       db:"sent_at"`
	Success      bool      `json:"success"      db:"success"`
	ErrorMessage string    `json:"errorMessage" db:"error_message"`
}
