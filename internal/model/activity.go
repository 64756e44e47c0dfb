package model

import "time"

// ActivityKind classifies an audit-trail entry.
type ActivityKind string

const (
	ActivityStatusChange       ActivityKind = "status_change"
	ActivityNoteAdded          ActivityKind = "note_added"
	ActivityInterviewScheduled ActivityKind = "interview_scheduled"
	ActivityReminderSent       ActivityKind = "reminder_sent"
)

var activityLabels = map[ActivityKind]string{
	ActivityStatusChange:       "Status Change",
	ActivityNoteAdded:          "Note Added",
	ActivityInterviewScheduled: "Interview Scheduled",
	ActivityReminderSent:       "Reminder Sent",
}

// Label returns the display name for the activity kind.
func (k ActivityKind) Label() string {
	if label, ok := activityLabels[k]; ok {
		return label
	}
	return string(k)
}

// Activity is one immutable audit record tied to an application.
// Activities are append-only: the repository exposes no update or delete,
// and rows are only ever removed by the cascade when their application's
// owner is deleted.
type Activity struct {
	ID            string       `json:"id"            db:"id"`
	ApplicationID string       `json:"applicationId" db:"application_id"`
	Kind          ActivityKind `json:"kind"          db:"kind"`
	Description   string       `json:"description"   db:"description"`
	CreatedAt     time.Time    `json:"createdAt"     db:"created_at"`
}
