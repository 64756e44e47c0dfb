package model

import "time"

// Status is the lifecycle stage of a job application.
type Status string

const (
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusApplied, StatusInterviewing, StatusOffer, StatusRejected}

// statusLabels maps statuses to their human-readable display names.
// Activity descriptions use labels, never raw enum values.
var statusLabels = map[Status]string{
	StatusApplied:      "Applied",
	StatusInterviewing: "Interviewing",
	StatusOffer:        "Offer",
	StatusRejected:     "Rejected",
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display name for the status, or the raw value if the
// status is unknown.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Application represents one tracked job application, owned by exactly one
// user. UserID is immutable after creation; every mutation goes through
// the owning user's status-update workflow.
//
// ApplicationDate carries date precision only (time component is always
// midnight UTC). Backfilled dates are allowed — we never require the
// application date to be in the past or present.
type Application struct {
	ID              string     `json:"id"              db:"id"`
	UserID          string     `json:"userId"          db:"user_id"`
	CompanyName     string     `json:"companyName"     db:"company_name"`
	JobTitle        string     `json:"jobTitle"        db:"job_title"`
	ApplicationDate time.Time  `json:"applicationDate" db:"application_date"`
	Status          Status     `json:"status"          db:"status"`
	Notes           string     `json:"notes"           db:"notes"`
	ResumeURL       string     `json:"resumeUrl"       db:"resume_url"`
	InterviewDate   *time.Time `json:"interviewDate"   db:"interview_date"`
	CreatedAt       time.Time  `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt"       db:"updated_at"`
}

// DaysSinceApplied returns whole days between the application date and now.
func (a *Application) DaysSinceApplied(now time.Time) int {
	return int(DateOf(now).Sub(DateOf(a.ApplicationDate)).Hours() / 24)
}

// DateOf truncates t to midnight UTC. All date-precision comparisons
// (application dates, interview-day matching, response-time days) go
// through this so they agree on boundaries.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
