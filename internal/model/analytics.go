package model

import "time"

// CompanyCount is one entry in a ranked top-companies list.
type CompanyCount struct {
	CompanyName string `json:"companyName"`
	Count       int    `json:"count"`
}

// MonthCount is one bucket in a monthly trend, keyed "YYYY-MM".
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// SystemSnapshot is one system-wide aggregation run. A new row is written
// on every run — history is retained so trends can be charted over time.
type SystemSnapshot struct {
	ID                    string         `json:"id"                    db:"id"`
	TotalUsers            int            `json:"totalUsers"            db:"total_users"`
	TotalApplications     int            `json:"totalApplications"     db:"total_applications"`
	ActiveApplications    int            `json:"activeApplications"    db:"active_applications"`
	ApplicationsThisMonth int            `json:"applicationsThisMonth" db:"applications_this_month"`
	ApplicationsThisWeek  int            `json:"applicationsThisWeek"  db:"applications_this_week"`
	StatusDistribution    map[Status]int `json:"statusDistribution"    db:"status_distribution"`
	TopCompanies          []CompanyCount `json:"topCompanies"          db:"top_companies"`
	MonthlyTrend          []MonthCount   `json:"monthlyTrend"          db:"monthly_trend"`
	CreatedAt             time.Time      `json:"createdAt"             db:"created_at"`
	UpdatedAt             time.Time      `json:"updatedAt"             db:"updated_at"`
}

// UserSnapshot is the single live per-user aggregate. Unlike SystemSnapshot
// it is upserted in place: exactly one row per user, reflecting the most
// recent aggregation run.
type UserSnapshot struct {
	ID                    string         `json:"id"                    db:"id"`
	UserID                string         `json:"userId"                db:"user_id"`
	TotalApplications     int            `json:"totalApplications"     db:"total_applications"`
	ApplicationsThisMonth int            `json:"applicationsThisMonth" db:"applications_this_month"`
	ApplicationsThisWeek  int            `json:"applicationsThisWeek"  db:"applications_this_week"`
	StatusDistribution    map[Status]int `json:"statusDistribution"    db:"status_distribution"`
	TopCompanies          []CompanyCount `json:"topCompanies"          db:"top_companies"`
	AverageResponseDays   float64        `json:"averageResponseDays"   db:"average_response_days"`
	CreatedAt             time.Time      `json:"createdAt"             db:"created_at"`
	UpdatedAt             time.Time      `json:"updatedAt"             db:"updated_at"`
}
