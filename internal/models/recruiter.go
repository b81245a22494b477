// internal/models/recruiter.go
package models

import "time"

// RecruiterProfile is one-to-one with a user account.
type RecruiterProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Industry    string    `json:"industry"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	LogoURL     string    `json:"logo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecruiterStats is the aggregation over a recruiter's jobs and applications.
type RecruiterStats struct {
	ActiveJobs           int            `json:"active_jobs"`
	ClosedJobs           int            `json:"closed_jobs"`
	TotalApplications    int            `json:"total_applications"`
	ReviewedApplications int            `json:"reviewed_applications"`
	HiredCandidates      int            `json:"hired_candidates"`
	ByStatus             map[string]int `json:"by_status"`
}
