// internal/models/application.go
package models

import "time"

// Application statuses. The data layer does not restrict transitions; the
// UI decides which ones to offer.
const (
	StatusApplied            = "applied"
	StatusUnderReview        = "under_review"
	StatusInterviewScheduled = "interview_scheduled"
	StatusRejected           = "rejected"
	StatusHired              = "hired"
)

// ValidStatuses enumerates every accepted application status.
var ValidStatuses = []string{
	StatusApplied,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusRejected,
	StatusHired,
}

// IsValidStatus reports whether s is a known application status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Application is a candidate's submission against a specific job,
// unique per (job_id, candidate_id).
type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	CoverLetter string    `json:"cover_letter"`
	ResumeURL   string    `json:"resume_url"`
	AppliedAt   time.Time `json:"applied_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Join fields filled on list reads.
	JobTitle      string `json:"job_title,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
}
