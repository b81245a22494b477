// internal/models/notification.go
package models

import "time"

// Notification rows are append-only; only is_read is ever mutated.
type Notification struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CandidateID   string    `json:"candidate_id"`
	ApplicationID *string   `json:"application_id,omitempty"`
	Type          string    `json:"type"` // "job_alert", "interview_scheduled"
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}
