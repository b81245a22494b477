// internal/models/candidate.go
package models

import "time"

// CandidateProfile is one-to-one with a user account.
type CandidateProfile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Location      string    `json:"location"`
	Education     string    `json:"education"`
	Experience    string    `json:"experience"`
	Skills        []string  `json:"skills"`
	ResumeURL     string    `json:"resume_url"`
	LicenseType   string    `json:"license_type"`
	LicenseNumber string    `json:"license_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ParsedResume holds the fields extracted from a resume document.
type ParsedResume struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Location      string   `json:"location"`
	Skills        []string `json:"skills"`
	Experience    string   `json:"experience"`
	Education     string   `json:"education"`
	LicenseType   string   `json:"license_type"`
	LicenseNumber string   `json:"license_number"`
}
