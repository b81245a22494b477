// internal/models/job.go
package models

import "time"

// Job is owned by a RecruiterProfile. A nil ApplicationDeadline means the
// job never closes.
type Job struct {
	ID                  string     `json:"id"`
	RecruiterID         string     `json:"recruiter_id"`
	Title               string     `json:"title"`
	Location            string     `json:"location"`
	JobDescription      string     `json:"job_description"`
	JobType             string     `json:"job_type"`
	ExperienceLevel     string     `json:"experience_level"`
	SkillsRequired      []string   `json:"skills_required"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`

	// Filled on list reads; not a column of the jobs table.
	CompanyName string `json:"company_name,omitempty"`
}
