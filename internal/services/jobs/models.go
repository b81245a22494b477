// internal/services/jobs/models.go
package jobs

// CreateInput carries the fields a recruiter supplies when posting a job.
type CreateInput struct {
	RecruiterID         string   `json:"recruiter_id"`
	Title               string   `json:"title"`
	Location            string   `json:"location"`
	JobDescription      string   `json:"job_description"`
	JobType             string   `json:"job_type"`
	ExperienceLevel     string   `json:"experience_level"`
	SkillsRequired      []string `json:"skills_required"`
	ApplicationDeadline string   `json:"application_deadline,omitempty"` // YYYY-MM-DD, empty means no deadline
}

// Filter narrows a job list in memory. Empty fields match everything.
type Filter struct {
	Query           string `json:"query" form:"query"`
	Location        string `json:"location" form:"location"`
	ExperienceLevel string `json:"experience_level" form:"experience_level"`
}
