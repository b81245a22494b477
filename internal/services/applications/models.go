// internal/services/applications/models.go
package applications

import "jobboard/internal/models"

// SubmitInput carries a candidate's submission against a job.
type SubmitInput struct {
	JobID          string `json:"job_id"`
	CandidateID    string `json:"candidate_id"`
	CoverLetter    string `json:"cover_letter"`
	ResumeFilename string `json:"resume_filename"`
	Resume         []byte `json:"-"`
}

// SubmitOutcome distinguishes a fresh submission from the already-applied
// case, which is a normal user-visible outcome rather than a failure.
type SubmitOutcome struct {
	Application    *models.Application `json:"application"`
	AlreadyApplied bool                `json:"already_applied"`
}
