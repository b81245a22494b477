// internal/models/analysis.go
package models

import "time"

// AnalysisResult is produced by the AI proxy and immutable once written.
type AnalysisResult struct {
	ID                string    `json:"id"`
	ApplicationID     *string   `json:"application_id,omitempty"`
	ResumeText        string    `json:"resume_text"`
	JobDescription    string    `json:"job_description"`
	OverallMatchScore int       `json:"overall_match_score"`
	KeySkillsMatched  []string  `json:"key_skills_matched"`
	MissingSkills     []string  `json:"missing_skills"`
	Summary           string    `json:"summary"`
	CreatedAt         time.Time `json:"created_at"`
}
