// internal/services/analysis/models.go
package analysis

// AnalyzeInput is a resume document plus the job description to rate it
// against. Resume and MimeType carry an uploaded file; ResumeText carries
// already-extracted text. One of the two must be set.
type AnalyzeInput struct {
	Resume         []byte `json:"-"`
	MimeType       string `json:"-"`
	ResumeText     string `json:"resume_text,omitempty"`
	JobDescription string `json:"job_description"`
	ApplicationID  string `json:"application_id,omitempty"`
}

// ParseInput is a resume document to extract profile fields from. When
// CandidateID is set the extracted fields are merged into that profile.
type ParseInput struct {
	Resume      []byte `json:"-"`
	MimeType    string `json:"-"`
	CandidateID string `json:"candidate_id,omitempty"`
}

type analysisPayload struct {
	OverallMatchScore int      `json:"overall_match_score"`
	KeySkillsMatched  []string `json:"key_skills_matched"`
	MissingSkills     []string `json:"missing_skills"`
	Summary           string   `json:"summary"`
	ResumeText        string   `json:"resume_text"`
}
