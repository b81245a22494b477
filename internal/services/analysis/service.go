// internal/services/analysis/service.go
package analysis

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/common/genai"
	"jobboard/internal/common/logger"
	"jobboard/internal/common/metrics"
	"jobboard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrMissingResume    = errors.New("MISSING_RESUME_INPUT")
	ErrInvalidResponse  = errors.New("AI_RESPONSE_INVALID")
	ErrPersistFailed    = errors.New("ANALYSIS_PERSIST_FAILED")
	ErrAnalysisNotFound = errors.New("ANALYSIS_NOT_FOUND")
	ErrQueryFailed      = errors.New("ANALYSIS_QUERY_FAILED")
)

// analysisSchema rejects model output that is syntactically JSON but is
// missing fields or has them mistyped.
const analysisSchema = `{
	"type": "object",
	"required": ["overall_match_score", "key_skills_matched", "missing_skills", "summary"],
	"properties": {
		"overall_match_score": {"type": "integer", "minimum": 0, "maximum": 100},
		"key_skills_matched": {"type": "array", "items": {"type": "string"}},
		"missing_skills": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string"}
	}
}`

const parsedResumeSchema = `{
	"type": "object",
	"required": ["name", "skills"],
	"properties": {
		"name": {"type": "string"},
		"phone": {"type": "string"},
		"location": {"type": "string"},
		"skills": {"type": "array", "items": {"type": "string"}},
		"experience": {"type": "string"},
		"education": {"type": "string"},
		"license_type": {"type": "string"},
		"license_number": {"type": "string"}
	}
}`

// ProfileMerger fills empty candidate profile fields from a parsed resume.
type ProfileMerger interface {
	MergeParsedFields(ctx context.Context, candidateID string, parsed *models.ParsedResume) (*models.CandidateProfile, error)
}

type Service struct {
	db        *sql.DB
	generator genai.Generator
	merger    ProfileMerger
	logger    logger.Logger
}

func NewService(db *sql.DB, generator genai.Generator, merger ProfileMerger, log logger.Logger) *Service {
	return &Service{
		db:        db,
		generator: generator,
		merger:    merger,
		logger:    log.WithFields(map[string]interface{}{"service": "analysis"}),
	}
}

// AnalyzeResume rates a resume against a job description and stores the
// result. Nothing is written when the model call or validation fails, so a
// truncated response leaves no partial row behind.
func (s *Service) AnalyzeResume(ctx context.Context, input *AnalyzeInput) (*models.AnalysisResult, error) {
	parts, err := resumeParts(input.Resume, input.MimeType, input.ResumeText, analyzePrompt(input.JobDescription))
	if err != nil {
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, parts)
	if err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("analyze_resume", "failure").Inc()
		return nil, err
	}

	cleaned := genai.StripFences(raw)
	if err := validateAgainst(analysisSchema, cleaned); err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("analyze_resume", "invalid").Inc()
		s.logger.WithError(err).Error("analysis payload failed validation", map[string]interface{}{
			"raw": raw,
		})
		return nil, err
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("analyze_resume", "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	metrics.AIProxyCallsTotal.WithLabelValues("analyze_resume", "success").Inc()

	result := &models.AnalysisResult{
		ID:                uuid.New().String(),
		ResumeText:        firstNonEmpty(payload.ResumeText, input.ResumeText),
		JobDescription:    input.JobDescription,
		OverallMatchScore: payload.OverallMatchScore,
		KeySkillsMatched:  payload.KeySkillsMatched,
		MissingSkills:     payload.MissingSkills,
		Summary:           payload.Summary,
		CreatedAt:         time.Now().UTC(),
	}
	if input.ApplicationID != "" {
		id := input.ApplicationID
		result.ApplicationID = &id
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_results (
			id, application_id, resume_text, job_description, overall_match_score,
			key_skills_matched, missing_skills, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		result.ID, result.ApplicationID, result.ResumeText, result.JobDescription,
		result.OverallMatchScore, pq.Array(result.KeySkillsMatched),
		pq.Array(result.MissingSkills), result.Summary, result.CreatedAt,
	)
	if err != nil {
		s.logger.WithError(err).Error("failed to insert analysis result", nil)
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	return result, nil
}

// ParseResume extracts profile fields from a resume document. When the input
// names a candidate, the fields are merged into their profile.
func (s *Service) ParseResume(ctx context.Context, input *ParseInput) (*models.ParsedResume, error) {
	parts, err := resumeParts(input.Resume, input.MimeType, "", parsePrompt)
	if err != nil {
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, parts)
	if err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("parse_resume", "failure").Inc()
		return nil, err
	}

	cleaned := genai.StripFences(raw)
	if err := validateAgainst(parsedResumeSchema, cleaned); err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("parse_resume", "invalid").Inc()
		return nil, err
	}

	var parsed models.ParsedResume
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("parse_resume", "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	metrics.AIProxyCallsTotal.WithLabelValues("parse_resume", "success").Inc()

	if input.CandidateID != "" {
		if _, err := s.merger.MergeParsedFields(ctx, input.CandidateID, &parsed); err != nil {
			return nil, err
		}
	}

	return &parsed, nil
}

// GetByApplication returns the stored analysis for an application.
func (s *Service) GetByApplication(ctx context.Context, applicationID string) (*models.AnalysisResult, error) {
	var r models.AnalysisResult
	var matched, missing pq.StringArray
	err := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, resume_text, job_description, overall_match_score,
			key_skills_matched, missing_skills, summary, created_at
		FROM analysis_results
		WHERE application_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, applicationID).
		Scan(&r.ID, &r.ApplicationID, &r.ResumeText, &r.JobDescription,
			&r.OverallMatchScore, &matched, &missing, &r.Summary, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", ErrAnalysisNotFound, applicationID)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	r.KeySkillsMatched = matched
	r.MissingSkills = missing
	return &r, nil
}

func resumeParts(document []byte, mimeType, text, prompt string) ([]genai.Part, error) {
	parts := []genai.Part{{Text: prompt}}
	switch {
	case len(document) > 0:
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		parts = append(parts, genai.Part{InlineData: &genai.Blob{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(document),
		}})
	case strings.TrimSpace(text) != "":
		parts = append(parts, genai.Part{Text: "Resume:\n" + text})
	default:
		return nil, ErrMissingResume
	}
	return parts, nil
}

func validateAgainst(schema, payload string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(details, "; "))
	}
	return nil
}

func analyzePrompt(jobDescription string) string {
	return `You are a technical recruiter. Analyze the attached resume against this job description and respond with only a JSON object:
{"overall_match_score": <integer 0-100>, "key_skills_matched": [<strings>], "missing_skills": [<strings>], "summary": "<2-3 sentences>", "resume_text": "<plain text of the resume>"}
No markdown, no commentary.

Job description:
` + jobDescription
}

const parsePrompt = `Extract the following fields from the attached resume and respond with only a JSON object:
{"name": "...", "phone": "...", "location": "...", "skills": [...], "experience": "...", "education": "...", "license_type": "...", "license_number": "..."}
Use an empty string or empty array for anything the resume does not state. No markdown, no commentary.`

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
