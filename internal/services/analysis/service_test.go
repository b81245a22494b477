// internal/services/analysis/service_test.go
package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"jobboard/internal/common/genai"
	"jobboard/internal/common/logger"
	"jobboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	response string
	err      error
	gotParts []genai.Part
}

func (f *fakeGenerator) Generate(ctx context.Context, parts []genai.Part) (string, error) {
	f.gotParts = parts
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeMerger struct {
	calledWith string
	parsed     *models.ParsedResume
	err        error
}

func (f *fakeMerger) MergeParsedFields(ctx context.Context, candidateID string, parsed *models.ParsedResume) (*models.CandidateProfile, error) {
	f.calledWith = candidateID
	f.parsed = parsed
	if f.err != nil {
		return nil, f.err
	}
	return &models.CandidateProfile{ID: candidateID}, nil
}

const goodAnalysis = `{
	"overall_match_score": 82,
	"key_skills_matched": ["Go", "PostgreSQL"],
	"missing_skills": ["Kubernetes"],
	"summary": "Strong backend background with most required skills.",
	"resume_text": "Jane Doe, backend engineer..."
}`

// ==========================
// AnalyzeResume
// ==========================

func TestService_AnalyzeResume_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gen := &fakeGenerator{response: goodAnalysis}
	svc := NewService(db, gen, &fakeMerger{}, logger.NewNop())

	mock.ExpectExec(`INSERT INTO analysis_results`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.AnalyzeResume(context.Background(), &AnalyzeInput{
		Resume:         []byte("%PDF-1.4"),
		MimeType:       "application/pdf",
		JobDescription: "Backend engineer, Go and PostgreSQL.",
		ApplicationID:  "app-001",
	})

	assert.NoError(t, err)
	assert.Equal(t, 82, result.OverallMatchScore)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, result.KeySkillsMatched)
	assert.Equal(t, []string{"Kubernetes"}, result.MissingSkills)
	assert.NotNil(t, result.ApplicationID)
	assert.Equal(t, "app-001", *result.ApplicationID)

	// The document goes up as an inline blob after the prompt.
	assert.Len(t, gen.gotParts, 2)
	assert.NotNil(t, gen.gotParts[1].InlineData)
	assert.Equal(t, "application/pdf", gen.gotParts[1].InlineData.MimeType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AnalyzeResume_FencedResponse(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gen := &fakeGenerator{response: "```json\n" + goodAnalysis + "\n```"}
	svc := NewService(db, gen, &fakeMerger{}, logger.NewNop())

	mock.ExpectExec(`INSERT INTO analysis_results`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.AnalyzeResume(context.Background(), &AnalyzeInput{
		ResumeText:     "Jane Doe, backend engineer",
		JobDescription: "Backend engineer.",
	})

	assert.NoError(t, err)
	assert.Equal(t, 82, result.OverallMatchScore)
}

func TestService_AnalyzeResume_TruncatedNothingPersisted(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gen := &fakeGenerator{err: fmt.Errorf("%w: finishReason=MAX_TOKENS", genai.ErrResponseTruncated)}
	svc := NewService(db, gen, &fakeMerger{}, logger.NewNop())

	// No INSERT expectation: a truncated response must write nothing.
	_, err = svc.AnalyzeResume(context.Background(), &AnalyzeInput{
		ResumeText:     "Jane Doe",
		JobDescription: "Backend engineer.",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, genai.ErrResponseTruncated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AnalyzeResume_MissingFieldRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Valid JSON, but no summary.
	gen := &fakeGenerator{response: `{"overall_match_score": 50, "key_skills_matched": [], "missing_skills": []}`}
	svc := NewService(db, gen, &fakeMerger{}, logger.NewNop())

	_, err = svc.AnalyzeResume(context.Background(), &AnalyzeInput{
		ResumeText:     "Jane Doe",
		JobDescription: "Backend engineer.",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AnalyzeResume_ScoreOutOfRangeRejected(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gen := &fakeGenerator{response: `{"overall_match_score": 250, "key_skills_matched": [], "missing_skills": [], "summary": "x"}`}
	svc := NewService(db, gen, &fakeMerger{}, logger.NewNop())

	_, err = svc.AnalyzeResume(context.Background(), &AnalyzeInput{
		ResumeText:     "Jane Doe",
		JobDescription: "Backend engineer.",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestService_AnalyzeResume_NoResume(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewService(db, &fakeGenerator{}, &fakeMerger{}, logger.NewNop())

	_, err = svc.AnalyzeResume(context.Background(), &AnalyzeInput{JobDescription: "Backend engineer."})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingResume))
}

// ==========================
// ParseResume
// ==========================

const goodParse = `{
	"name": "Jane Doe",
	"phone": "+49 151 000",
	"location": "Berlin",
	"skills": ["Go", "SQL"],
	"experience": "5 years backend",
	"education": "BSc CS",
	"license_type": "",
	"license_number": ""
}`

func TestService_ParseResume_MergesIntoProfile(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	merger := &fakeMerger{}
	svc := NewService(db, &fakeGenerator{response: goodParse}, merger, logger.NewNop())

	parsed, err := svc.ParseResume(context.Background(), &ParseInput{
		Resume:      []byte("%PDF-1.4"),
		MimeType:    "application/pdf",
		CandidateID: "cand-001",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Jane Doe", parsed.Name)
	assert.Equal(t, []string{"Go", "SQL"}, parsed.Skills)
	assert.Equal(t, "cand-001", merger.calledWith)
	assert.Equal(t, parsed, merger.parsed)
}

func TestService_ParseResume_NoCandidateSkipsMerge(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	merger := &fakeMerger{}
	svc := NewService(db, &fakeGenerator{response: goodParse}, merger, logger.NewNop())

	_, err = svc.ParseResume(context.Background(), &ParseInput{Resume: []byte("%PDF-1.4")})

	assert.NoError(t, err)
	assert.Empty(t, merger.calledWith)
}

func TestService_ParseResume_InvalidPayload(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewService(db, &fakeGenerator{response: `{"phone": "123"}`}, &fakeMerger{}, logger.NewNop())

	_, err = svc.ParseResume(context.Background(), &ParseInput{Resume: []byte("%PDF-1.4")})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}
