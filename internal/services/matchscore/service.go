// internal/services/matchscore/service.go
package matchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"jobboard/internal/common/genai"
	"jobboard/internal/common/logger"
	"jobboard/internal/common/metrics"

	"github.com/lib/pq"
)

var (
	ErrQueryFailed       = errors.New("MATCH_SCORE_QUERY_FAILED")
	ErrJobNotFound       = errors.New("JOB_NOT_FOUND")
	ErrCandidateNotFound = errors.New("CANDIDATE_NOT_FOUND")
	ErrScoreUnavailable  = errors.New("MATCH_SCORE_UNAVAILABLE")
)

type Service struct {
	db        *sql.DB
	cache     Cache
	generator genai.Generator
	logger    logger.Logger
}

func NewService(db *sql.DB, cache Cache, generator genai.Generator, log logger.Logger) *Service {
	return &Service{
		db:        db,
		cache:     cache,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"service": "matchscore"}),
	}
}

func cacheKey(jobID, candidateID string) string {
	return fmt.Sprintf("match_score:%s:%s", jobID, candidateID)
}

// Score returns the AI fit score for a candidate against a job, 0 to 100.
// Computed scores are cached forever under the (job, candidate) pair, so a
// later edit to either side does not change an already computed score.
func (s *Service) Score(ctx context.Context, jobID, candidateID string) (int, error) {
	key := cacheKey(jobID, candidateID)

	if cached, found, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WithError(err).Warn("score cache read failed", nil)
	} else if found {
		if score, err := strconv.Atoi(cached); err == nil {
			metrics.AIProxyCallsTotal.WithLabelValues("match_score", "cache_hit").Inc()
			return score, nil
		}
		s.logger.Warn("discarding unparsable cached score", map[string]interface{}{
			"key":   key,
			"value": cached,
		})
	}

	score, err := s.compute(ctx, jobID, candidateID)
	if err != nil {
		metrics.AIProxyCallsTotal.WithLabelValues("match_score", "failure").Inc()
		return 0, err
	}
	metrics.AIProxyCallsTotal.WithLabelValues("match_score", "success").Inc()

	if err := s.cache.Set(ctx, key, strconv.Itoa(score)); err != nil {
		// Serve the score anyway; the next call recomputes.
		s.logger.WithError(err).Warn("score cache write failed", nil)
	}
	return score, nil
}

func (s *Service) compute(ctx context.Context, jobID, candidateID string) (int, error) {
	var title, description string
	var required pq.StringArray
	err := s.db.QueryRowContext(ctx,
		`SELECT title, job_description, skills_required FROM jobs WHERE id = $1`, jobID).
		Scan(&title, &description, &required)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	var experience, education string
	var skills pq.StringArray
	err = s.db.QueryRowContext(ctx,
		`SELECT experience, education, skills FROM candidates WHERE id = $1`, candidateID).
		Scan(&experience, &education, &skills)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
		}
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	prompt := buildPrompt(title, description, required, skills, experience, education)
	raw, err := s.generator.Generate(ctx, []genai.Part{{Text: prompt}})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScoreUnavailable, err)
	}

	score, err := parseScore(raw)
	if err != nil {
		s.logger.WithError(err).Error("model returned unusable score payload", map[string]interface{}{
			"raw": raw,
		})
		return 0, fmt.Errorf("%w: %v", ErrScoreUnavailable, err)
	}
	return score, nil
}

func buildPrompt(title, description string, required, skills []string, experience, education string) string {
	var b strings.Builder
	b.WriteString("You are a recruiting assistant. Rate how well a candidate matches a job on a 0-100 scale.\n\n")
	b.WriteString("Job title: " + title + "\n")
	b.WriteString("Job description: " + description + "\n")
	b.WriteString("Required skills: " + strings.Join(required, ", ") + "\n\n")
	b.WriteString("Candidate skills: " + strings.Join(skills, ", ") + "\n")
	b.WriteString("Candidate experience: " + experience + "\n")
	b.WriteString("Candidate education: " + education + "\n\n")
	b.WriteString(`Respond with only a JSON object of the form {"score": N} where N is an integer between 0 and 100. No other text.`)
	return b.String()
}

func parseScore(raw string) (int, error) {
	var payload struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(genai.StripFences(raw)), &payload); err != nil {
		return 0, fmt.Errorf("decode score: %w", err)
	}
	score := int(payload.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
