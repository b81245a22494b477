// internal/services/jobs/service.go
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/common/logger"
	"jobboard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const deadlineLayout = "2006-01-02"

var (
	ErrQueryFailed     = errors.New("JOB_QUERY_FAILED")
	ErrInsertFailed    = errors.New("JOB_INSERT_FAILED")
	ErrJobNotFound     = errors.New("JOB_NOT_FOUND")
	ErrMissingRequired = errors.New("MISSING_REQUIRED_FIELD")
	ErrInvalidDeadline = errors.New("INVALID_APPLICATION_DEADLINE")
)

type Service struct {
	db     *sql.DB
	logger logger.Logger
}

func NewService(db *sql.DB, log logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"service": "jobs"}),
	}
}

// Create posts a new job for a recruiter. The deadline is a bare date; it is
// stored as midnight UTC and treated as end-of-day by IsClosed.
func (s *Service) Create(ctx context.Context, input *CreateInput) (*models.Job, error) {
	if input.RecruiterID == "" || input.Title == "" {
		return nil, fmt.Errorf("%w: recruiter_id and title are required", ErrMissingRequired)
	}

	var deadline *time.Time
	if input.ApplicationDeadline != "" {
		d, err := time.ParseInLocation(deadlineLayout, input.ApplicationDeadline, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDeadline, input.ApplicationDeadline)
		}
		deadline = &d
	}

	job := &models.Job{
		ID:                  uuid.New().String(),
		RecruiterID:         input.RecruiterID,
		Title:               input.Title,
		Location:            input.Location,
		JobDescription:      input.JobDescription,
		JobType:             input.JobType,
		ExperienceLevel:     input.ExperienceLevel,
		SkillsRequired:      input.SkillsRequired,
		ApplicationDeadline: deadline,
		CreatedAt:           time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, recruiter_id, title, location, job_description, job_type,
			experience_level, skills_required, application_deadline, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.RecruiterID, job.Title, job.Location, job.JobDescription,
		job.JobType, job.ExperienceLevel, pq.Array(job.SkillsRequired),
		job.ApplicationDeadline, job.CreatedAt,
	)
	if err != nil {
		s.logger.WithError(err).Error("failed to insert job", nil)
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	s.logger.Info("job created", map[string]interface{}{
		"job_id":       job.ID,
		"recruiter_id": job.RecruiterID,
	})

	return job, nil
}

// Get returns a single job with its recruiter's company name.
func (s *Service) Get(ctx context.Context, jobID string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT j.id, j.recruiter_id, j.title, j.location, j.job_description, j.job_type,
			j.experience_level, j.skills_required, j.application_deadline, j.created_at,
			r.company_name
		FROM jobs j
		JOIN recruiters r ON j.recruiter_id = r.id
		WHERE j.id = $1`, jobID)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return job, nil
}

// List returns every posted job, newest first. Filtering happens after the
// fetch, against the full list.
func (s *Service) List(ctx context.Context) ([]models.Job, error) {
	return s.list(ctx, `
		SELECT j.id, j.recruiter_id, j.title, j.location, j.job_description, j.job_type,
			j.experience_level, j.skills_required, j.application_deadline, j.created_at,
			r.company_name
		FROM jobs j
		JOIN recruiters r ON j.recruiter_id = r.id
		ORDER BY j.created_at DESC`)
}

// ListByRecruiter returns the recruiter's own postings, newest first.
func (s *Service) ListByRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error) {
	return s.list(ctx, `
		SELECT j.id, j.recruiter_id, j.title, j.location, j.job_description, j.job_type,
			j.experience_level, j.skills_required, j.application_deadline, j.created_at,
			r.company_name
		FROM jobs j
		JOIN recruiters r ON j.recruiter_id = r.id
		WHERE j.recruiter_id = $1
		ORDER BY j.created_at DESC`, recruiterID)
}

// Delete removes a job posting.
func (s *Service) Delete(ctx context.Context, jobID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	s.logger.Info("job deleted", map[string]interface{}{"job_id": jobID})
	return nil
}

func (s *Service) list(ctx context.Context, query string, args ...interface{}) ([]models.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.WithError(err).Error("failed to query jobs", nil)
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQueryFailed, err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	var skills pq.StringArray
	var deadline sql.NullTime
	err := row.Scan(&j.ID, &j.RecruiterID, &j.Title, &j.Location, &j.JobDescription,
		&j.JobType, &j.ExperienceLevel, &skills, &deadline, &j.CreatedAt, &j.CompanyName)
	if err != nil {
		return nil, err
	}
	j.SkillsRequired = skills
	if deadline.Valid {
		t := deadline.Time
		j.ApplicationDeadline = &t
	}
	return &j, nil
}

// ApplyFilter narrows jobs in memory. The query term matches the title or any
// required skill, case-insensitively; location is a substring match; the
// experience level must match exactly.
func ApplyFilter(jobs []models.Job, f Filter) []models.Job {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	location := strings.ToLower(strings.TrimSpace(f.Location))

	out := []models.Job{}
	for _, job := range jobs {
		if query != "" && !matchesQuery(job, query) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		if f.ExperienceLevel != "" && job.ExperienceLevel != f.ExperienceLevel {
			continue
		}
		out = append(out, job)
	}
	return out
}

func matchesQuery(job models.Job, query string) bool {
	if strings.Contains(strings.ToLower(job.Title), query) {
		return true
	}
	for _, skill := range job.SkillsRequired {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

// IsClosed reports whether a job stopped accepting applications. The deadline
// day itself still counts as open: the cutoff is the last instant of that
// date, not its midnight.
func IsClosed(job *models.Job, now time.Time) bool {
	if job.ApplicationDeadline == nil {
		return false
	}
	d := job.ApplicationDeadline.UTC()
	endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999999999, time.UTC)
	return now.UTC().After(endOfDay)
}
