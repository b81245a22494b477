// internal/services/applications/service.go
package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobboard/internal/common/logger"
	"jobboard/internal/common/metrics"
	"jobboard/internal/common/storage"
	"jobboard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrQueryFailed          = errors.New("DATABASE_QUERY_FAILED")
	ErrInsertFailed         = errors.New("DATABASE_INSERT_FAILED")
	ErrUploadFailed         = errors.New("STORAGE_UPLOAD_FAILED")
	ErrApplicationNotFound  = errors.New("APPLICATION_NOT_FOUND")
	ErrInvalidStatus        = errors.New("INVALID_STATUS")
	ErrMissingRequiredField = errors.New("MISSING_REQUIRED_FIELD")
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	duplicateConstraint = "applications_job_id_candidate_id_key"
)

type Service struct {
	db      *sql.DB
	storage storage.Storage
	logger  logger.Logger
}

func NewService(db *sql.DB, store storage.Storage, log logger.Logger) *Service {
	return &Service{
		db:      db,
		storage: store,
		logger:  log.WithFields(map[string]interface{}{"service": "applications"}),
	}
}

// Submit uploads the resume and inserts the application with status
// "applied". The one-application-per-candidate-per-job rule is enforced by
// the unique constraint on (job_id, candidate_id); a violation of that
// specific constraint is translated into an AlreadyApplied outcome with the
// existing row, not an error. The uploaded resume is not cleaned up in that
// case.
func (s *Service) Submit(ctx context.Context, input *SubmitInput) (*SubmitOutcome, error) {
	if input.JobID == "" || input.CandidateID == "" {
		return nil, fmt.Errorf("%w: job_id and candidate_id are required", ErrMissingRequiredField)
	}

	resumeURL := ""
	if len(input.Resume) > 0 {
		url, err := s.storage.Save(ctx, storage.BucketApplicationResumes, input.ResumeFilename, input.Resume)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		resumeURL = url
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:          uuid.New().String(),
		JobID:       input.JobID,
		CandidateID: input.CandidateID,
		Status:      models.StatusApplied,
		CoverLetter: input.CoverLetter,
		ResumeURL:   resumeURL,
		AppliedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, job_id, candidate_id, status, cover_letter, resume_url, applied_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		app.ID, app.JobID, app.CandidateID, app.Status, app.CoverLetter, app.ResumeURL, app.AppliedAt, app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == duplicateConstraint {
			existing, getErr := s.getByPair(ctx, input.JobID, input.CandidateID)
			if getErr != nil {
				return nil, getErr
			}
			metrics.ApplicationsSubmitted.WithLabelValues("already_applied").Inc()
			s.logger.Info("duplicate application suppressed", map[string]interface{}{
				"jobId":       input.JobID,
				"candidateId": input.CandidateID,
			})
			return &SubmitOutcome{Application: existing, AlreadyApplied: true}, nil
		}
		return nil, fmt.Errorf("%w: insert failed: %v", ErrInsertFailed, err)
	}

	metrics.ApplicationsSubmitted.WithLabelValues("created").Inc()
	s.logger.Info("application submitted", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"candidateId":   app.CandidateID,
	})

	return &SubmitOutcome{Application: app}, nil
}

// Withdraw deletes the row. No soft delete, no audit trail.
func (s *Service) Withdraw(ctx context.Context, applicationID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, applicationID)
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrApplicationNotFound, applicationID)
	}

	s.logger.Info("application withdrawn", map[string]interface{}{
		"applicationId": applicationID,
	})
	return nil
}

// UpdateStatus overwrites the status unconditionally. Transitions are not
// validated here; only the status value itself is checked.
func (s *Service) UpdateStatus(ctx context.Context, applicationID, status string) error {
	if !models.IsValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), applicationID,
	)
	if err != nil {
		return fmt.Errorf("%w: update failed: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrApplicationNotFound, applicationID)
	}

	s.logger.Info("application status updated", map[string]interface{}{
		"applicationId": applicationID,
		"status":        status,
	})
	return nil
}

// ListByCandidate returns the candidate's applications joined against jobs
// and recruiters, newest first.
func (s *Service) ListByCandidate(ctx context.Context, candidateID string) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.job_id, a.candidate_id, a.status, a.cover_letter, a.resume_url,
			a.applied_at, a.updated_at, j.title, r.company_name
		FROM applications a
		JOIN jobs j ON a.job_id = j.id
		JOIN recruiters r ON j.recruiter_id = r.id
		WHERE a.candidate_id = $1
		ORDER BY a.applied_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.CoverLetter, &a.ResumeURL,
			&a.AppliedAt, &a.UpdatedAt, &a.JobTitle, &a.CompanyName); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQueryFailed, err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return apps, nil
}

// ListByJob returns a job's applications joined against candidates, newest first.
func (s *Service) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.job_id, a.candidate_id, a.status, a.cover_letter, a.resume_url,
			a.applied_at, a.updated_at, c.name
		FROM applications a
		JOIN candidates c ON a.candidate_id = c.id
		WHERE a.job_id = $1
		ORDER BY a.applied_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.CoverLetter, &a.ResumeURL,
			&a.AppliedAt, &a.UpdatedAt, &a.CandidateName); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQueryFailed, err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return apps, nil
}

func (s *Service) getByPair(ctx context.Context, jobID, candidateID string) (*models.Application, error) {
	var a models.Application
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, candidate_id, status, cover_letter, resume_url, applied_at, updated_at
		FROM applications
		WHERE job_id = $1 AND candidate_id = $2`, jobID, candidateID).
		Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.CoverLetter, &a.ResumeURL, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrApplicationNotFound, jobID, candidateID)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return &a, nil
}
