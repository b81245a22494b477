// internal/services/recruiters/service.go
package recruiters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobboard/internal/common/logger"
	"jobboard/internal/common/storage"
	"jobboard/internal/models"
	"jobboard/internal/services/jobs"

	"github.com/google/uuid"
)

var (
	ErrQueryFailed     = errors.New("RECRUITER_QUERY_FAILED")
	ErrInsertFailed    = errors.New("RECRUITER_INSERT_FAILED")
	ErrProfileNotFound = errors.New("RECRUITER_PROFILE_NOT_FOUND")
	ErrUploadFailed    = errors.New("LOGO_UPLOAD_FAILED")
	ErrMissingRequired = errors.New("MISSING_REQUIRED_FIELD")
)

type Service struct {
	db      *sql.DB
	storage storage.Storage
	logger  logger.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, store storage.Storage, log logger.Logger) *Service {
	return &Service{
		db:      db,
		storage: store,
		logger:  log.WithFields(map[string]interface{}{"service": "recruiters"}),
		now:     time.Now,
	}
}

// Create registers a recruiter profile for a user account.
func (s *Service) Create(ctx context.Context, profile *models.RecruiterProfile) (*models.RecruiterProfile, error) {
	if profile.UserID == "" || profile.CompanyName == "" {
		return nil, fmt.Errorf("%w: user_id and company_name are required", ErrMissingRequired)
	}

	profile.ID = uuid.New().String()
	profile.CreatedAt = s.now().UTC()
	profile.UpdatedAt = profile.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recruiters (
			id, user_id, company_name, industry, description, location, logo_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		profile.ID, profile.UserID, profile.CompanyName, profile.Industry,
		profile.Description, profile.Location, profile.LogoURL, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		s.logger.WithError(err).Error("failed to insert recruiter profile", nil)
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return profile, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.RecruiterProfile, error) {
	return s.getWhere(ctx, "id", id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (*models.RecruiterProfile, error) {
	return s.getWhere(ctx, "user_id", userID)
}

func (s *Service) getWhere(ctx context.Context, column, value string) (*models.RecruiterProfile, error) {
	var p models.RecruiterProfile
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, company_name, industry, description, location, logo_url, created_at, updated_at
		FROM recruiters WHERE %s = $1`, column), value).
		Scan(&p.ID, &p.UserID, &p.CompanyName, &p.Industry, &p.Description,
			&p.Location, &p.LogoURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s=%s", ErrProfileNotFound, column, value)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return &p, nil
}

// Update overwrites the profile's editable fields.
func (s *Service) Update(ctx context.Context, profile *models.RecruiterProfile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recruiters
		SET company_name = $1, industry = $2, description = $3, location = $4, updated_at = $5
		WHERE id = $6`,
		profile.CompanyName, profile.Industry, profile.Description,
		profile.Location, s.now().UTC(), profile.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: update failed: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profile.ID)
	}
	return nil
}

// UploadLogo stores the company logo and records its URL on the profile.
func (s *Service) UploadLogo(ctx context.Context, recruiterID, filename string, data []byte) (string, error) {
	url, err := s.storage.Save(ctx, storage.BucketRecruiterLogos, filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE recruiters SET logo_url = $1, updated_at = $2 WHERE id = $3`,
		url, s.now().UTC(), recruiterID,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return "", fmt.Errorf("%w: %s", ErrProfileNotFound, recruiterID)
	}
	return url, nil
}

// Stats aggregates the recruiter's dashboard numbers in one pass over their
// jobs and the applications against them. Jobs split into active and closed
// by deadline; an application counts as reviewed once its status has moved
// past applied.
func (s *Service) Stats(ctx context.Context, recruiterID string) (*models.RecruiterStats, error) {
	now := s.now()

	jobRows, err := s.db.QueryContext(ctx,
		`SELECT id, application_deadline FROM jobs WHERE recruiter_id = $1`, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("%w: jobs: %v", ErrQueryFailed, err)
	}
	defer jobRows.Close()

	stats := &models.RecruiterStats{ByStatus: map[string]int{}}
	for jobRows.Next() {
		var id string
		var deadline sql.NullTime
		if err := jobRows.Scan(&id, &deadline); err != nil {
			return nil, fmt.Errorf("%w: scan job: %v", ErrQueryFailed, err)
		}
		job := models.Job{ID: id}
		if deadline.Valid {
			t := deadline.Time
			job.ApplicationDeadline = &t
		}
		if jobs.IsClosed(&job, now) {
			stats.ClosedJobs++
		} else {
			stats.ActiveJobs++
		}
	}
	if err := jobRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	appRows, err := s.db.QueryContext(ctx, `
		SELECT a.status
		FROM applications a
		JOIN jobs j ON a.job_id = j.id
		WHERE j.recruiter_id = $1`, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("%w: applications: %v", ErrQueryFailed, err)
	}
	defer appRows.Close()

	for appRows.Next() {
		var status string
		if err := appRows.Scan(&status); err != nil {
			return nil, fmt.Errorf("%w: scan application: %v", ErrQueryFailed, err)
		}
		stats.TotalApplications++
		stats.ByStatus[status]++
		if status != models.StatusApplied {
			stats.ReviewedApplications++
		}
		if status == models.StatusHired {
			stats.HiredCandidates++
		}
	}
	if err := appRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	return stats, nil
}
