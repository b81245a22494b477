// internal/services/candidates/service.go
package candidates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/common/logger"
	"jobboard/internal/common/storage"
	"jobboard/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrQueryFailed     = errors.New("CANDIDATE_QUERY_FAILED")
	ErrInsertFailed    = errors.New("CANDIDATE_INSERT_FAILED")
	ErrProfileNotFound = errors.New("CANDIDATE_PROFILE_NOT_FOUND")
	ErrUploadFailed    = errors.New("RESUME_UPLOAD_FAILED")
	ErrMissingRequired = errors.New("MISSING_REQUIRED_FIELD")
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
		logger:  log.WithFields(map[string]interface{}{"service": "candidates"}),
	}
}

// Create registers a candidate profile for a user account.
func (s *Service) Create(ctx context.Context, profile *models.CandidateProfile) (*models.CandidateProfile, error) {
	if profile.UserID == "" || profile.Name == "" {
		return nil, fmt.Errorf("%w: user_id and name are required", ErrMissingRequired)
	}

	profile.ID = uuid.New().String()
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidates (
			id, user_id, name, phone, location, education, experience, skills,
			resume_url, license_type, license_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		profile.ID, profile.UserID, profile.Name, profile.Phone, profile.Location,
		profile.Education, profile.Experience, pq.Array(profile.Skills),
		profile.ResumeURL, profile.LicenseType, profile.LicenseNumber,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		s.logger.WithError(err).Error("failed to insert candidate profile", nil)
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return profile, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.CandidateProfile, error) {
	return s.getWhere(ctx, "id", id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (*models.CandidateProfile, error) {
	return s.getWhere(ctx, "user_id", userID)
}

func (s *Service) getWhere(ctx context.Context, column, value string) (*models.CandidateProfile, error) {
	var p models.CandidateProfile
	var skills pq.StringArray
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, name, phone, location, education, experience, skills,
			resume_url, license_type, license_number, created_at, updated_at
		FROM candidates WHERE %s = $1`, column), value).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Phone, &p.Location, &p.Education,
			&p.Experience, &skills, &p.ResumeURL, &p.LicenseType, &p.LicenseNumber,
			&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s=%s", ErrProfileNotFound, column, value)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	p.Skills = skills
	return &p, nil
}

// Update overwrites the profile's editable fields.
func (s *Service) Update(ctx context.Context, profile *models.CandidateProfile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET name = $1, phone = $2, location = $3, education = $4, experience = $5,
			skills = $6, license_type = $7, license_number = $8, updated_at = $9
		WHERE id = $10`,
		profile.Name, profile.Phone, profile.Location, profile.Education,
		profile.Experience, pq.Array(profile.Skills), profile.LicenseType,
		profile.LicenseNumber, time.Now().UTC(), profile.ID,
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

// UploadResume stores the candidate's resume and records its URL on the profile.
func (s *Service) UploadResume(ctx context.Context, candidateID, filename string, data []byte) (string, error) {
	url, err := s.storage.Save(ctx, storage.BucketProfileResumes, filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET resume_url = $1, updated_at = $2 WHERE id = $3`,
		url, time.Now().UTC(), candidateID,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return "", fmt.Errorf("%w: %s", ErrProfileNotFound, candidateID)
	}
	return url, nil
}

// MergeParsedFields copies parsed resume fields into the profile, filling
// only fields the candidate has not set themselves. Skills are the exception:
// parsed skills are unioned into the existing list rather than dropped.
// Read and write are two statements, not one transaction; a concurrent
// profile edit between them can be overwritten by the merge.
func (s *Service) MergeParsedFields(ctx context.Context, candidateID string, parsed *models.ParsedResume) (*models.CandidateProfile, error) {
	profile, err := s.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if profile.Name == "" {
		profile.Name = parsed.Name
	}
	if profile.Phone == "" {
		profile.Phone = parsed.Phone
	}
	if profile.Location == "" {
		profile.Location = parsed.Location
	}
	if profile.Education == "" {
		profile.Education = parsed.Education
	}
	if profile.Experience == "" {
		profile.Experience = parsed.Experience
	}
	profile.Skills = unionSkills(profile.Skills, parsed.Skills)
	if profile.LicenseType == "" {
		profile.LicenseType = parsed.LicenseType
	}
	if profile.LicenseNumber == "" {
		profile.LicenseNumber = parsed.LicenseNumber
	}

	if err := s.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// unionSkills merges the parsed skills into the existing list, keeping the
// candidate's entries first and deduplicating case-insensitively.
func unionSkills(existing, parsed []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(parsed))
	merged := make([]string, 0, len(existing)+len(parsed))
	for _, list := range [][]string{existing, parsed} {
		for _, skill := range list {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, skill)
		}
	}
	return merged
}
