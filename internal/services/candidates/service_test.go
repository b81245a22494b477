// internal/services/candidates/service_test.go
package candidates

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobboard/internal/common/logger"
	"jobboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type fakeStorage struct {
	url string
	err error
}

func (f *fakeStorage) Save(ctx context.Context, bucket, filename string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	svc := NewService(db, &fakeStorage{url: "http://files/resumes/profiles/resume.pdf"}, logger.NewNop())
	return svc, mock, func() { db.Close() }
}

func candidateColumns() []string {
	return []string{
		"id", "user_id", "name", "phone", "location", "education", "experience",
		"skills", "resume_url", "license_type", "license_number", "created_at", "updated_at",
	}
}

func TestService_Create_Success(t *testing.T) {
	svc, mock, cleanup := newService(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO candidates`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	profile, err := svc.Create(context.Background(), &models.CandidateProfile{
		UserID: "user-001",
		Name:   "Jane Doe",
		Skills: []string{"Go"},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_MissingName(t *testing.T) {
	svc, _, cleanup := newService(t)
	defer cleanup()

	_, err := svc.Create(context.Background(), &models.CandidateProfile{UserID: "user-001"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequired))
}

func TestService_Get_NotFound(t *testing.T) {
	svc, mock, cleanup := newService(t)
	defer cleanup()

	mock.ExpectQuery(`FROM candidates WHERE id`).
		WithArgs("cand-missing").
		WillReturnRows(sqlmock.NewRows(candidateColumns()))

	_, err := svc.Get(context.Background(), "cand-missing")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestService_UploadResume(t *testing.T) {
	svc, mock, cleanup := newService(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE candidates SET resume_url`).
		WithArgs("http://files/resumes/profiles/resume.pdf", sqlmock.AnyArg(), "cand-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	url, err := svc.UploadResume(context.Background(), "cand-001", "resume.pdf", []byte("%PDF"))

	assert.NoError(t, err)
	assert.Equal(t, "http://files/resumes/profiles/resume.pdf", url)
}

func TestService_UploadResume_StorageError(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewService(db, &fakeStorage{err: errors.New("disk full")}, logger.NewNop())

	_, err = svc.UploadResume(context.Background(), "cand-001", "resume.pdf", []byte("%PDF"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUploadFailed))
}

// ==========================
// MergeParsedFields
// ==========================

func TestService_MergeParsedFields_FillsOnlyEmpty(t *testing.T) {
	svc, mock, cleanup := newService(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM candidates WHERE id`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows(candidateColumns()).
			AddRow("cand-001", "user-001", "Jane Doe", "", "Berlin", "", "", "{}", "", "", "", now, now))

	// The existing name and location survive; parsed values fill the rest.
	mock.ExpectExec(`UPDATE candidates`).
		WithArgs("Jane Doe", "+49 151 000", "Berlin", "BSc CS", "5 years backend",
			sqlmock.AnyArg(), "Class B", "DL-1234", sqlmock.AnyArg(), "cand-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	profile, err := svc.MergeParsedFields(context.Background(), "cand-001", &models.ParsedResume{
		Name:          "J. Doe",
		Phone:         "+49 151 000",
		Location:      "Hamburg",
		Education:     "BSc CS",
		Experience:    "5 years backend",
		Skills:        []string{"Go", "SQL"},
		LicenseType:   "Class B",
		LicenseNumber: "DL-1234",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "Berlin", profile.Location)
	assert.Equal(t, "+49 151 000", profile.Phone)
	assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_MergeParsedFields_UnionsSkills(t *testing.T) {
	svc, mock, cleanup := newService(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM candidates WHERE id`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows(candidateColumns()).
			AddRow("cand-001", "user-001", "Jane Doe", "", "", "", "", "{Go}", "", "", "", now, now))

	mock.ExpectExec(`UPDATE candidates`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	profile, err := svc.MergeParsedFields(context.Background(), "cand-001", &models.ParsedResume{
		Skills: []string{"SQL", "go"},
	})

	assert.NoError(t, err)
	// Existing skills stay first; parsed skills extend the list, and a
	// case-insensitive duplicate is not added twice.
	assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_MergeParsedFields_ProfileMissing(t *testing.T) {
	svc, mock, cleanup := newService(t)
	defer cleanup()

	mock.ExpectQuery(`FROM candidates WHERE id`).
		WithArgs("cand-missing").
		WillReturnRows(sqlmock.NewRows(candidateColumns()))

	_, err := svc.MergeParsedFields(context.Background(), "cand-missing", &models.ParsedResume{})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}
