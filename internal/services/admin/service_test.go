// internal/services/admin/service_test.go
package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobboard/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type fakeAuthAPI struct {
	resetCalls    []string
	bannedUntil   *time.Time
	bannedCalls   int
	metadata      map[string]interface{}
	verifiedCalls []string
	deletedCalls  []string
	err           error
}

func (f *fakeAuthAPI) ResetPassword(ctx context.Context, userID, newPassword string) error {
	f.resetCalls = append(f.resetCalls, userID)
	return f.err
}

func (f *fakeAuthAPI) SetBanned(ctx context.Context, userID string, until *time.Time) error {
	f.bannedCalls++
	f.bannedUntil = until
	return f.err
}

func (f *fakeAuthAPI) UpdateMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	f.metadata = metadata
	return f.err
}

func (f *fakeAuthAPI) VerifyEmail(ctx context.Context, userID string) error {
	f.verifiedCalls = append(f.verifiedCalls, userID)
	return f.err
}

func (f *fakeAuthAPI) DeleteUser(ctx context.Context, userID string) error {
	f.deletedCalls = append(f.deletedCalls, userID)
	return f.err
}

func newService(t *testing.T, now time.Time) (*Service, sqlmock.Sqlmock, *fakeAuthAPI, func()) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	api := &fakeAuthAPI{}
	svc := NewService(db, api, logger.NewNop())
	svc.now = func() time.Time { return now }
	return svc, mock, api, func() { db.Close() }
}

func TestService_Execute_UnknownAction(t *testing.T) {
	svc, _, _, cleanup := newService(t, time.Now())
	defer cleanup()

	_, err := svc.Execute(context.Background(), &Request{Action: "promote", UserID: "user-001"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestService_Execute_MissingUserID(t *testing.T) {
	svc, _, _, cleanup := newService(t, time.Now())
	defer cleanup()

	_, err := svc.Execute(context.Background(), &Request{Action: ActionResetPassword})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingUserID))
}

// ==========================
// reset_password / verify_email
// ==========================

func TestService_ResetPassword(t *testing.T) {
	svc, _, api, cleanup := newService(t, time.Now())
	defer cleanup()

	res, err := svc.Execute(context.Background(), &Request{
		Action:      ActionResetPassword,
		UserID:      "user-001",
		NewPassword: "correct-horse",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-001", res.UserID)
	assert.Equal(t, []string{"user-001"}, api.resetCalls)
}

func TestService_ResetPassword_MissingPassword(t *testing.T) {
	svc, _, _, cleanup := newService(t, time.Now())
	defer cleanup()

	_, err := svc.Execute(context.Background(), &Request{Action: ActionResetPassword, UserID: "user-001"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPassword))
}

func TestService_VerifyEmail(t *testing.T) {
	svc, _, api, cleanup := newService(t, time.Now())
	defer cleanup()

	_, err := svc.Execute(context.Background(), &Request{Action: ActionVerifyEmail, UserID: "user-001"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"user-001"}, api.verifiedCalls)
}

// ==========================
// ban_user / unban_user
// ==========================

func TestService_BanUser_SevenDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc, mock, api, cleanup := newService(t, now)
	defer cleanup()

	expectedUntil := now.AddDate(0, 0, 7)
	mock.ExpectExec(`INSERT INTO user_bans`).
		WithArgs(sqlmock.AnyArg(), "user-001", "spam", expectedUntil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.Execute(context.Background(), &Request{
		Action:      ActionBanUser,
		UserID:      "user-001",
		BanDuration: "7days",
		BanReason:   "spam",
	})

	assert.NoError(t, err)
	assert.Equal(t, expectedUntil.Format(time.RFC3339), res.BannedUntil)
	assert.NotNil(t, api.bannedUntil)
	assert.Equal(t, expectedUntil, *api.bannedUntil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_BanUser_PermanentIsHundredYears(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc, mock, api, cleanup := newService(t, now)
	defer cleanup()

	expectedUntil := now.AddDate(100, 0, 0)
	mock.ExpectExec(`INSERT INTO user_bans`).
		WithArgs(sqlmock.AnyArg(), "user-001", "", expectedUntil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Execute(context.Background(), &Request{
		Action:      ActionBanUser,
		UserID:      "user-001",
		BanDuration: "permanent",
	})

	assert.NoError(t, err)
	assert.Equal(t, expectedUntil, *api.bannedUntil)
}

func TestService_BanUser_ReplacesExistingBan(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc, mock, _, cleanup := newService(t, now)
	defer cleanup()

	// Both bans hit the same upsert; the second overwrites the first row.
	mock.ExpectExec(`INSERT INTO user_bans`).
		WithArgs(sqlmock.AnyArg(), "user-001", "first", now.AddDate(0, 0, 1), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_bans`).
		WithArgs(sqlmock.AnyArg(), "user-001", "second", now.AddDate(0, 0, 30), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Execute(context.Background(), &Request{
		Action: ActionBanUser, UserID: "user-001", BanDuration: "1day", BanReason: "first",
	})
	assert.NoError(t, err)

	_, err = svc.Execute(context.Background(), &Request{
		Action: ActionBanUser, UserID: "user-001", BanDuration: "30days", BanReason: "second",
	})
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_BanUser_InvalidDuration(t *testing.T) {
	svc, _, api, cleanup := newService(t, time.Now())
	defer cleanup()

	_, err := svc.Execute(context.Background(), &Request{
		Action:      ActionBanUser,
		UserID:      "user-001",
		BanDuration: "forever",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBanDuration))
	assert.Equal(t, 0, api.bannedCalls)
}

func TestService_UnbanUser(t *testing.T) {
	svc, mock, api, cleanup := newService(t, time.Now())
	defer cleanup()

	mock.ExpectExec(`DELETE FROM user_bans`).
		WithArgs("user-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Execute(context.Background(), &Request{Action: ActionUnbanUser, UserID: "user-001"})

	assert.NoError(t, err)
	assert.Equal(t, 1, api.bannedCalls)
	assert.Nil(t, api.bannedUntil)
}

// ==========================
// change_role
// ==========================

func TestService_ChangeRole_DualWrite(t *testing.T) {
	svc, mock, api, cleanup := newService(t, time.Now())
	defer cleanup()

	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(sqlmock.AnyArg(), "user-001", "recruiter", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.Execute(context.Background(), &Request{
		Action:  ActionChangeRole,
		UserID:  "user-001",
		NewRole: "recruiter",
	})

	assert.NoError(t, err)
	assert.Equal(t, "recruiter", res.Role)
	assert.Equal(t, map[string]interface{}{"role": "recruiter"}, api.metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ChangeRole_InvalidRole(t *testing.T) {
	svc, _, _, cleanup := newService(t, time.Now())
	defer cleanup()

	_, err := svc.Execute(context.Background(), &Request{
		Action:  ActionChangeRole,
		UserID:  "user-001",
		NewRole: "superuser",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRole))
}

func TestService_ChangeRole_BackendFailureAfterLocalWrite(t *testing.T) {
	svc, mock, api, cleanup := newService(t, time.Now())
	defer cleanup()

	api.err = errors.New("backend unavailable")
	mock.ExpectExec(`INSERT INTO user_roles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Execute(context.Background(), &Request{
		Action:  ActionChangeRole,
		UserID:  "user-001",
		NewRole: "admin",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthBackendFailed))
	// The local row was still written before the backend failed.
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// delete_user
// ==========================

func TestService_DeleteUser_Cascade(t *testing.T) {
	svc, mock, api, cleanup := newService(t, time.Now())
	defer cleanup()

	for i := 0; i < 8; i++ {
		mock.ExpectExec(`DELETE FROM`).
			WithArgs("user-001").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	_, err := svc.Execute(context.Background(), &Request{Action: ActionDeleteUser, UserID: "user-001"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"user-001"}, api.deletedCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_DeleteUser_StopsOnFailure(t *testing.T) {
	svc, mock, api, cleanup := newService(t, time.Now())
	defer cleanup()

	mock.ExpectExec(`DELETE FROM`).
		WithArgs("user-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM`).
		WithArgs("user-001").
		WillReturnError(errors.New("deadlock detected"))

	_, err := svc.Execute(context.Background(), &Request{Action: ActionDeleteUser, UserID: "user-001"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryFailed))
	// The account itself must survive a failed cascade.
	assert.Empty(t, api.deletedCalls)
}
