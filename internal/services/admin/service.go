// internal/services/admin/service.go
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobboard/internal/common/auth"
	"jobboard/internal/common/logger"
	"jobboard/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUnknownAction      = errors.New("INVALID_ADMIN_ACTION")
	ErrMissingUserID      = errors.New("MISSING_USER_ID")
	ErrMissingPassword    = errors.New("MISSING_NEW_PASSWORD")
	ErrInvalidBanDuration = errors.New("INVALID_BAN_DURATION")
	ErrInvalidRole        = errors.New("INVALID_ROLE")
	ErrQueryFailed        = errors.New("ADMIN_QUERY_FAILED")
	ErrAuthBackendFailed  = errors.New("AUTH_ADMIN_FAILED")
)

var validRoles = map[string]bool{
	"candidate": true,
	"recruiter": true,
	"admin":     true,
}

type Service struct {
	db      *sql.DB
	authAPI auth.AdminAPI
	logger  logger.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, authAPI auth.AdminAPI, log logger.Logger) *Service {
	return &Service{
		db:      db,
		authAPI: authAPI,
		logger:  log.WithFields(map[string]interface{}{"service": "admin"}),
		now:     time.Now,
	}
}

// Execute dispatches one privileged action. Every action is logged with the
// target user; there is no dry-run mode.
func (s *Service) Execute(ctx context.Context, req *Request) (*Result, error) {
	if req.UserID == "" {
		return nil, ErrMissingUserID
	}

	s.logger.Info("admin action requested", map[string]interface{}{
		"action":  req.Action,
		"user_id": req.UserID,
	})

	switch req.Action {
	case ActionResetPassword:
		return s.resetPassword(ctx, req)
	case ActionBanUser:
		return s.banUser(ctx, req)
	case ActionUnbanUser:
		return s.unbanUser(ctx, req)
	case ActionChangeRole:
		return s.changeRole(ctx, req)
	case ActionDeleteUser:
		return s.deleteUser(ctx, req)
	case ActionVerifyEmail:
		return s.verifyEmail(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

func (s *Service) resetPassword(ctx context.Context, req *Request) (*Result, error) {
	if req.NewPassword == "" {
		return nil, ErrMissingPassword
	}
	if err := s.authAPI.ResetPassword(ctx, req.UserID, req.NewPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthBackendFailed, err)
	}
	return &Result{Action: req.Action, UserID: req.UserID}, nil
}

// banExpiry maps a duration label to the ban's end. "permanent" is a hundred
// years out rather than a sentinel, so every ban row compares the same way.
func (s *Service) banExpiry(duration string) (time.Time, error) {
	now := s.now().UTC()
	switch duration {
	case "1day":
		return now.AddDate(0, 0, 1), nil
	case "7days":
		return now.AddDate(0, 0, 7), nil
	case "30days":
		return now.AddDate(0, 0, 30), nil
	case "permanent":
		return now.AddDate(100, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBanDuration, duration)
	}
}

func (s *Service) banUser(ctx context.Context, req *Request) (*Result, error) {
	until, err := s.banExpiry(req.BanDuration)
	if err != nil {
		return nil, err
	}

	ban := models.UserBan{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Reason:      req.BanReason,
		BannedUntil: until,
		CreatedAt:   s.now().UTC(),
	}

	// One ban row per user; a new ban replaces any earlier one.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_bans (id, user_id, reason, banned_until, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET reason = EXCLUDED.reason, banned_until = EXCLUDED.banned_until, created_at = EXCLUDED.created_at`,
		ban.ID, ban.UserID, ban.Reason, ban.BannedUntil, ban.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: ban upsert: %v", ErrQueryFailed, err)
	}

	if err := s.authAPI.SetBanned(ctx, ban.UserID, &ban.BannedUntil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthBackendFailed, err)
	}

	return &Result{
		Action:      req.Action,
		UserID:      ban.UserID,
		BannedUntil: ban.BannedUntil.Format(time.RFC3339),
	}, nil
}

func (s *Service) unbanUser(ctx context.Context, req *Request) (*Result, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_bans WHERE user_id = $1`, req.UserID); err != nil {
		return nil, fmt.Errorf("%w: ban delete: %v", ErrQueryFailed, err)
	}
	if err := s.authAPI.SetBanned(ctx, req.UserID, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthBackendFailed, err)
	}
	return &Result{Action: req.Action, UserID: req.UserID}, nil
}

// changeRole writes the role to both stores: the local role table for
// queries, the auth backend's metadata for tokens. The two writes are not
// atomic; the local row goes first so a failed backend call leaves the role
// visible to a retry.
func (s *Service) changeRole(ctx context.Context, req *Request) (*Result, error) {
	if !validRoles[req.NewRole] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.NewRole)
	}

	role := models.UserRole{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Role:      req.NewRole,
		UpdatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (id, user_id, role, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`,
		role.ID, role.UserID, role.Role, role.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: role upsert: %v", ErrQueryFailed, err)
	}

	if err := s.authAPI.UpdateMetadata(ctx, role.UserID, map[string]interface{}{"role": role.Role}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthBackendFailed, err)
	}

	return &Result{Action: req.Action, UserID: role.UserID, Role: role.Role}, nil
}

// deleteUser removes the user's rows in dependency order, then the account
// itself. Deletes run sequentially without a transaction; a failure partway
// leaves earlier deletes in place and surfaces the error.
func (s *Service) deleteUser(ctx context.Context, req *Request) (*Result, error) {
	statements := []string{
		`DELETE FROM notifications WHERE user_id = $1`,
		`DELETE FROM applications WHERE candidate_id IN (SELECT id FROM candidates WHERE user_id = $1)`,
		`DELETE FROM applications WHERE job_id IN (SELECT j.id FROM jobs j JOIN recruiters r ON j.recruiter_id = r.id WHERE r.user_id = $1)`,
		`DELETE FROM jobs WHERE recruiter_id IN (SELECT id FROM recruiters WHERE user_id = $1)`,
		`DELETE FROM candidates WHERE user_id = $1`,
		`DELETE FROM recruiters WHERE user_id = $1`,
		`DELETE FROM user_roles WHERE user_id = $1`,
		`DELETE FROM user_bans WHERE user_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt, req.UserID); err != nil {
			return nil, fmt.Errorf("%w: cascade delete: %v", ErrQueryFailed, err)
		}
	}

	if err := s.authAPI.DeleteUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthBackendFailed, err)
	}

	s.logger.Info("user deleted", map[string]interface{}{"user_id": req.UserID})
	return &Result{Action: req.Action, UserID: req.UserID}, nil
}

func (s *Service) verifyEmail(ctx context.Context, req *Request) (*Result, error) {
	if err := s.authAPI.VerifyEmail(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthBackendFailed, err)
	}
	return &Result{Action: req.Action, UserID: req.UserID}, nil
}
