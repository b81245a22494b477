// internal/services/notifications/service.go
package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobboard/internal/common/logger"
	"jobboard/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
)

var (
	ErrQueryFailed      = errors.New("NOTIFICATION_QUERY_FAILED")
	ErrInsertFailed     = errors.New("NOTIFICATION_INSERT_FAILED")
	ErrNotificationGone = errors.New("NOTIFICATION_NOT_FOUND")
	ErrEmailSendFailed  = errors.New("EMAIL_SEND_FAILED")
	ErrMissingRecipient = errors.New("MISSING_RECIPIENT_EMAIL")
)

// Notification types shown in the candidate feed.
const (
	TypeJobAlert           = "job_alert"
	TypeInterviewScheduled = "interview_scheduled"
)

// SESAPI is the slice of the SES client the service needs; tests provide a
// fake instead of an AWS session.
type SESAPI interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Service struct {
	db     *sql.DB
	email  SESAPI
	sender string
	logger logger.Logger
}

func NewService(db *sql.DB, email SESAPI, sender string, log logger.Logger) *Service {
	return &Service{
		db:     db,
		email:  email,
		sender: sender,
		logger: log.WithFields(map[string]interface{}{"service": "notifications"}),
	}
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, candidate_id, application_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	items := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var appID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.CandidateID, &appID, &n.Type,
			&n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQueryFailed, err)
		}
		if appID.Valid {
			v := appID.String
			n.ApplicationID = &v
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return items, nil
}

// MarkRead flips a single notification to read.
func (s *Service) MarkRead(ctx context.Context, notificationID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, notificationID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotificationGone, notificationID)
	}
	return nil
}

// MarkAllRead flips every unread notification of a user. Marking an already
// clean feed is not an error.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return nil
}

// CreateInterviewNotification drops an interview notice into the candidate's
// feed when their application moves to interview_scheduled.
func (s *Service) CreateInterviewNotification(ctx context.Context, userID, candidateID, applicationID, jobTitle, companyName string) (*models.Notification, error) {
	n := &models.Notification{
		ID:          uuid.New().String(),
		UserID:      userID,
		CandidateID: candidateID,
		Type:        TypeInterviewScheduled,
		Title:       "Interview scheduled",
		Message:     fmt.Sprintf("Your interview for %s at %s has been scheduled.", jobTitle, companyName),
		CreatedAt:   time.Now().UTC(),
	}
	if applicationID != "" {
		id := applicationID
		n.ApplicationID = &id
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, candidate_id, application_id, type, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`,
		n.ID, n.UserID, n.CandidateID, n.ApplicationID, n.Type, n.Title, n.Message, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return n, nil
}

// JobAlert is one matching job announced to a candidate by email and feed.
type JobAlert struct {
	UserID         string `json:"user_id"`
	CandidateID    string `json:"candidate_id"`
	RecipientEmail string `json:"recipient_email"`
	JobID          string `json:"job_id"`
	JobTitle       string `json:"job_title"`
	CompanyName    string `json:"company_name"`
	Location       string `json:"location"`
}

// SendJobAlert emails the candidate about a matching job and records the
// alert in their notification feed. The feed row is written even when the
// email bounces later; SES only confirms acceptance.
func (s *Service) SendJobAlert(ctx context.Context, alert *JobAlert) error {
	if alert.RecipientEmail == "" {
		return ErrMissingRecipient
	}

	subject := fmt.Sprintf("New job match: %s at %s", alert.JobTitle, alert.CompanyName)
	body := fmt.Sprintf("A new job matching your profile was posted.\n\n%s\n%s\n%s\n\nLog in to apply.",
		alert.JobTitle, alert.CompanyName, alert.Location)

	_, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{alert.RecipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		s.logger.WithError(err).Error("job alert email failed", map[string]interface{}{
			"job_id":  alert.JobID,
			"user_id": alert.UserID,
		})
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	n := &models.Notification{
		ID:          uuid.New().String(),
		UserID:      alert.UserID,
		CandidateID: alert.CandidateID,
		Type:        TypeJobAlert,
		Title:       subject,
		Message:     body,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, candidate_id, application_id, type, title, message, is_read, created_at)
		VALUES ($1, $2, $3, NULL, $4, $5, $6, FALSE, $7)`,
		n.ID, n.UserID, n.CandidateID, n.Type, n.Title, n.Message, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	s.logger.Info("job alert sent", map[string]interface{}{
		"job_id":  alert.JobID,
		"user_id": alert.UserID,
	})
	return nil
}
