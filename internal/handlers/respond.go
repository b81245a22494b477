// internal/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "jobboard/internal/common/errors"
	"jobboard/internal/common/genai"
	"jobboard/internal/common/metrics"
	"jobboard/internal/services/admin"
	"jobboard/internal/services/analysis"
	"jobboard/internal/services/applications"
	"jobboard/internal/services/candidates"
	"jobboard/internal/services/jobs"
	"jobboard/internal/services/matchscore"
	"jobboard/internal/services/notifications"
	"jobboard/internal/services/recruiters"

	"github.com/gin-gonic/gin"
)

// writeError lifts the error into the StandardError taxonomy and writes it
// with the status its code maps to. Service sentinels are classified first;
// anything unrecognized is an internal error.
func (h *Handler) writeError(c *gin.Context, err error) {
	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		stdErr = standardize(err)
	}

	status := apperrors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.Logger.WithError(err).Error("request failed", map[string]interface{}{
			"path": c.FullPath(),
			"code": string(stdErr.Code),
		})
	}
	c.JSON(status, gin.H{
		"error":     stdErr.Code,
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})
}

// standardize maps a service sentinel onto the matching StandardError.
func standardize(err error) *apperrors.StandardError {
	switch {
	case isValidationError(err):
		return apperrors.NewValidationError(err.Error())
	case isNotFoundError(err):
		return apperrors.NewNotFoundError(err.Error())
	case isUploadError(err):
		return apperrors.NewStorageUploadFailedError(err)
	case isInsertError(err):
		return apperrors.NewDatabaseInsertFailedError(err)
	case isQueryError(err):
		return apperrors.NewDatabaseQueryFailedError(err)
	case errors.Is(err, notifications.ErrEmailSendFailed):
		return apperrors.NewEmailSendFailedError(err)
	case errors.Is(err, genai.ErrUpstreamFailed):
		return apperrors.NewAIUpstreamError(err.Error())
	case errors.Is(err, genai.ErrResponseTruncated):
		return apperrors.NewAIResponseTruncatedError()
	case errors.Is(err, genai.ErrEmptyResponse),
		errors.Is(err, analysis.ErrInvalidResponse):
		return apperrors.NewAIResponseInvalidError(err.Error())
	default:
		return apperrors.NewInternalError(err)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, applications.ErrMissingRequiredField) ||
		errors.Is(err, applications.ErrInvalidStatus) ||
		errors.Is(err, jobs.ErrMissingRequired) ||
		errors.Is(err, jobs.ErrInvalidDeadline) ||
		errors.Is(err, candidates.ErrMissingRequired) ||
		errors.Is(err, recruiters.ErrMissingRequired) ||
		errors.Is(err, analysis.ErrMissingResume) ||
		errors.Is(err, admin.ErrMissingUserID) ||
		errors.Is(err, admin.ErrMissingPassword) ||
		errors.Is(err, admin.ErrInvalidRole) ||
		errors.Is(err, notifications.ErrMissingRecipient)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, applications.ErrApplicationNotFound) ||
		errors.Is(err, jobs.ErrJobNotFound) ||
		errors.Is(err, candidates.ErrProfileNotFound) ||
		errors.Is(err, recruiters.ErrProfileNotFound) ||
		errors.Is(err, matchscore.ErrJobNotFound) ||
		errors.Is(err, matchscore.ErrCandidateNotFound) ||
		errors.Is(err, analysis.ErrAnalysisNotFound) ||
		errors.Is(err, notifications.ErrNotificationGone)
}

func isQueryError(err error) bool {
	return errors.Is(err, applications.ErrQueryFailed) ||
		errors.Is(err, jobs.ErrQueryFailed) ||
		errors.Is(err, candidates.ErrQueryFailed) ||
		errors.Is(err, recruiters.ErrQueryFailed) ||
		errors.Is(err, matchscore.ErrQueryFailed) ||
		errors.Is(err, analysis.ErrQueryFailed) ||
		errors.Is(err, admin.ErrQueryFailed) ||
		errors.Is(err, notifications.ErrQueryFailed)
}

func isInsertError(err error) bool {
	return errors.Is(err, applications.ErrInsertFailed) ||
		errors.Is(err, jobs.ErrInsertFailed) ||
		errors.Is(err, candidates.ErrInsertFailed) ||
		errors.Is(err, recruiters.ErrInsertFailed) ||
		errors.Is(err, notifications.ErrInsertFailed) ||
		errors.Is(err, analysis.ErrPersistFailed)
}

func isUploadError(err error) bool {
	return errors.Is(err, applications.ErrUploadFailed) ||
		errors.Is(err, candidates.ErrUploadFailed) ||
		errors.Is(err, recruiters.ErrUploadFailed)
}

func (h *Handler) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
		if h.Obs != nil {
			h.Obs.RecordRequest(c.Request.Context(), path, status)
			h.Obs.RecordDuration(c.Request.Context(), path, time.Since(start))
		}
	}
}
