// internal/handlers/functions.go
//
// Function-style endpoints. These mirror what used to run as standalone
// serverless functions, kept under their own path prefix so existing
// frontend calls keep working.
package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	apperrors "jobboard/internal/common/errors"
	"jobboard/internal/services/admin"
	"jobboard/internal/services/analysis"
	"jobboard/internal/services/notifications"

	"github.com/gin-gonic/gin"
)

func (h *Handler) jobMatchScore(c *gin.Context) {
	var body struct {
		JobID       string `json:"job_id"`
		CandidateID string `json:"candidate_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.JobID == "" || body.CandidateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id and candidate_id are required"})
		return
	}

	score, err := h.MatchScore.Score(c.Request.Context(), body.JobID, body.CandidateID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": body.JobID, "score": score})
}

// analyzeResume takes a multipart form: a resume file (or resume_text) plus
// job_description and an optional application_id to attach the result to.
func (h *Handler) analyzeResume(c *gin.Context) {
	input := &analysis.AnalyzeInput{
		ResumeText:     c.PostForm("resume_text"),
		JobDescription: c.PostForm("job_description"),
		ApplicationID:  c.PostForm("application_id"),
	}
	if filename, data, err := readUpload(c, "resume"); err == nil {
		input.Resume = data
		input.MimeType = mimeFromFilename(filename)
	}

	result, err := h.Analysis.AnalyzeResume(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) parseResume(c *gin.Context) {
	input := &analysis.ParseInput{
		CandidateID: c.PostForm("candidate_id"),
	}
	filename, data, err := readUpload(c, "resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing resume file"})
		return
	}
	input.Resume = data
	input.MimeType = mimeFromFilename(filename)

	parsed, err := h.Analysis.ParseResume(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, parsed)
}

func (h *Handler) getApplicationAnalysis(c *gin.Context) {
	result, err := h.Analysis.GetByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) sendJobAlert(c *gin.Context) {
	var alert notifications.JobAlert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.Notifications.SendJobAlert(c.Request.Context(), &alert); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (h *Handler) adminUserActions(c *gin.Context) {
	var req admin.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.Admin.Execute(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, adminError(&req, err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// adminError attaches the requested action to the admin service's sentinels
// before they hit the generic mapping.
func adminError(req *admin.Request, err error) error {
	switch {
	case errors.Is(err, admin.ErrUnknownAction):
		return apperrors.NewInvalidAdminActionError(req.Action)
	case errors.Is(err, admin.ErrInvalidBanDuration):
		return apperrors.NewInvalidBanDurationError(req.BanDuration)
	case errors.Is(err, admin.ErrAuthBackendFailed):
		return apperrors.NewAuthAdminError(req.Action, err)
	default:
		return err
	}
}

func (h *Handler) sendInterviewNotification(c *gin.Context) {
	var body struct {
		UserID        string `json:"user_id"`
		CandidateID   string `json:"candidate_id"`
		ApplicationID string `json:"application_id"`
		JobTitle      string `json:"job_title"`
		CompanyName   string `json:"company_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	n, err := h.Notifications.CreateInterviewNotification(c.Request.Context(),
		body.UserID, body.CandidateID, body.ApplicationID, body.JobTitle, body.CompanyName)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func mimeFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		// Resumes are overwhelmingly PDFs; the model tolerates a wrong guess.
		return "application/pdf"
	}
}
