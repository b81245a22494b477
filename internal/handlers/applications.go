// internal/handlers/applications.go
package handlers

import (
	"io"
	"net/http"

	"jobboard/internal/services/applications"

	"github.com/gin-gonic/gin"
)

// submitApplication accepts a multipart form: job_id, candidate_id,
// cover_letter and an optional resume file. Submitting against a job the
// candidate already applied to is not an error: the response carries the
// existing application with already_applied set.
func (h *Handler) submitApplication(c *gin.Context) {
	input := &applications.SubmitInput{
		JobID:       c.PostForm("job_id"),
		CandidateID: c.PostForm("candidate_id"),
		CoverLetter: c.PostForm("cover_letter"),
	}

	if file, err := c.FormFile("resume"); err == nil {
		f, err := file.Open()
		if err != nil {
			h.writeError(c, err)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			h.writeError(c, err)
			return
		}
		input.Resume = data
		input.ResumeFilename = file.Filename
	}

	outcome, err := h.Applications.Submit(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if outcome.AlreadyApplied {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"application":     outcome.Application,
		"already_applied": outcome.AlreadyApplied,
	})
}

func (h *Handler) withdrawApplication(c *gin.Context) {
	if err := h.Applications.Withdraw(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": true})
}

func (h *Handler) updateApplicationStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.Applications.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": body.Status})
}

func (h *Handler) listCandidateApplications(c *gin.Context) {
	apps, err := h.Applications.ListByCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *Handler) listJobApplications(c *gin.Context) {
	apps, err := h.Applications.ListByJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}
