// internal/handlers/profiles.go
//
// Candidate and recruiter profile routes, including file uploads.
package handlers

import (
	"io"
	"net/http"

	"jobboard/internal/models"

	"github.com/gin-gonic/gin"
)

// ==========================
// Candidates
// ==========================

func (h *Handler) createCandidate(c *gin.Context) {
	var profile models.CandidateProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.Candidates.Create(c.Request.Context(), &profile)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) getCandidate(c *gin.Context) {
	profile, err := h.Candidates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateCandidate(c *gin.Context) {
	var profile models.CandidateProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	profile.ID = c.Param("id")

	if err := h.Candidates.Update(c.Request.Context(), &profile); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) uploadCandidateResume(c *gin.Context) {
	filename, data, err := readUpload(c, "resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing resume file"})
		return
	}

	url, err := h.Candidates.UploadResume(c.Request.Context(), c.Param("id"), filename, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume_url": url})
}

// ==========================
// Recruiters
// ==========================

func (h *Handler) createRecruiter(c *gin.Context) {
	var profile models.RecruiterProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.Recruiters.Create(c.Request.Context(), &profile)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) getRecruiter(c *gin.Context) {
	profile, err := h.Recruiters.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateRecruiter(c *gin.Context) {
	var profile models.RecruiterProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	profile.ID = c.Param("id")

	if err := h.Recruiters.Update(c.Request.Context(), &profile); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) uploadRecruiterLogo(c *gin.Context) {
	filename, data, err := readUpload(c, "logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing logo file"})
		return
	}

	url, err := h.Recruiters.UploadLogo(c.Request.Context(), c.Param("id"), filename, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logo_url": url})
}

func (h *Handler) recruiterStats(c *gin.Context) {
	stats, err := h.Recruiters.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func readUpload(c *gin.Context, field string) (string, []byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	f, err := file.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return file.Filename, data, nil
}
