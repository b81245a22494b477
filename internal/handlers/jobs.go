// internal/handlers/jobs.go
package handlers

import (
	"net/http"

	"jobboard/internal/services/jobs"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createJob(c *gin.Context) {
	var input jobs.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	job, err := h.Jobs.Create(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// listJobs returns every job, filtered in memory by the optional query
// params. The whole list is fetched first; filtering never reaches the
// database.
func (h *Handler) listJobs(c *gin.Context) {
	all, err := h.Jobs.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	filtered := jobs.ApplyFilter(all, jobs.Filter{
		Query:           c.Query("q"),
		Location:        c.Query("location"),
		ExperienceLevel: c.Query("level"),
	})
	c.JSON(http.StatusOK, gin.H{"jobs": filtered, "total": len(filtered)})
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) deleteJob(c *gin.Context) {
	if err := h.Jobs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) listRecruiterJobs(c *gin.Context) {
	list, err := h.Jobs.ListByRecruiter(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": list, "total": len(list)})
}
