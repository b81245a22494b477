// Package handlers wires the service layer to gin routes.
package handlers

import (
	"jobboard/internal/common/logger"
	"jobboard/internal/common/observability"
	"jobboard/internal/services/admin"
	"jobboard/internal/services/analysis"
	"jobboard/internal/services/applications"
	"jobboard/internal/services/candidates"
	"jobboard/internal/services/jobs"
	"jobboard/internal/services/matchscore"
	"jobboard/internal/services/notifications"
	"jobboard/internal/services/recruiters"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	Applications  *applications.Service
	Jobs          *jobs.Service
	Recruiters    *recruiters.Service
	Candidates    *candidates.Service
	MatchScore    *matchscore.Service
	Analysis      *analysis.Service
	Admin         *admin.Service
	Notifications *notifications.Service
	Obs           *observability.Observability
	Logger        logger.Logger
}

// NewRouter builds the gin engine with every route mounted. CORS is wide
// open: the browser frontend is served from a different origin.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	r.Use(h.requestMetrics())

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/candidates", h.createCandidate)
		api.GET("/candidates/:id", h.getCandidate)
		api.PUT("/candidates/:id", h.updateCandidate)
		api.POST("/candidates/:id/resume", h.uploadCandidateResume)
		api.GET("/candidates/:id/applications", h.listCandidateApplications)

		api.POST("/recruiters", h.createRecruiter)
		api.GET("/recruiters/:id", h.getRecruiter)
		api.PUT("/recruiters/:id", h.updateRecruiter)
		api.POST("/recruiters/:id/logo", h.uploadRecruiterLogo)
		api.GET("/recruiters/:id/stats", h.recruiterStats)
		api.GET("/recruiters/:id/jobs", h.listRecruiterJobs)

		api.GET("/jobs", h.listJobs)
		api.POST("/jobs", h.createJob)
		api.GET("/jobs/:id", h.getJob)
		api.DELETE("/jobs/:id", h.deleteJob)
		api.GET("/jobs/:id/applications", h.listJobApplications)

		api.POST("/applications", h.submitApplication)
		api.DELETE("/applications/:id", h.withdrawApplication)
		api.PATCH("/applications/:id/status", h.updateApplicationStatus)
		api.GET("/applications/:id/analysis", h.getApplicationAnalysis)

		api.GET("/users/:id/notifications", h.listNotifications)
		api.POST("/users/:id/notifications/read-all", h.markAllNotificationsRead)
		api.POST("/notifications/:id/read", h.markNotificationRead)
	}

	fn := r.Group("/functions")
	{
		fn.POST("/job-match-score", h.jobMatchScore)
		fn.POST("/analyze-resume", h.analyzeResume)
		fn.POST("/parse-resume", h.parseResume)
		fn.POST("/send-job-alert", h.sendJobAlert)
		fn.POST("/admin-user-actions", h.adminUserActions)
		fn.POST("/send-interview-notification", h.sendInterviewNotification)
	}

	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
