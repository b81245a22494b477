// internal/handlers/notifications.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listNotifications(c *gin.Context) {
	items, err := h.Notifications.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "unread": unread})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	if err := h.Notifications.MarkAllRead(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}
