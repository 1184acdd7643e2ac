package handlers

import (
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications - GET /notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notifications retrieved", nonNil(notifications))
}

// MarkNotificationRead - PATCH /notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), p.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Notification marked as read", nil)
}
