package handler

import (
	"github.com/gin-gonic/gin"

	notificationapp "github.com/powergrid/backend/internal/application/notification"
)

// NotificationHandler handles the caller's in-app inbox
type NotificationHandler struct {
	BaseHandler
	notificationService *notificationapp.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *notificationapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, err := h.notificationService.List(c.Request.Context(), principal.UserID, parseFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), principal.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"unread": count})
}

// MarkAllRead handles POST /api/v1/notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), principal.UserID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"marked": true})
}
