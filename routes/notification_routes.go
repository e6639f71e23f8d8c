package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"juaconnect-server/middleware"
	"juaconnect-server/models"
	"juaconnect-server/services"
)

// RegisterNotificationRoutes registers notification routes. Notifications
// are addressed to the caller's role.
func RegisterNotificationRoutes(router *gin.RouterGroup, h *Handler) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.getNotifications)
		notifications.GET("/unread", h.getUnreadCount)
		notifications.PUT("/read-all", h.markAllNotificationsRead)
		notifications.PUT("/:id/read", h.markNotificationRead)
		notifications.DELETE("/:id", h.deleteNotification)
	}
}

func requireRole(c *gin.Context) (models.Role, bool) {
	role, ok := middleware.GetRole(c)
	if !ok {
		respondIdentityRequired(c, "Missing or unknown "+middleware.HeaderUserRole+" header")
	}
	return role, ok
}

func (h *Handler) getNotifications(c *gin.Context) {
	role, ok := requireRole(c)
	if !ok {
		return
	}
	order, err := services.ParseOrder(c.DefaultQuery("order", "newest"))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	list, err := h.Marketplace.Notifications.List(c.Request.Context(), role, order)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Envelope{
		Success:     true,
		Data:        list.Notifications,
		UnreadCount: &list.UnreadCount,
	})
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	role, ok := requireRole(c)
	if !ok {
		return
	}
	count, err := h.Marketplace.Notifications.UnreadCount(c.Request.Context(), role)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Envelope{
		Success:     true,
		Data:        gin.H{"unread_count": count},
		UnreadCount: &count,
	})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	role, ok := requireRole(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Marketplace.Notifications.MarkRead(c.Request.Context(), role, id); err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, nil, "Notification marked as read")
}

func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	role, ok := requireRole(c)
	if !ok {
		return
	}
	if err := h.Marketplace.Notifications.MarkAllRead(c.Request.Context(), role); err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, nil, "All notifications marked as read")
}

func (h *Handler) deleteNotification(c *gin.Context) {
	role, ok := requireRole(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Marketplace.Notifications.Delete(c.Request.Context(), role, id); err != nil {
		respondError(c, err, nil)
		return
	}
	respondOK(c, http.StatusOK, nil, "Notification deleted")
}
