package handlers

import (
	"strconv"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/services"

	"github.com/gin-gonic/gin"
)

// NotificationHandler replays the notification stream over HTTP
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Replay GET /api/notifications?after=<unix>&event_type=<type>&limit=<n>
func (h *NotificationHandler) Replay(c *gin.Context) {
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAmount, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	notifications, err := h.notificationService.Replay(c.Request.Context(), after, c.Query("event_type"), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondOK(c, notifications)
}
