package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

// ListNotifications returns the caller's live notification queue
// @Summary List notifications
// @Description Returns the live (undismissed, unexpired) notifications, newest first
// @Tags notifications
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Notification list"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	notifications := h.notificationService.List(userID)

	c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// DismissNotification removes a notification from the caller's queue
// @Summary Dismiss notification
// @Description Removes a notification by id. Dismissing an unknown or expired id is a no-op.
// @Tags notifications
// @Accept json
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DismissNotification(c *gin.Context) {
	notificationID := c.Param("id")
	if notificationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Notification ID is required",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.notificationService.Dismiss(userID, notificationID)

	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification dismissed"})
}
