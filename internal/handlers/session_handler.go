package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// Bootstrap hydrates the caller's profile after sign-in
// @Summary Bootstrap session
// @Description Hydrates the profile from remote metadata, falling back to local state and defaults
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /session/bootstrap [post]
func (h *SessionHandler) Bootstrap(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Bootstrapping session", "user_id", userID)

	profile, err := h.sessionService.Bootstrap(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SignOut flushes pending sync work and resets local state
// @Summary Sign out
// @Description Flushes pending profile sync writes and resets the local profile to defaults
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /session/signout [post]
func (h *SessionHandler) SignOut(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Signing out", "user_id", userID)

	if err := h.sessionService.SignOut(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Signed out"})
}
