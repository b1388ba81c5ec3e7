package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

type VentureHandler struct {
	BaseHandler
	ventureService services.VentureService
	validator      *validator.Validator
}

func NewVentureHandler(
	ventureService services.VentureService,
	validator *validator.Validator,
	logger utils.Logger,
) *VentureHandler {
	return &VentureHandler{
		BaseHandler:    NewBaseHandler(logger),
		ventureService: ventureService,
		validator:      validator,
	}
}

// AnalyzeVenture runs an AI analysis of a startup concept
// @Summary Analyze venture
// @Description Analyzes the concept, saves the pitch to the profile and awards XP
// @Tags ventures
// @Accept json
// @Produce json
// @Param venture body services.AnalyzeVentureRequest true "Venture concept"
// @Success 201 {object} models.VentureAnalysis
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 502 {object} ErrorResponse "Analysis failure"
// @Router /ventures/analyze [post]
func (h *VentureHandler) AnalyzeVenture(c *gin.Context) {
	var req services.AnalyzeVentureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Analyzing venture", "user_id", userID)

	analysis, err := h.ventureService.AnalyzeVenture(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, analysis)
}
