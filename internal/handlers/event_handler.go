package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
)

type EventHandler struct {
	BaseHandler
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService, logger utils.Logger) *EventHandler {
	return &EventHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventService: eventService,
	}
}

// ListEvents lists events with optional filtering
// @Summary List events
// @Tags events
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param source query string false "Filter by source"
// @Param type query string false "Filter by event type"
// @Success 200 {object} services.EventListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	if _, ok := h.requireUserID(c); !ok {
		return
	}

	filters := h.parseEventFilters(c)

	events, err := h.eventService.ListEvents(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// ToggleSaveEvent saves or unsaves an event for the caller
// @Summary Toggle save event
// @Description Saves the event, or removes it from saved if already present
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /events/{id}/save [post]
func (h *EventHandler) ToggleSaveEvent(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Event ID is required",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Toggling saved event", "user_id", userID, "event_id", eventID)

	profile, err := h.eventService.ToggleSaveEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ToggleRegisterEvent registers or unregisters the caller for an event
// @Summary Toggle event registration
// @Description Registers for the event (awarding XP) or cancels an existing registration
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /events/{id}/register [post]
func (h *EventHandler) ToggleRegisterEvent(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Event ID is required",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Toggling event registration", "user_id", userID, "event_id", eventID)

	profile, err := h.eventService.ToggleRegisterEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DiscoverNearby runs a grounded local-event discovery query
// @Summary Discover nearby events
// @Description Finds nearby hackathons, meetups and workshops via the AI search boundary
// @Tags events
// @Accept json
// @Produce json
// @Param q query string true "Search query"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Success 200 {object} services.DiscoveryResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /events/discover [get]
func (h *EventHandler) DiscoverNearby(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	var lat, lng *float64
	if latStr := c.Query("lat"); latStr != "" {
		if v, err := strconv.ParseFloat(latStr, 64); err == nil {
			lat = &v
		}
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		if v, err := strconv.ParseFloat(lngStr, 64); err == nil {
			lng = &v
		}
	}

	resp, err := h.eventService.DiscoverNearby(c.Request.Context(), query, lat, lng)
	if err != nil {
		h.LogError(c, err, "Event discovery failed", "query", query)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Event discovery unavailable",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== HELPER METHODS =====

func (h *EventHandler) parseEventFilters(c *gin.Context) repositories.EventFilters {
	page := 1
	size := 20

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}

	filters := repositories.EventFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if sourceStr := strings.TrimSpace(c.Query("source")); sourceStr != "" {
		source := models.EventSource(sourceStr)
		filters.Source = &source
	}

	if typeStr := strings.TrimSpace(c.Query("type")); typeStr != "" {
		filters.Type = &typeStr
	}

	return filters
}
