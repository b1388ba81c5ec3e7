package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
	validator      *validator.Validator
}

func NewProfileHandler(
	profileService services.ProfileService,
	validator *validator.Validator,
	logger utils.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
		validator:      validator,
	}
}

// GetProfile returns the caller's profile
// @Summary Get profile
// @Description Returns the authenticated user's profile blob
// @Tags profile
// @Accept json
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a sparse profile update
// @Summary Update profile
// @Description Updates name, avatar, tagline and/or bio. Omitted fields are untouched.
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body services.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
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

	h.LogRequest(c, "Updating profile", "user_id", userID)

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// AddXP awards experience points to the caller
// @Summary Add XP
// @Description Awards XP and reports any resulting level-up
// @Tags profile
// @Accept json
// @Produce json
// @Param xp body services.AddXPRequest true "XP award"
// @Success 200 {object} services.XPResult
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/xp [post]
func (h *ProfileHandler) AddXP(c *gin.Context) {
	var req services.AddXPRequest
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

	h.LogRequest(c, "Adding XP", "user_id", userID, "amount", req.Amount)

	result, err := h.profileService.AddXP(c.Request.Context(), userID, req.Amount, req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLastXPGain returns the transient last-gain amount
// @Summary Get last XP gain
// @Description Returns the XP amount gained within the recent display window, zero otherwise
// @Tags profile
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Last gain"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /profile/xp/last [get]
func (h *ProfileHandler) GetLastXPGain(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"gained": h.profileService.LastXPGain(userID),
	})
}

// UpdateInterests replaces the caller's interest list
// @Summary Update interests
// @Tags profile
// @Accept json
// @Produce json
// @Param interests body services.UpdateInterestsRequest true "Interest list"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/interests [put]
func (h *ProfileHandler) UpdateInterests(c *gin.Context) {
	var req services.UpdateInterestsRequest
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

	profile, err := h.profileService.UpdateInterests(c.Request.Context(), userID, req.Interests)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// EnrollCourse adds a course to the caller's enrolled list
// @Summary Enroll in course
// @Description Adds a course to the profile. Enrolling twice in the same course is a no-op.
// @Tags profile
// @Accept json
// @Produce json
// @Param course body services.EnrollCourseRequest true "Course"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/courses [post]
func (h *ProfileHandler) EnrollCourse(c *gin.Context) {
	var req services.EnrollCourseRequest
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

	h.LogRequest(c, "Enrolling in course", "user_id", userID, "course_id", req.ID)

	course := models.EnrolledCourse{
		ID:       req.ID,
		Title:    req.Title,
		Provider: req.Provider,
		Link:     req.Link,
		Domain:   req.Domain,
	}

	profile, err := h.profileService.EnrollCourse(c.Request.Context(), userID, course)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CompleteCourse marks an enrolled course as completed
// @Summary Complete course
// @Description Marks the course completed and awards completion XP
// @Tags profile
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/courses/{id}/complete [post]
func (h *ProfileHandler) CompleteCourse(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Course ID is required",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Completing course", "user_id", userID, "course_id", courseID)

	profile, err := h.profileService.CompleteCourse(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SearchCourses runs a grounded course discovery query
// @Summary Search courses
// @Description Finds online courses for a topic via the AI search boundary
// @Tags profile
// @Accept json
// @Produce json
// @Param topic query string true "Topic"
// @Success 200 {object} services.DiscoveryResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /profile/courses/search [get]
func (h *ProfileHandler) SearchCourses(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Query parameter 'topic' is required",
		})
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	resp, err := h.profileService.SearchCourses(c.Request.Context(), topic)
	if err != nil {
		h.LogError(c, err, "Course search failed", "topic", topic)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Course search unavailable",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateSocialProfiles replaces the caller's social profile links
// @Summary Update social profiles
// @Tags profile
// @Accept json
// @Produce json
// @Param profiles body services.UpdateSocialProfilesRequest true "Social profiles"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/social-profiles [put]
func (h *ProfileHandler) UpdateSocialProfiles(c *gin.Context) {
	var req services.UpdateSocialProfilesRequest
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

	profiles := make([]models.SocialProfile, 0, len(req.Profiles))
	for _, p := range req.Profiles {
		profiles = append(profiles, models.SocialProfile{
			Platform: p.Platform,
			URL:      p.URL,
			Icon:     p.Icon,
		})
	}

	profile, err := h.profileService.UpdateSocialProfiles(c.Request.Context(), userID, profiles)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateExperience replaces the caller's experience entries
// @Summary Update experience
// @Tags profile
// @Accept json
// @Produce json
// @Param experience body services.UpdateExperienceRequest true "Experience entries"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/experience [put]
func (h *ProfileHandler) UpdateExperience(c *gin.Context) {
	var req services.UpdateExperienceRequest
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

	entries := make([]models.Experience, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, models.Experience{
			ID:          e.ID,
			Company:     e.Company,
			Role:        e.Role,
			Duration:    e.Duration,
			Description: e.Description,
			Domain:      e.Domain,
		})
	}

	profile, err := h.profileService.UpdateExperience(c.Request.Context(), userID, entries)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

type suggestExperienceRequest struct {
	Role        string `json:"role" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Description string `json:"description"`
}

// SuggestExperienceDescription rewrites an experience description
// @Summary Suggest experience description
// @Description Returns an AI-polished resume bullet for a role and company
// @Tags profile
// @Accept json
// @Produce json
// @Param experience body suggestExperienceRequest true "Role context"
// @Success 200 {object} map[string]interface{} "Suggested description"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /profile/experience/suggest [post]
func (h *ProfileHandler) SuggestExperienceDescription(c *gin.Context) {
	var req suggestExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	suggestion, err := h.profileService.SuggestExperienceDescription(
		c.Request.Context(), req.Role, req.Company, req.Description)
	if err != nil {
		h.LogError(c, err, "Experience suggestion failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Suggestion service unavailable",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"description": suggestion,
	})
}

// AwardBadge grants a badge to the caller
// @Summary Award badge
// @Description Adds a badge to the profile. Awarding the same badge twice is a no-op.
// @Tags profile
// @Accept json
// @Produce json
// @Param badge body services.AwardBadgeRequest true "Badge"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/badges [post]
func (h *ProfileHandler) AwardBadge(c *gin.Context) {
	var req services.AwardBadgeRequest
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

	badge := models.Badge{
		ID:          req.ID,
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		Description: req.Description,
		Issuer:      req.Issuer,
	}

	profile, err := h.profileService.AwardBadge(c.Request.Context(), userID, badge)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdatePreferences applies a sparse preferences update
// @Summary Update preferences
// @Tags profile
// @Accept json
// @Produce json
// @Param preferences body services.UpdatePreferencesRequest true "Preference fields"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/preferences [put]
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	var req services.UpdatePreferencesRequest
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

	profile, err := h.profileService.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SendMentorshipRequest opens a mentorship request
// @Summary Send mentorship request
// @Description Opens a pending request to a mentor. One open request per mentor.
// @Tags profile
// @Accept json
// @Produce json
// @Param request body services.MentorshipRequestCreate true "Mentorship request"
// @Success 201 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Duplicate request"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/mentorship-requests [post]
func (h *ProfileHandler) SendMentorshipRequest(c *gin.Context) {
	var req services.MentorshipRequestCreate
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

	h.LogRequest(c, "Sending mentorship request", "user_id", userID, "mentor_id", req.MentorID)

	profile, err := h.profileService.SendMentorshipRequest(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// WithdrawMentorshipRequest withdraws a pending mentorship request
// @Summary Withdraw mentorship request
// @Tags profile
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /profile/mentorship-requests/{id} [delete]
func (h *ProfileHandler) WithdrawMentorshipRequest(c *gin.Context) {
	requestID := c.Param("id")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Request ID is required",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Withdrawing mentorship request", "user_id", userID, "request_id", requestID)

	profile, err := h.profileService.WithdrawMentorshipRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
