package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

type FeedHandler struct {
	BaseHandler
	feedService services.FeedService
	validator   *validator.Validator
}

func NewFeedHandler(
	feedService services.FeedService,
	validator *validator.Validator,
	logger utils.Logger,
) *FeedHandler {
	return &FeedHandler{
		BaseHandler: NewBaseHandler(logger),
		feedService: feedService,
		validator:   validator,
	}
}

// ListPosts returns the feed snapshot
// @Summary List posts
// @Description Returns posts newest first. Serves the session snapshot or seed content when the backend is unreachable.
// @Tags feed
// @Accept json
// @Produce json
// @Success 200 {object} services.FeedResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /feed/posts [get]
func (h *FeedHandler) ListPosts(c *gin.Context) {
	if _, ok := h.requireUserID(c); !ok {
		return
	}

	feed, err := h.feedService.FetchPosts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

// CreatePost publishes a post to the feed
// @Summary Create post
// @Description Publishes a post. When the backend is unreachable the post is queued locally and replayed later.
// @Tags feed
// @Accept json
// @Produce json
// @Param post body services.CreatePostRequest true "Post content"
// @Success 201 {object} services.PostResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /feed/posts [post]
func (h *FeedHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostRequest
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

	h.LogRequest(c, "Creating post", "user_id", userID)

	post, err := h.feedService.CreatePost(c.Request.Context(), userID, h.authorInfo(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// CastVote records a vote on a post
// @Summary Cast vote
// @Description Applies an UP or DOWN vote. A user holds at most one vote per post; re-voting is rejected.
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param vote body services.CastVoteRequest true "Vote"
// @Success 200 {object} services.PostResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Failure 409 {object} ErrorResponse "Already voted"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /feed/posts/{id}/votes [post]
func (h *FeedHandler) CastVote(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Post ID is required",
		})
		return
	}

	var req services.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	voteType := models.VoteType(strings.ToUpper(req.Type))

	h.LogRequest(c, "Casting vote", "user_id", userID, "post_id", postID, "type", voteType)

	post, err := h.feedService.CastVote(c.Request.Context(), userID, postID, voteType)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// ToggleComments opens or closes a post's comment panel
// @Summary Toggle comments
// @Description Opens the comment panel (fetching fresh comments) or closes it if already open
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} services.CommentPanel
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /feed/posts/{id}/comments/toggle [post]
func (h *FeedHandler) ToggleComments(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Post ID is required",
		})
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	panel, err := h.feedService.ToggleComments(c.Request.Context(), postID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, panel)
}

// CreateComment adds a comment to a post
// @Summary Create comment
// @Description Adds a comment. Comments on locally-queued posts are queued and replayed with them.
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param comment body services.CreateCommentRequest true "Comment content"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Post not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /feed/posts/{id}/comments [post]
func (h *FeedHandler) CreateComment(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Post ID is required",
		})
		return
	}

	var req services.CreateCommentRequest
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

	comment, err := h.feedService.CreateComment(c.Request.Context(), userID, h.authorInfo(c), postID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetFeedStats returns aggregate feed counters
// @Summary Get feed stats
// @Tags feed
// @Accept json
// @Produce json
// @Success 200 {object} repositories.FeedStats
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /feed/stats [get]
func (h *FeedHandler) GetFeedStats(c *gin.Context) {
	if _, ok := h.requireUserID(c); !ok {
		return
	}

	stats, err := h.feedService.GetStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// authorInfo builds the denormalized author fields from the authenticated user.
func (h *FeedHandler) authorInfo(c *gin.Context) services.AuthorInfo {
	user, err := GetUserFromContext(c)
	if err != nil {
		return services.AuthorInfo{Name: "Unknown", Role: models.RoleStudent}
	}
	return services.AuthorInfo{
		Name:     user.Name,
		Role:     user.Role,
		Avatar:   user.Avatar,
		Verified: user.Role == models.RoleAdmin || user.Role == models.RoleSchool,
	}
}
