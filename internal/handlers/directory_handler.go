package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
)

type DirectoryHandler struct {
	BaseHandler
	directoryService services.DirectoryService
	userRepo         repositories.UserRepository
}

func NewDirectoryHandler(
	directoryService services.DirectoryService,
	userRepo repositories.UserRepository,
	logger utils.Logger,
) *DirectoryHandler {
	return &DirectoryHandler{
		BaseHandler:      NewBaseHandler(logger),
		directoryService: directoryService,
		userRepo:         userRepo,
	}
}

// ListStudents lists directory students with optional filtering
// @Summary List students
// @Description Get a paginated student directory, with seeded fallback data when the identity backend is unreachable
// @Tags directory
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Success 200 {object} services.DirectoryResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /directory/students [get]
func (h *DirectoryHandler) ListStudents(c *gin.Context) {
	h.LogRequest(c, "Listing students")

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	filters := h.parseUserFilters(c)

	directory, err := h.directoryService.ListStudents(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, directory)
}

// SearchStudents searches the directory
// @Summary Search students
// @Description Search directory members by name or email
// @Tags directory
// @Accept json
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} map[string]interface{} "Search results"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /directory/students/search [get]
func (h *DirectoryHandler) SearchStudents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	h.LogRequest(c, "Searching students", "query", query)

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	filters := h.parseUserFilters(c)

	users, total, err := h.userRepo.Search(c.Request.Context(), query, filters)
	if err != nil {
		h.LogError(c, err, "Failed to search students")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to search students",
			Details: err.Error(),
		})
		return
	}

	page := (filters.Offset / max(filters.Limit, 1)) + 1

	response := map[string]interface{}{
		"students": users,
		"total":    total,
		"page":     page,
		"size":     filters.Limit,
	}

	c.JSON(http.StatusOK, response)
}

// GetStudent retrieves a directory member by ID
// @Summary Get student by ID
// @Tags directory
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /directory/students/{id} [get]
func (h *DirectoryHandler) GetStudent(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting student", "student_id", userID)

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.LogError(c, err, "Failed to get student")
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student not found",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// RecommendMentor suggests a mentor for the caller
// @Summary Recommend mentor
// @Description Matches the caller's interests against the mentor pool via the AI boundary
// @Tags directory
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Recommendation"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /directory/mentor-recommendation [get]
func (h *DirectoryHandler) RecommendMentor(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Recommending mentor", "user_id", userID)

	recommendation, err := h.directoryService.RecommendMentor(c.Request.Context(), userID)
	if err != nil {
		h.LogError(c, err, "Mentor recommendation failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Mentor recommendation unavailable",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"recommendation": recommendation,
	})
}

// ExportStudents downloads the student directory as a spreadsheet
// @Summary Export students
// @Description Exports the directory as an Excel workbook. Admin only.
// @Tags directory
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Excel workbook"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /directory/students/export [get]
func (h *DirectoryHandler) ExportStudents(c *gin.Context) {
	if _, ok := h.requireUserID(c); !ok {
		return
	}

	h.LogRequest(c, "Exporting student directory")

	file, err := h.directoryService.ExportStudents(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to export students")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to export students",
			Details: err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("students-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream export")
	}
}

// ===== HELPER METHODS =====

func (h *DirectoryHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	// Parse pagination using page and size
	page := 1
	size := 10

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

	filters := repositories.UserFilters{
		Limit:  size,
		Offset: (page - 1) * size,
		Query:  c.Query("q"),
	}

	if roleStr := strings.TrimSpace(c.Query("role")); roleStr != "" {
		role := models.UserRole(strings.ToUpper(roleStr))
		filters.Role = &role
	}

	return filters
}
