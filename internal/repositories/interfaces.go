package repositories

import (
	"time"

	"github.com/SmartEdu-Labs/network-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type PostFilters struct {
	UserID    *string    `json:"user_id"`
	Flair     *string    `json:"flair"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type EventFilters struct {
	Source   *models.EventSource `json:"source"`
	Type     *string             `json:"type"`
	DateFrom *time.Time          `json:"date_from"`
	DateTo   *time.Time          `json:"date_to"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

// UserFilters defines filters for directory queries
type UserFilters struct {
	Query  string // Search query for name or email
	Role   *models.UserRole
	Limit  int // Page size
	Offset int // Offset for pagination
}

// ===== SHARED STATISTICS STRUCTS =====

type FeedStats struct {
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	TotalVotes    int64 `json:"total_votes"`
}
