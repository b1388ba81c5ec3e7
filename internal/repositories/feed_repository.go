package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/models"
)

// PostRepository covers the posts record set. Reads embed the vote list so
// tallies and per-user membership can be derived client-side.
type PostRepository interface {
	Create(ctx context.Context, db *gorm.DB, post *models.Post) error
	GetByID(ctx context.Context, db *gorm.DB, id string) (*models.Post, error)
	List(ctx context.Context, db *gorm.DB, filters PostFilters) ([]*models.Post, int64, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error

	GetStats(ctx context.Context, db *gorm.DB) (*FeedStats, error)
}

// CommentRepository covers post comments. Comments are append-only.
type CommentRepository interface {
	Create(ctx context.Context, db *gorm.DB, comment *models.Comment) error
	GetByPost(ctx context.Context, db *gorm.DB, postID string) ([]*models.Comment, error)
	CountByPost(ctx context.Context, db *gorm.DB, postID string) (int64, error)
}

// VoteRepository covers votes. Upsert enforces at most one vote per
// (post, user) pair.
type VoteRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, vote *models.Vote) error
	GetByPost(ctx context.Context, db *gorm.DB, postID string) ([]*models.Vote, error)
	GetByPostAndUser(ctx context.Context, db *gorm.DB, postID, userID string) (*models.Vote, error)
}

// EventRepository covers institutional events.
type EventRepository interface {
	Create(ctx context.Context, db *gorm.DB, event *models.Event) error
	GetByID(ctx context.Context, db *gorm.DB, id string) (*models.Event, error)
	List(ctx context.Context, db *gorm.DB, filters EventFilters) ([]*models.Event, int64, error)
}
