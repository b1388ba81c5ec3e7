package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/cache"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

type PostPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPostPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.PostRepository {
	return &PostPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (p *PostPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PostPostgreSQL) Create(ctx context.Context, tx *gorm.DB, post *models.Post) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, p.cacheManager.Feed, "posts:*")
	return nil
}

func (p *PostPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Post, error) {
	db := p.getDB(tx)

	var post models.Post
	err := db.WithContext(ctx).
		Preload("Votes").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// List returns posts newest first with embedded vote records.
func (p *PostPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PostFilters) ([]*models.Post, int64, error) {
	db := p.getDB(tx)

	query := db.WithContext(ctx).Model(&models.Post{})
	query = p.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	order := "created_at DESC"
	if filters.SortOrder == "asc" {
		order = "created_at ASC"
	}
	query = query.Preload("Votes").Order(order)

	if filters.Limit > 0 {
		query = query.Offset(filters.Offset).Limit(filters.Limit)
	}

	var posts []*models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, total, nil
}

func (p *PostPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, p.cacheManager.Feed, "posts:*")
	return nil
}

func (p *PostPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.FeedStats, error) {
	db := p.getDB(tx)

	var stats repositories.FeedStats
	if err := db.WithContext(ctx).Model(&models.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Comment{}).Count(&stats.TotalComments).Error; err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	return &stats, nil
}

func (p *PostPostgreSQL) applyFilters(query *gorm.DB, filters repositories.PostFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Flair != nil {
		query = query.Where("flair = ?", *filters.Flair)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
