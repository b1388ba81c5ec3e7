package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

type CommentPostgreSQL struct {
	db *gorm.DB
}

func NewCommentPostgreSQL(db *gorm.DB) repositories.CommentRepository {
	return &CommentPostgreSQL{db: db}
}

func (c *CommentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CommentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (c *CommentPostgreSQL) GetByPost(ctx context.Context, tx *gorm.DB, postID string) ([]*models.Comment, error) {
	db := c.getDB(tx)

	var comments []*models.Comment
	err := db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

func (c *CommentPostgreSQL) CountByPost(ctx context.Context, tx *gorm.DB, postID string) (int64, error) {
	db := c.getDB(tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}
