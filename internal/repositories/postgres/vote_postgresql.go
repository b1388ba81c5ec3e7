package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

type VotePostgreSQL struct {
	db *gorm.DB
}

func NewVotePostgreSQL(db *gorm.DB) repositories.VoteRepository {
	return &VotePostgreSQL{db: db}
}

func (v *VotePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

// Upsert inserts the vote or, on the (post_id, user_id) conflict, replaces
// the existing row's type. This is what keeps a user at one vote per post.
func (v *VotePostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, vote *models.Vote) error {
	db := v.getDB(tx)

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type"}),
		}).
		Create(vote).Error
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (v *VotePostgreSQL) GetByPost(ctx context.Context, tx *gorm.DB, postID string) ([]*models.Vote, error) {
	db := v.getDB(tx)

	var votes []*models.Vote
	err := db.WithContext(ctx).
		Where("post_id = ?", postID).
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	return votes, nil
}

func (v *VotePostgreSQL) GetByPostAndUser(ctx context.Context, tx *gorm.DB, postID, userID string) (*models.Vote, error) {
	db := v.getDB(tx)

	var vote models.Vote
	err := db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}
