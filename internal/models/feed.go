package models

import (
	"time"

	"gorm.io/gorm"
)

type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// Post is a feed broadcast. Votes are embedded on fetch so the tally and
// per-user vote membership can be derived without a second round trip.
type Post struct {
	ID         string `json:"id" gorm:"primaryKey;size:64"`
	UserID     string `json:"user_id" gorm:"size:255;index"`
	AuthorName string `json:"author_name" gorm:"not null;size:100"`
	AuthorRole string `json:"author_role" gorm:"size:32"`
	AvatarURL  string `json:"avatar_url" gorm:"size:500"`
	Content    string `json:"content" gorm:"not null;type:text"`
	Flair      string `json:"flair" gorm:"size:64"`
	ImageURL   string `json:"image_url" gorm:"size:500"`
	Verified   bool   `json:"verified" gorm:"default:false"`

	Votes []Vote `json:"votes" gorm:"foreignKey:PostID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Post) TableName() string {
	return "posts"
}

type Comment struct {
	ID         string `json:"id" gorm:"primaryKey;size:64"`
	PostID     string `json:"post_id" gorm:"size:64;index;not null"`
	UserID     string `json:"user_id" gorm:"size:255"`
	AuthorName string `json:"author_name" gorm:"not null;size:100"`
	AvatarURL  string `json:"avatar_url" gorm:"size:500"`
	Content    string `json:"content" gorm:"not null;type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// Vote holds at most one row per (post, user); writes go through an
// upsert keyed on that pair so switching sentiment replaces the old row.
type Vote struct {
	PostID string   `json:"post_id" gorm:"size:64;uniqueIndex:idx_votes_post_user;not null"`
	UserID string   `json:"user_id" gorm:"size:255;uniqueIndex:idx_votes_post_user;not null"`
	Type   VoteType `json:"type" gorm:"size:8;not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// Tally returns the UP minus DOWN count across the embedded votes.
func (p *Post) Tally() int {
	tally := 0
	for _, v := range p.Votes {
		switch v.Type {
		case VoteUp:
			tally++
		case VoteDown:
			tally--
		}
	}
	return tally
}

// VoteBy returns the vote the given user holds on this post, if any.
func (p *Post) VoteBy(userID string) (VoteType, bool) {
	for _, v := range p.Votes {
		if v.UserID == userID {
			return v.Type, true
		}
	}
	return "", false
}
