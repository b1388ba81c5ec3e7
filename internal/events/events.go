package events

import (
	"time"
)

// Topics
const (
	// TopicPostsChanged carries change notifications for the posts record
	// set. The feed synchronizer refetches on every message.
	TopicPostsChanged = "network.posts.changed"
)

// Event types
const (
	EventPostCreated    = "feed.post_created"
	EventCommentCreated = "feed.comment_created"
	EventVoteCast       = "feed.vote_cast"
)

// Event is the envelope published to the change-notification channel.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// PostChangedEvent describes a change to a post row.
type PostChangedEvent struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id,omitempty"`
}
