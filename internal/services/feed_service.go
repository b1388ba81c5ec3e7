package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/events"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

// localIDPrefix marks records created while the backend was unreachable.
// They live only in the session snapshot until the outbox replays them.
const localIDPrefix = "local-"

// seedAuthor and seedPost back the feed when the relational store is down
// and no snapshot exists yet.
var seedPost = models.Post{
	ID:         "seed-welcome",
	AuthorName: "T-Hub Admin",
	AuthorRole: string(models.RoleAdmin),
	Content:    "Welcome to the SmartEdu Ecosystem! Connect with founders, mentors and fellow students. Share your wins, ask questions, and grow together.",
	Flair:      "Announcement",
	Verified:   true,
}

// pendingVote is an optimistic mutation awaiting remote confirmation. It
// is re-applied over every refetched snapshot until the server copy
// already carries it.
type pendingVote struct {
	seq    uint64
	postID string
	userID string
	vote   models.VoteType
}

type outboxEntry struct {
	post    *models.Post
	comment *models.Comment
}

// feedService keeps a session snapshot of the post list with optimistic
// overlays, lazy per-post comment panels, and an outbox for writes made
// while the backend was unreachable.
type feedService struct {
	repo       repositories.Repository
	db         *gorm.DB
	publisher  events.EventPublisher
	subscriber message.Subscriber
	validator  *validator.Validator
	logger     *slog.Logger

	mu           sync.Mutex
	posts        []*models.Post
	haveSnapshot bool
	openPanels   map[string][]*models.Comment
	pendingVotes []pendingVote
	outbox       []outboxEntry
	nextSeq      uint64
}

func NewFeedService(repo repositories.Repository, db *gorm.DB, publisher events.EventPublisher, subscriber message.Subscriber, v *validator.Validator, logger *slog.Logger) FeedService {
	return &feedService{
		repo:       repo,
		db:         db,
		publisher:  publisher,
		subscriber: subscriber,
		validator:  v,
		logger:     logger,
		openPanels: make(map[string][]*models.Comment),
	}
}

// ===== POSTS =====

func (s *feedService) FetchPosts(ctx context.Context) (*FeedResponse, error) {
	// Reaching the store means connectivity is back: drain the outbox first
	// so replayed writes show up in this fetch.
	s.replayOutbox(ctx)

	fetched, _, err := s.repo.Post().List(ctx, s.db, repositories.PostFilters{
		SortBy:    "created_at",
		SortOrder: "desc",
		Limit:     100,
	})
	if err != nil {
		s.logger.Warn("post fetch failed, serving session snapshot", "error", err)
		return s.fallbackResponse(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = s.overlayLocked(fetched)
	s.haveSnapshot = true

	return &FeedResponse{Posts: s.responsesLocked(), Fallback: false}, nil
}

// fallbackResponse serves the last snapshot, or the seed post when the
// session has never seen the backend.
func (s *feedService) fallbackResponse() *FeedResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.haveSnapshot {
		seed := seedPost
		s.posts = []*models.Post{&seed}
		s.haveSnapshot = true
	}
	return &FeedResponse{Posts: s.responsesLocked(), Fallback: true}
}

// overlayLocked re-applies session-local state over a freshly fetched
// post list: unconfirmed optimistic votes and not-yet-replayed local posts.
func (s *feedService) overlayLocked(fetched []*models.Post) []*models.Post {
	// Drop pending votes the server already knows about
	remaining := s.pendingVotes[:0]
	for _, pv := range s.pendingVotes {
		confirmed := false
		for _, p := range fetched {
			if p.ID == pv.postID {
				if _, voted := p.VoteBy(pv.userID); voted {
					confirmed = true
				}
				break
			}
		}
		if !confirmed {
			remaining = append(remaining, pv)
		}
	}
	s.pendingVotes = remaining

	for _, pv := range s.pendingVotes {
		for _, p := range fetched {
			if p.ID == pv.postID {
				p.Votes = append(p.Votes, models.Vote{PostID: pv.postID, UserID: pv.userID, Type: pv.vote})
				break
			}
		}
	}

	// Local posts stay at the top until the outbox replays them
	locals := make([]*models.Post, 0)
	for _, entry := range s.outbox {
		if entry.post != nil {
			locals = append(locals, entry.post)
		}
	}
	return append(locals, fetched...)
}

func (s *feedService) responsesLocked() []*PostResponse {
	out := make([]*PostResponse, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, &PostResponse{
			Post:  p,
			Tally: p.Tally(),
			Local: strings.HasPrefix(p.ID, localIDPrefix),
		})
	}
	return out
}

func (s *feedService) CreatePost(ctx context.Context, userID string, author AuthorInfo, req CreatePostRequest) (*PostResponse, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	post := &models.Post{
		ID:         uuid.NewString(),
		UserID:     userID,
		AuthorName: author.Name,
		AuthorRole: string(author.Role),
		AvatarURL:  author.Avatar,
		Content:    req.Content,
		Flair:      req.Flair,
		ImageURL:   req.ImageURL,
		Verified:   author.Verified,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Post().Create(ctx, s.db, post); err != nil {
		// Offline path: keep the post for this session under a local id
		// and queue it for replay.
		s.logger.Warn("post create failed, queueing in outbox", "error", err)
		post.ID = localIDPrefix + post.ID

		s.mu.Lock()
		s.outbox = append(s.outbox, outboxEntry{post: post})
		s.posts = append([]*models.Post{post}, s.posts...)
		s.haveSnapshot = true
		s.mu.Unlock()

		return &PostResponse{Post: post, Tally: 0, Local: true}, nil
	}

	s.mu.Lock()
	s.posts = append([]*models.Post{post}, s.posts...)
	s.haveSnapshot = true
	s.mu.Unlock()

	s.publishChange(ctx, events.EventPostCreated, post.ID, userID)
	return &PostResponse{Post: post, Tally: 0}, nil
}

// ===== VOTES =====

func (s *feedService) CastVote(ctx context.Context, userID, postID string, voteType models.VoteType) (*PostResponse, error) {
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return nil, ErrInvalidVote
	}

	post, err := s.sessionPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	// At most one vote per (post, user): a second vote never changes the
	// tally and never reaches the store. The check and the optimistic
	// apply sit in one critical section so two concurrent votes by the
	// same user cannot both pass the check.
	s.mu.Lock()
	if _, voted := post.VoteBy(userID); voted {
		s.mu.Unlock()
		return nil, ErrAlreadyVoted
	}
	s.nextSeq++
	pv := pendingVote{seq: s.nextSeq, postID: postID, userID: userID, vote: voteType}
	s.pendingVotes = append(s.pendingVotes, pv)
	post.Votes = append(post.Votes, models.Vote{PostID: postID, UserID: userID, Type: voteType})
	tally := post.Tally()
	s.mu.Unlock()

	// Session-only posts have no server row to vote on
	if strings.HasPrefix(postID, localIDPrefix) {
		return &PostResponse{Post: post, Tally: tally, Local: true}, nil
	}

	vote := &models.Vote{PostID: postID, UserID: userID, Type: voteType}
	if err := s.repo.Vote().Upsert(ctx, s.db, vote); err != nil {
		s.rollbackVote(pv)
		return nil, fmt.Errorf("failed to persist vote: %w", err)
	}

	s.confirmVote(pv.seq)
	s.publishChange(ctx, events.EventVoteCast, postID, userID)

	s.mu.Lock()
	tally = post.Tally()
	s.mu.Unlock()

	return &PostResponse{Post: post, Tally: tally}, nil
}

// sessionPost resolves a post from the snapshot, fetching the feed first
// when the session has none.
func (s *feedService) sessionPost(ctx context.Context, postID string) (*models.Post, error) {
	s.mu.Lock()
	if !s.haveSnapshot {
		s.mu.Unlock()
		if _, err := s.FetchPosts(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.ID == postID {
			return p, nil
		}
	}
	return nil, ErrPostNotFound
}

func (s *feedService) rollbackVote(pv pendingVote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cand := range s.pendingVotes {
		if cand.seq == pv.seq {
			s.pendingVotes = append(s.pendingVotes[:i], s.pendingVotes[i+1:]...)
			break
		}
	}
	for _, p := range s.posts {
		if p.ID != pv.postID {
			continue
		}
		for i, v := range p.Votes {
			if v.UserID == pv.userID && v.Type == pv.vote {
				p.Votes = append(p.Votes[:i], p.Votes[i+1:]...)
				break
			}
		}
		break
	}
}

func (s *feedService) confirmVote(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cand := range s.pendingVotes {
		if cand.seq == seq {
			s.pendingVotes = append(s.pendingVotes[:i], s.pendingVotes[i+1:]...)
			return
		}
	}
}

// ===== COMMENTS =====

func (s *feedService) ToggleComments(ctx context.Context, postID string) (*CommentPanel, error) {
	s.mu.Lock()
	_, open := s.openPanels[postID]
	if open {
		delete(s.openPanels, postID)
		s.mu.Unlock()
		return &CommentPanel{PostID: postID, Open: false}, nil
	}
	s.mu.Unlock()

	// Opening always refetches; cached panel contents are never trusted
	comments, err := s.fetchPanel(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.openPanels[postID] = comments
	s.mu.Unlock()

	return &CommentPanel{PostID: postID, Open: true, Comments: comments}, nil
}

// fetchPanel loads a post's comments and appends any session-local ones
// still waiting in the outbox.
func (s *feedService) fetchPanel(ctx context.Context, postID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	if !strings.HasPrefix(postID, localIDPrefix) {
		fetched, err := s.repo.Comment().GetByPost(ctx, s.db, postID)
		if err != nil {
			s.logger.Warn("comment fetch failed, serving session comments", "post_id", postID, "error", err)
		} else {
			comments = fetched
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.outbox {
		if entry.comment != nil && entry.comment.PostID == postID {
			comments = append(comments, entry.comment)
		}
	}
	return comments, nil
}

func (s *feedService) CreateComment(ctx context.Context, userID string, author AuthorInfo, postID string, req CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	comment := &models.Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		UserID:     userID,
		AuthorName: author.Name,
		AvatarURL:  author.Avatar,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}

	persisted := true
	if strings.HasPrefix(postID, localIDPrefix) {
		persisted = false
	} else if err := s.repo.Comment().Create(ctx, s.db, comment); err != nil {
		s.logger.Warn("comment create failed, queueing in outbox", "post_id", postID, "error", err)
		persisted = false
	}

	if !persisted {
		comment.ID = localIDPrefix + comment.ID
		s.mu.Lock()
		s.outbox = append(s.outbox, outboxEntry{comment: comment})
		s.mu.Unlock()
	}

	s.mu.Lock()
	if panel, open := s.openPanels[postID]; open {
		s.openPanels[postID] = append(panel, comment)
	}
	s.mu.Unlock()

	if persisted {
		s.publishChange(ctx, events.EventCommentCreated, postID, userID)
	}
	return comment, nil
}

// ===== OUTBOX REPLAY =====

// replayOutbox retries every queued offline write. Entries that persist
// are dropped; failures stay queued for the next attempt. Replayed records
// get fresh server ids, so local- ids never leak into the store.
func (s *feedService) replayOutbox(ctx context.Context) {
	s.mu.Lock()
	if len(s.outbox) == 0 {
		s.mu.Unlock()
		return
	}
	queued := s.outbox
	s.outbox = nil
	s.mu.Unlock()

	var failed []outboxEntry
	for _, entry := range queued {
		switch {
		case entry.post != nil:
			replay := *entry.post
			replay.ID = strings.TrimPrefix(replay.ID, localIDPrefix)
			if err := s.repo.Post().Create(ctx, s.db, &replay); err != nil {
				failed = append(failed, entry)
				continue
			}
			s.removeSessionPost(entry.post.ID)
			s.publishChange(ctx, events.EventPostCreated, replay.ID, replay.UserID)
		case entry.comment != nil:
			replay := *entry.comment
			replay.ID = strings.TrimPrefix(replay.ID, localIDPrefix)
			if strings.HasPrefix(replay.PostID, localIDPrefix) {
				// Parent post is still local; keep waiting
				failed = append(failed, entry)
				continue
			}
			if err := s.repo.Comment().Create(ctx, s.db, &replay); err != nil {
				failed = append(failed, entry)
				continue
			}
			s.publishChange(ctx, events.EventCommentCreated, replay.PostID, replay.UserID)
		}
	}

	if len(failed) > 0 {
		s.mu.Lock()
		s.outbox = append(failed, s.outbox...)
		s.mu.Unlock()
	}
}

func (s *feedService) removeSessionPost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return
		}
	}
}

// ===== STATS =====

func (s *feedService) GetStats(ctx context.Context) (*repositories.FeedStats, error) {
	stats, err := s.repo.Post().GetStats(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed stats: %w", err)
	}
	return stats, nil
}

// ===== REALTIME RECONCILIATION =====

// Run consumes the posts-changed topic until ctx is done. Every message,
// whatever its payload, triggers a full refetch of the post list and of
// each open comment panel.
func (s *feedService) Run(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn("no subscriber configured, realtime reconciliation disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	messages, err := s.subscriber.Subscribe(ctx, events.TopicPostsChanged)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.TopicPostsChanged, err)
	}

	s.logger.Info("feed synchronizer running", "topic", events.TopicPostsChanged)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.reconcile(ctx)
			msg.Ack()
		}
	}
}

// reconcile refreshes the snapshot and every open panel from the store.
func (s *feedService) reconcile(ctx context.Context) {
	if _, err := s.FetchPosts(ctx); err != nil {
		s.logger.Error("reconcile post refetch failed", "error", err)
	}

	s.mu.Lock()
	openIDs := make([]string, 0, len(s.openPanels))
	for id := range s.openPanels {
		openIDs = append(openIDs, id)
	}
	s.mu.Unlock()

	for _, postID := range openIDs {
		comments, err := s.fetchPanel(ctx, postID)
		if err != nil {
			s.logger.Error("reconcile panel refetch failed", "post_id", postID, "error", err)
			continue
		}
		s.mu.Lock()
		if _, stillOpen := s.openPanels[postID]; stillOpen {
			s.openPanels[postID] = comments
		}
		s.mu.Unlock()
	}
}

func (s *feedService) publishChange(ctx context.Context, eventType, postID, userID string) {
	if s.publisher == nil {
		return
	}

	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       events.PostChangedEvent{PostID: postID, UserID: userID},
	}
	if err := s.publisher.Publish(ctx, events.TopicPostsChanged, event); err != nil {
		s.logger.Error("failed to publish feed event", "type", eventType, "error", err)
	}
}
