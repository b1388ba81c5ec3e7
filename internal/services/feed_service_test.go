package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmartEdu-Labs/network-service/internal/events"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

func newFeedFixture(t *testing.T) (*feedService, *stubRepository, *events.MockEventPublisher) {
	t.Helper()

	repo := newStubRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewFeedService(repo, nil, publisher, nil, validator.New(), testLogger()).(*feedService)
	return svc, repo, publisher
}

func seedAuthor() AuthorInfo {
	return AuthorInfo{Name: "Asha", Role: models.RoleStudent, Avatar: "https://example.com/a.png"}
}

func TestFeedService_FetchPosts(t *testing.T) {
	ctx := context.Background()

	t.Run("newest first from store", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)

		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "first"}))
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p2", Content: "second"}))

		resp, err := svc.FetchPosts(ctx)
		require.NoError(t, err)
		assert.False(t, resp.Fallback)
		require.Len(t, resp.Posts, 2)
		assert.Equal(t, "p2", resp.Posts[0].ID)
	})

	t.Run("seed fallback when store is down and no snapshot", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		repo.setOffline(true)

		resp, err := svc.FetchPosts(ctx)
		require.NoError(t, err)
		assert.True(t, resp.Fallback)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "T-Hub Admin", resp.Posts[0].AuthorName)
		assert.True(t, resp.Posts[0].Verified)
	})

	t.Run("session snapshot survives an outage", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "kept"}))

		_, err := svc.FetchPosts(ctx)
		require.NoError(t, err)

		repo.setOffline(true)
		resp, err := svc.FetchPosts(ctx)
		require.NoError(t, err)
		assert.True(t, resp.Fallback)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "p1", resp.Posts[0].ID)
	})
}

func TestFeedService_CastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("optimistic tally and remote confirm", func(t *testing.T) {
		svc, repo, publisher := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "vote me"}))

		resp, err := svc.CastVote(ctx, "u1", "p1", models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Tally)

		// Confirmed: nothing left pending
		svc.mu.Lock()
		pending := len(svc.pendingVotes)
		svc.mu.Unlock()
		assert.Zero(t, pending)

		evts := publisher.GetPublishedEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, events.EventVoteCast, evts[0].Type)
	})

	t.Run("second vote by same user is rejected", func(t *testing.T) {
		svc, repo, publisher := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "vote me"}))

		_, err := svc.CastVote(ctx, "u1", "p1", models.VoteUp)
		require.NoError(t, err)
		publisher.ClearEvents()

		_, err = svc.CastVote(ctx, "u1", "p1", models.VoteDown)
		assert.ErrorIs(t, err, ErrAlreadyVoted)

		// Tally unchanged, no remote traffic
		resp, err := svc.FetchPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Posts[0].Tally)
		assert.Empty(t, publisher.GetPublishedEvents())
	})

	t.Run("remote failure rolls the optimistic vote back", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "vote me"}))

		_, err := svc.FetchPosts(ctx)
		require.NoError(t, err)

		repo.setOffline(true)
		_, err = svc.CastVote(ctx, "u1", "p1", models.VoteUp)
		require.Error(t, err)

		repo.setOffline(false)
		resp, err := svc.FetchPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Posts[0].Tally)

		// Rolled back completely: the user may vote again
		_, err = svc.CastVote(ctx, "u1", "p1", models.VoteUp)
		assert.NoError(t, err)
	})

	t.Run("concurrent votes by one user count once", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "contested"}))

		_, err := svc.FetchPosts(ctx)
		require.NoError(t, err)

		const attempts = 32
		var accepted int64
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.CastVote(ctx, "u1", "p1", models.VoteUp); err == nil {
					atomic.AddInt64(&accepted, 1)
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, accepted)

		resp, err := svc.FetchPosts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Posts[0].Tally)
	})

	t.Run("invalid vote type", func(t *testing.T) {
		svc, _, _ := newFeedFixture(t)
		_, err := svc.CastVote(ctx, "u1", "p1", models.VoteType("SIDEWAYS"))
		assert.ErrorIs(t, err, ErrInvalidVote)
	})

	t.Run("pending vote is re-applied over refetched state", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "offline vote"}))

		_, err := svc.FetchPosts(ctx)
		require.NoError(t, err)

		// A vote on a session-local post stays pending with no remote call
		post := &models.Post{ID: "local-p9", Content: "session only"}
		svc.mu.Lock()
		svc.posts = append([]*models.Post{post}, svc.posts...)
		svc.outbox = append(svc.outbox, outboxEntry{post: post})
		svc.mu.Unlock()

		resp, err := svc.CastVote(ctx, "u1", "local-p9", models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Tally)

		// Store refetch keeps the overlay while the post is unconfirmed
		repo.setOffline(true) // keep the outbox from replaying
		fetched := svc.fallbackResponse()
		for _, p := range fetched.Posts {
			if p.ID == "local-p9" {
				assert.Equal(t, 1, p.Tally)
			}
		}
	})
}

func TestFeedService_OfflinePostCreation(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newFeedFixture(t)
	repo.setOffline(true)

	resp, err := svc.CreatePost(ctx, "u1", seedAuthor(), CreatePostRequest{Content: "written offline"})
	require.NoError(t, err)
	assert.True(t, resp.Local)
	assert.True(t, strings.HasPrefix(resp.ID, localIDPrefix))

	// Visible for the session
	feed, err := svc.FetchPosts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, feed.Posts)
	assert.Equal(t, resp.ID, feed.Posts[0].ID)

	// Connectivity returns: outbox replays with a server id
	repo.setOffline(false)
	feed, err = svc.FetchPosts(ctx)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.False(t, strings.HasPrefix(feed.Posts[0].ID, localIDPrefix))
	assert.Equal(t, "written offline", feed.Posts[0].Content)

	svc.mu.Lock()
	assert.Empty(t, svc.outbox)
	svc.mu.Unlock()
}

func TestFeedService_Comments(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle opens with fetched comments and closes", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "discuss"}))
		require.NoError(t, repo.Comment().Create(ctx, nil, &models.Comment{ID: "c1", PostID: "p1", Content: "first"}))

		panel, err := svc.ToggleComments(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, panel.Open)
		require.Len(t, panel.Comments, 1)

		panel, err = svc.ToggleComments(ctx, "p1")
		require.NoError(t, err)
		assert.False(t, panel.Open)
		assert.Empty(t, panel.Comments)
	})

	t.Run("reopen refetches fresh comments", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "discuss"}))

		panel, err := svc.ToggleComments(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, panel.Comments)

		_, err = svc.ToggleComments(ctx, "p1") // close
		require.NoError(t, err)

		require.NoError(t, repo.Comment().Create(ctx, nil, &models.Comment{ID: "c1", PostID: "p1", Content: "late arrival"}))
		panel, err = svc.ToggleComments(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, panel.Comments, 1)
	})

	t.Run("offline comment goes to outbox and replays", func(t *testing.T) {
		svc, repo, _ := newFeedFixture(t)
		require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "discuss"}))
		_, err := svc.FetchPosts(ctx)
		require.NoError(t, err)

		repo.setOffline(true)
		comment, err := svc.CreateComment(ctx, "u1", seedAuthor(), "p1", CreateCommentRequest{Content: "offline reply"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(comment.ID, localIDPrefix))

		repo.setOffline(false)
		_, err = svc.FetchPosts(ctx) // triggers replay
		require.NoError(t, err)

		stored, err := repo.Comment().GetByPost(ctx, nil, "p1")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "offline reply", stored[0].Content)
	})
}

func TestFeedService_Reconcile(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newFeedFixture(t)
	require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "watch me"}))

	_, err := svc.FetchPosts(ctx)
	require.NoError(t, err)
	_, err = svc.ToggleComments(ctx, "p1")
	require.NoError(t, err)

	// Another writer adds state; a change notification arrives
	require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p2", Content: "new arrival"}))
	require.NoError(t, repo.Comment().Create(ctx, nil, &models.Comment{ID: "c1", PostID: "p1", Content: "fresh"}))

	svc.reconcile(ctx)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Len(t, svc.posts, 2)
	require.Contains(t, svc.openPanels, "p1")
	assert.Len(t, svc.openPanels["p1"], 1)
}

func TestFeedService_GetStats(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newFeedFixture(t)
	require.NoError(t, repo.Post().Create(ctx, nil, &models.Post{ID: "p1", Content: "count me"}))

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalPosts)
}
