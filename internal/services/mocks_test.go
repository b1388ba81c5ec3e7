package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

// ===== USER REPOSITORY MOCK =====

type metadataWrite struct {
	userID string
	fields map[string]any
}

type mockUserRepository struct {
	mu       sync.Mutex
	users    map[string]*models.User
	metadata map[string]map[string]any
	writes   []metadataWrite
	failNext bool
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:    make(map[string]*models.User),
		metadata: make(map[string]map[string]any),
	}
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, err := m.GetByID(ctx, id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		return nil, 0, errors.New("directory unavailable")
	}
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return m.List(ctx, filters)
}

func (m *mockUserRepository) GetMetadata(ctx context.Context, id string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		return nil, errors.New("metadata unavailable")
	}
	meta, ok := m.metadata[id]
	if !ok {
		return map[string]any{}, nil
	}
	return meta, nil
}

func (m *mockUserRepository) UpdateMetadata(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		return errors.New("metadata write failed")
	}
	if m.metadata[id] == nil {
		m.metadata[id] = make(map[string]any)
	}
	for k, v := range fields {
		m.metadata[id][k] = v
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	m.writes = append(m.writes, metadataWrite{userID: id, fields: copied})
	return nil
}

func (m *mockUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *mockUserRepository) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.Role == role, nil
}

func (m *mockUserRepository) metadataWrites() []metadataWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]metadataWrite, len(m.writes))
	copy(out, m.writes)
	return out
}

// ===== FEED REPOSITORY STUB =====

// stubRepository is an in-memory Repository with a switch that makes
// every store call fail, for exercising the offline paths.
type stubRepository struct {
	mu       sync.Mutex
	posts    []*models.Post
	comments map[string][]*models.Comment
	offline  bool
	users    *mockUserRepository
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		comments: make(map[string][]*models.Comment),
		users:    newMockUserRepository(),
	}
}

func (r *stubRepository) setOffline(offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = offline
}

func (r *stubRepository) Post() repositories.PostRepository       { return (*stubPostRepo)(r) }
func (r *stubRepository) Comment() repositories.CommentRepository { return (*stubCommentRepo)(r) }
func (r *stubRepository) Vote() repositories.VoteRepository       { return (*stubVoteRepo)(r) }
func (r *stubRepository) Event() repositories.EventRepository     { return (*stubEventRepo)(r) }
func (r *stubRepository) User() repositories.UserRepository       { return r.users }

func (r *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *stubRepository) Ping(ctx context.Context) error {
	if r.offline {
		return errors.New("store offline")
	}
	return nil
}

func (r *stubRepository) Close() error { return nil }

type stubPostRepo stubRepository

func (r *stubPostRepo) Create(ctx context.Context, db *gorm.DB, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return errors.New("store offline")
	}
	clone := *post
	r.posts = append([]*models.Post{&clone}, r.posts...)
	return nil
}

func (r *stubPostRepo) GetByID(ctx context.Context, db *gorm.DB, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return nil, errors.New("store offline")
	}
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPostRepo) List(ctx context.Context, db *gorm.DB, filters repositories.PostFilters) ([]*models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return nil, 0, errors.New("store offline")
	}
	out := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		clone := *p
		clone.Votes = append([]models.Vote(nil), p.Votes...)
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubPostRepo) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return nil
}

func (r *stubPostRepo) GetStats(ctx context.Context, db *gorm.DB) (*repositories.FeedStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return nil, errors.New("store offline")
	}
	stats := &repositories.FeedStats{TotalPosts: int64(len(r.posts))}
	for _, p := range r.posts {
		stats.TotalVotes += int64(len(p.Votes))
	}
	for _, cs := range r.comments {
		stats.TotalComments += int64(len(cs))
	}
	return stats, nil
}

type stubCommentRepo stubRepository

func (r *stubCommentRepo) Create(ctx context.Context, db *gorm.DB, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return errors.New("store offline")
	}
	clone := *comment
	r.comments[comment.PostID] = append(r.comments[comment.PostID], &clone)
	return nil
}

func (r *stubCommentRepo) GetByPost(ctx context.Context, db *gorm.DB, postID string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return nil, errors.New("store offline")
	}
	return append([]*models.Comment(nil), r.comments[postID]...), nil
}

func (r *stubCommentRepo) CountByPost(ctx context.Context, db *gorm.DB, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.comments[postID])), nil
}

type stubVoteRepo stubRepository

func (r *stubVoteRepo) Upsert(ctx context.Context, db *gorm.DB, vote *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return errors.New("store offline")
	}
	for _, p := range r.posts {
		if p.ID != vote.PostID {
			continue
		}
		for i, v := range p.Votes {
			if v.UserID == vote.UserID {
				p.Votes[i].Type = vote.Type
				return nil
			}
		}
		p.Votes = append(p.Votes, *vote)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *stubVoteRepo) GetByPost(ctx context.Context, db *gorm.DB, postID string) ([]*models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == postID {
			out := make([]*models.Vote, 0, len(p.Votes))
			for i := range p.Votes {
				out = append(out, &p.Votes[i])
			}
			return out, nil
		}
	}
	return nil, nil
}

func (r *stubVoteRepo) GetByPostAndUser(ctx context.Context, db *gorm.DB, postID, userID string) (*models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID != postID {
			continue
		}
		for i := range p.Votes {
			if p.Votes[i].UserID == userID {
				return &p.Votes[i], nil
			}
		}
	}
	return nil, nil
}

type stubEventRepo stubRepository

func (r *stubEventRepo) Create(ctx context.Context, db *gorm.DB, event *models.Event) error {
	return nil
}

func (r *stubEventRepo) GetByID(ctx context.Context, db *gorm.DB, id string) (*models.Event, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubEventRepo) List(ctx context.Context, db *gorm.DB, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	return nil, 0, nil
}
