package services

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type AddXPRequest = validator.AddXPRequest
type EnrollCourseRequest = validator.EnrollCourseRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type UpdateInterestsRequest = validator.UpdateInterestsRequest
type UpdateSocialProfilesRequest = validator.UpdateSocialProfilesRequest
type UpdateExperienceRequest = validator.UpdateExperienceRequest
type AwardBadgeRequest = validator.AwardBadgeRequest
type UpdatePreferencesRequest = validator.UpdatePreferencesRequest
type MentorshipRequestCreate = validator.MentorshipRequestCreate
type CreatePostRequest = validator.CreatePostRequest
type CreateCommentRequest = validator.CreateCommentRequest
type CastVoteRequest = validator.CastVoteRequest
type AnalyzeVentureRequest = validator.AnalyzeVentureRequest

type XPResult struct {
	Profile   *models.UserProfile `json:"profile"`
	Gained    int                 `json:"gained"`
	LeveledUp bool                `json:"leveled_up"`
}

type PostResponse struct {
	*models.Post
	Tally    int              `json:"tally"`
	UserVote *models.VoteType `json:"user_vote,omitempty"`
	Local    bool             `json:"local"`
}

type FeedResponse struct {
	Posts    []*PostResponse `json:"posts"`
	Fallback bool            `json:"fallback"`
}

type CommentPanel struct {
	PostID   string            `json:"post_id"`
	Open     bool              `json:"open"`
	Comments []*models.Comment `json:"comments"`
}

type EventListResponse struct {
	Events []*models.Event `json:"events"`
	Total  int64           `json:"total"`
}

type DirectoryResponse struct {
	Students []*models.User `json:"students"`
	Total    int64          `json:"total"`
	Fallback bool           `json:"fallback"`
}

type DiscoveryResponse struct {
	Text  string                `json:"text"`
	Links []genai.GroundingLink `json:"links,omitempty"`
}

// ===== SERVICE INTERFACES =====

type SessionService interface {
	// Bootstrap establishes the profile for a signed-in user: hydrate from
	// the remote metadata bag, fall back to the local store, then defaults.
	Bootstrap(ctx context.Context, userID string) (*models.UserProfile, error)

	// SignOut flushes pending sync work and resets local state to defaults.
	SignOut(ctx context.Context, userID string) error
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	AddXP(ctx context.Context, userID string, amount int, reason string) (*XPResult, error)
	LastXPGain(userID string) int

	EnrollCourse(ctx context.Context, userID string, course models.EnrolledCourse) (*models.UserProfile, error)
	CompleteCourse(ctx context.Context, userID, courseID string) (*models.UserProfile, error)
	UpdateSocialProfiles(ctx context.Context, userID string, profiles []models.SocialProfile) (*models.UserProfile, error)
	UpdateExperience(ctx context.Context, userID string, entries []models.Experience) (*models.UserProfile, error)
	SavePitch(ctx context.Context, userID string, pitch models.VentureAnalysis) (*models.UserProfile, error)
	AwardBadge(ctx context.Context, userID string, badge models.Badge) (*models.UserProfile, error)
	UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.UserProfile, error)
	UpdateInterests(ctx context.Context, userID string, interests []string) (*models.UserProfile, error)
	UpdateSavedEvents(ctx context.Context, userID string, ids []string) (*models.UserProfile, error)
	UpdateRegisteredEvents(ctx context.Context, userID string, ids []string) (*models.UserProfile, error)

	SendMentorshipRequest(ctx context.Context, userID string, req MentorshipRequestCreate) (*models.UserProfile, error)
	WithdrawMentorshipRequest(ctx context.Context, userID, requestID string) (*models.UserProfile, error)

	// AI-assisted helpers
	SuggestExperienceDescription(ctx context.Context, role, company, description string) (string, error)
	SearchCourses(ctx context.Context, topic string) (*DiscoveryResponse, error)

	// Lifecycle
	Reset(ctx context.Context, userID string) error
	Shutdown()
}

type FeedService interface {
	FetchPosts(ctx context.Context) (*FeedResponse, error)
	CreatePost(ctx context.Context, userID string, author AuthorInfo, req CreatePostRequest) (*PostResponse, error)
	CreateComment(ctx context.Context, userID string, author AuthorInfo, postID string, req CreateCommentRequest) (*models.Comment, error)
	CastVote(ctx context.Context, userID, postID string, voteType models.VoteType) (*PostResponse, error)
	ToggleComments(ctx context.Context, postID string) (*CommentPanel, error)
	GetStats(ctx context.Context) (*repositories.FeedStats, error)

	// Run consumes the posts-changed topic until ctx is done, refetching
	// posts and every open comment panel on each message.
	Run(ctx context.Context) error
}

// AuthorInfo carries the denormalized author fields stamped onto posts
// and comments.
type AuthorInfo struct {
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role"`
	Avatar   string          `json:"avatar"`
	Verified bool            `json:"verified"`
}

type NotificationService interface {
	Push(userID, message string, severity models.NotificationSeverity) models.Notification
	Dismiss(userID, id string)
	List(userID string) []models.Notification
	Shutdown()
}

type EventService interface {
	ListEvents(ctx context.Context, filters repositories.EventFilters) (*EventListResponse, error)
	ToggleSaveEvent(ctx context.Context, userID, eventID string) (*models.UserProfile, error)
	ToggleRegisterEvent(ctx context.Context, userID, eventID string) (*models.UserProfile, error)
	DiscoverNearby(ctx context.Context, query string, lat, lng *float64) (*DiscoveryResponse, error)
}

type VentureService interface {
	AnalyzeVenture(ctx context.Context, userID string, req AnalyzeVentureRequest) (*models.VentureAnalysis, error)
}

type DirectoryService interface {
	ListStudents(ctx context.Context, filters repositories.UserFilters) (*DirectoryResponse, error)
	RecommendMentor(ctx context.Context, userID string) (string, error)
	ExportStudents(ctx context.Context) (*excelize.File, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Session() SessionService
	Profile() ProfileService
	Feed() FeedService
	Notification() NotificationService
	Event() EventService
	Venture() VentureService
	Directory() DirectoryService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
