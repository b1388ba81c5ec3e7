package validator

// Request DTOs shared between the validator and the service layer. The
// service layer aliases these so handlers bind and validate one shape.

// ===== PROFILE REQUESTS =====

type AddXPRequest struct {
	Amount int    `json:"amount" validate:"required,min=1,max=10000"`
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type EnrollCourseRequest struct {
	ID       string `json:"id" validate:"required,max=128"`
	Title    string `json:"title" validate:"required,max=300"`
	Provider string `json:"provider" validate:"required,max=200"`
	Link     string `json:"link" validate:"omitempty,url"`
	Domain   string `json:"domain" validate:"omitempty,max=200"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Avatar  *string `json:"avatar" validate:"omitempty,url"`
	Tagline *string `json:"tagline" validate:"omitempty,max=160"`
	Bio     *string `json:"bio" validate:"omitempty,max=1000"`
	Role    *string `json:"role" validate:"omitempty,user_role"`
}

type UpdateInterestsRequest struct {
	Interests []string `json:"interests" validate:"required,max=20,dive,min=1,max=60"`
}

type SocialProfileRequest struct {
	Platform string `json:"platform" validate:"required,max=60"`
	URL      string `json:"url" validate:"omitempty,url"`
	Icon     string `json:"icon" validate:"omitempty,max=60"`
}

type UpdateSocialProfilesRequest struct {
	Profiles []SocialProfileRequest `json:"profiles" validate:"required,max=10,dive"`
}

type ExperienceRequest struct {
	ID          string `json:"id" validate:"required,max=128"`
	Company     string `json:"company" validate:"required,max=200"`
	Role        string `json:"role" validate:"required,max=200"`
	Duration    string `json:"duration" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Domain      string `json:"domain" validate:"omitempty,max=200"`
}

type UpdateExperienceRequest struct {
	Entries []ExperienceRequest `json:"entries" validate:"required,max=30,dive"`
}

type AwardBadgeRequest struct {
	ID          string `json:"id" validate:"required,max=128"`
	Name        string `json:"name" validate:"required,max=120"`
	Icon        string `json:"icon" validate:"omitempty,max=60"`
	Color       string `json:"color" validate:"omitempty,max=60"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Issuer      string `json:"issuer" validate:"omitempty,max=200"`
}

type UpdatePreferencesRequest struct {
	Theme                *string `json:"theme" validate:"omitempty,oneof=light dark"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	PublicProfile        *bool   `json:"publicProfile"`
	MarketingEmails      *bool   `json:"marketingEmails"`
	CompactMode          *bool   `json:"compactMode"`
}

type MentorshipRequestCreate struct {
	MentorID       string `json:"mentor_id" validate:"required,max=128"`
	MentorName     string `json:"mentor_name" validate:"required,max=120"`
	InitialMessage string `json:"initial_message" validate:"omitempty,max=1000"`
}

// ===== FEED REQUESTS =====

type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=5000"`
	Flair    string `json:"flair" validate:"omitempty,max=60"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type CastVoteRequest struct {
	Type string `json:"type" validate:"required,vote_type"`
}

// ===== EVENT REQUESTS =====

type ToggleEventRequest struct {
	EventID string `json:"event_id" validate:"required,max=128"`
}

// ===== VENTURE REQUESTS =====

type AnalyzeVentureRequest struct {
	Concept    string `json:"concept" validate:"required,min=10,max=3000"`
	WithVisual bool   `json:"with_visual"`
}
