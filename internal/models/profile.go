package models

// The profile blob is the authoritative local view of the signed-in user.
// It is persisted as JSON in the local store on every mutation and mirrored
// into the Casdoor user-metadata bag through the debounced cloud syncer,
// which is why the JSON keys below match the metadata field names.

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type UserPreferences struct {
	Theme                Theme `json:"theme"`
	NotificationsEnabled bool  `json:"notificationsEnabled"`
	PublicProfile        bool  `json:"publicProfile"`
	MarketingEmails      bool  `json:"marketingEmails"`
	CompactMode          bool  `json:"compactMode"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Issuer      string `json:"issuer,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	URL         string `json:"url,omitempty"`
}

type SocialProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

type CourseStatus string

const (
	CourseEnrolled  CourseStatus = "enrolled"
	CourseCompleted CourseStatus = "completed"
)

type EnrolledCourse struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Provider   string       `json:"provider"`
	Link       string       `json:"link"`
	Domain     string       `json:"domain,omitempty"`
	Status     CourseStatus `json:"status"`
	EnrolledAt string       `json:"enrolledAt"`
}

type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Domain      string `json:"domain,omitempty"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

type MentorshipRequest struct {
	ID             string        `json:"id"`
	MentorID       string        `json:"mentorId"`
	MentorName     string        `json:"mentorName"`
	Status         RequestStatus `json:"status"`
	RequestDate    string        `json:"requestDate"`
	InitialMessage string        `json:"initialMessage,omitempty"`
	MentorResponse string        `json:"mentorResponse,omitempty"`
}

type VentureAnalysis struct {
	ID        string `json:"id"`
	Concept   string `json:"concept"`
	Analysis  string `json:"analysis"`
	VisualURL string `json:"visualUrl,omitempty"`
	Date      string `json:"date"`
}

type UserProfile struct {
	ID                 string              `json:"id,omitempty"`
	Name               string              `json:"full_name"`
	Role               UserRole            `json:"role"`
	Level              int                 `json:"level"`
	XP                 int                 `json:"xp"`
	XPToNextLevel      int                 `json:"xpToNextLevel"`
	Interests          []string            `json:"interests"`
	Avatar             string              `json:"avatar"`
	Badges             []Badge             `json:"badges"`
	EnrolledCourses    []EnrolledCourse    `json:"enrolled_courses"`
	SocialProfiles     []SocialProfile     `json:"social_profiles"`
	Experience         []Experience        `json:"experience"`
	MentorshipRequests []MentorshipRequest `json:"mentorship_requests"`
	Pitches            []VentureAnalysis   `json:"pitches"`
	SavedEventIDs      []string            `json:"saved_event_ids"`
	RegisteredEventIDs []string            `json:"registered_event_ids"`
	Bio                string              `json:"bio,omitempty"`
	Tagline            string              `json:"tagline,omitempty"`
	Preferences        UserPreferences     `json:"preferences"`
}

// DefaultPreferences returns the preference set applied to a fresh profile.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Theme:                ThemeDark,
		NotificationsEnabled: true,
		PublicProfile:        true,
		MarketingEmails:      false,
		CompactMode:          false,
	}
}

// DefaultProfile returns the guest profile used before sign-in and after
// sign-out. Level 1, zero XP, a 1000 XP first threshold.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:            "Guest Innovator",
		Role:            RoleStudent,
		Level:           1,
		XP:              0,
		XPToNextLevel:   1000,
		Interests:       []string{},
		Avatar:          "https://api.dicebear.com/7.x/avataaars/svg?seed=guest",
		Badges:          []Badge{},
		EnrolledCourses: []EnrolledCourse{},
		SocialProfiles: []SocialProfile{
			{Platform: "GitHub", URL: "", Icon: "code"},
			{Platform: "LinkedIn", URL: "", Icon: "work"},
			{Platform: "Portfolio", URL: "", Icon: "language"},
		},
		Experience:         []Experience{},
		MentorshipRequests: []MentorshipRequest{},
		Pitches:            []VentureAnalysis{},
		SavedEventIDs:      []string{},
		RegisteredEventIDs: []string{},
		Tagline:            "Future Founder",
		Preferences:        DefaultPreferences(),
	}
}
