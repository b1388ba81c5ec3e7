package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SmartEdu-Labs/network-service/internal/cache"
	"github.com/SmartEdu-Labs/network-service/internal/config"
	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

// XP grants for the built-in progression actions.
const (
	xpCourseCompleted  = 100
	xpEventRegistered  = 150
	xpMentorAccepted   = 200
	xpVentureAnalyzed  = 75
	levelUpGrowthRatio = 1.2
)

type xpGain struct {
	amount int
	at     time.Time
}

// profileService owns the per-user profile blob: every mutation loads it
// from the local store, applies the change, writes it back, and queues the
// touched metadata fields on the debounced cloud syncer.
type profileService struct {
	store         *cache.CacheHelper
	syncer        *CloudSyncer
	notifications NotificationService
	ai            *genai.Client
	validator     *validator.Validator
	logger        *slog.Logger
	cfg           config.SyncConfig

	mu           sync.Mutex
	lastGains    map[string]xpGain
	mentorTimers map[string]*time.Timer // keyed by request id
}

func NewProfileService(store *cache.CacheHelper, syncer *CloudSyncer, notifications NotificationService, ai *genai.Client, v *validator.Validator, cfg config.SyncConfig, logger *slog.Logger) ProfileService {
	return &profileService{
		store:         store,
		syncer:        syncer,
		notifications: notifications,
		ai:            ai,
		validator:     v,
		logger:        logger,
		cfg:           cfg,
		lastGains:     make(map[string]xpGain),
		mentorTimers:  make(map[string]*time.Timer),
	}
}

// ===== PROFILE PERSISTENCE =====

// The event-id lists are durable records of their own: they live under
// dedicated store keys beside the profile blob and win over whatever the
// blob carries.
func savedEventsKey(userID string) string      { return userID + ":saved_events" }
func registeredEventsKey(userID string) string { return userID + ":registered_events" }

// loadProfile reads the user's profile blob from the local store, falling
// back to the guest defaults when nothing has been stored yet.
func (s *profileService) loadProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.store.Get(ctx, userID, &profile)
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) || errors.Is(err, cache.ErrCacheNotAvailable) {
			fresh := models.DefaultProfile()
			fresh.ID = userID
			s.loadEventLists(ctx, &fresh)
			return &fresh, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.ID == "" {
		profile.ID = userID
	}
	s.loadEventLists(ctx, &profile)
	return &profile, nil
}

// loadEventLists overlays the event-id lists from their dedicated keys.
// A missing key leaves the blob's copy in place.
func (s *profileService) loadEventLists(ctx context.Context, profile *models.UserProfile) {
	var saved []string
	if err := s.store.Get(ctx, savedEventsKey(profile.ID), &saved); err == nil {
		profile.SavedEventIDs = saved
	}
	var registered []string
	if err := s.store.Get(ctx, registeredEventsKey(profile.ID), &registered); err == nil {
		profile.RegisteredEventIDs = registered
	}
}

// saveProfile persists the blob locally and queues the touched fields for
// the debounced remote write.
func (s *profileService) saveProfile(ctx context.Context, profile *models.UserProfile, syncFields map[string]any) error {
	if err := s.store.Set(ctx, profile.ID, profile, 0); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	s.syncer.Queue(profile.ID, syncFields)
	return nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.loadProfile(ctx, userID)
}

// ===== XP AND LEVELING =====

func (s *profileService) AddXP(ctx context.Context, userID string, amount int, reason string) (*XPResult, error) {
	if amount <= 0 {
		return nil, wrapValidation("xp amount must be positive")
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.XP += amount
	leveledUp := false
	if profile.XP >= profile.XPToNextLevel {
		profile.XP -= profile.XPToNextLevel
		profile.Level++
		profile.XPToNextLevel = int(math.Floor(float64(profile.XPToNextLevel) * levelUpGrowthRatio))
		leveledUp = true
	}

	if err := s.saveProfile(ctx, profile, map[string]any{
		"xp":            profile.XP,
		"level":         profile.Level,
		"xpToNextLevel": profile.XPToNextLevel,
	}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastGains[userID] = xpGain{amount: amount, at: time.Now()}
	s.mu.Unlock()

	if leveledUp {
		s.notifications.Push(userID, fmt.Sprintf("Level up! You reached Level %d", profile.Level), models.SeveritySuccess)
	}

	s.logger.Info("xp added", "user_id", userID, "amount", amount, "reason", reason, "level", profile.Level, "leveled_up", leveledUp)

	return &XPResult{Profile: profile, Gained: amount, LeveledUp: leveledUp}, nil
}

// LastXPGain returns the most recent gain while it is still inside the
// display window, zero otherwise.
func (s *profileService) LastXPGain(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	gain, ok := s.lastGains[userID]
	if !ok || time.Since(gain.at) > s.cfg.XPGainDisplay {
		return 0
	}
	return gain.amount
}

// ===== COURSES =====

func (s *profileService) EnrollCourse(ctx context.Context, userID string, course models.EnrolledCourse) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Idempotent by course id
	for _, c := range profile.EnrolledCourses {
		if c.ID == course.ID {
			return profile, nil
		}
	}

	course.Status = models.CourseEnrolled
	if course.EnrolledAt == "" {
		course.EnrolledAt = time.Now().Format(time.RFC3339)
	}
	profile.EnrolledCourses = append(profile.EnrolledCourses, course)

	if err := s.saveProfile(ctx, profile, map[string]any{
		"enrolled_courses": profile.EnrolledCourses,
	}); err != nil {
		return nil, err
	}

	s.notifications.Push(userID, fmt.Sprintf("Enrolled in %s", course.Title), models.SeveritySuccess)
	return profile, nil
}

func (s *profileService) CompleteCourse(ctx context.Context, userID, courseID string) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i, c := range profile.EnrolledCourses {
		if c.ID == courseID {
			if c.Status == models.CourseCompleted {
				return profile, nil
			}
			profile.EnrolledCourses[i].Status = models.CourseCompleted
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCourseNotFound
	}

	if err := s.saveProfile(ctx, profile, map[string]any{
		"enrolled_courses": profile.EnrolledCourses,
	}); err != nil {
		return nil, err
	}

	s.notifications.Push(userID, "Course completed!", models.SeveritySuccess)

	result, err := s.AddXP(ctx, userID, xpCourseCompleted, "course completed")
	if err != nil {
		return nil, err
	}
	return result.Profile, nil
}

// ===== PROFILE FIELDS =====

func (s *profileService) UpdateSocialProfiles(ctx context.Context, userID string, profiles []models.SocialProfile) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.SocialProfiles = profiles
	if err := s.saveProfile(ctx, profile, map[string]any{
		"social_profiles": profile.SocialProfiles,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateExperience(ctx context.Context, userID string, entries []models.Experience) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Experience = entries
	if err := s.saveProfile(ctx, profile, map[string]any{
		"experience": profile.Experience,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) SavePitch(ctx context.Context, userID string, pitch models.VentureAnalysis) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Newest first
	profile.Pitches = append([]models.VentureAnalysis{pitch}, profile.Pitches...)
	if err := s.saveProfile(ctx, profile, map[string]any{
		"pitches": profile.Pitches,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) AwardBadge(ctx context.Context, userID string, badge models.Badge) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Idempotent by badge id: exactly one notification, on first award only
	for _, b := range profile.Badges {
		if b.ID == badge.ID {
			return profile, nil
		}
	}

	profile.Badges = append(profile.Badges, badge)
	if err := s.saveProfile(ctx, profile, map[string]any{
		"badges": profile.Badges,
	}); err != nil {
		return nil, err
	}

	s.notifications.Push(userID, fmt.Sprintf("Badge earned: %s", badge.Name), models.SeveritySuccess)
	return profile, nil
}

func (s *profileService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		profile.Preferences.Theme = models.Theme(*req.Theme)
	}
	if req.NotificationsEnabled != nil {
		profile.Preferences.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.PublicProfile != nil {
		profile.Preferences.PublicProfile = *req.PublicProfile
	}
	if req.MarketingEmails != nil {
		profile.Preferences.MarketingEmails = *req.MarketingEmails
	}
	if req.CompactMode != nil {
		profile.Preferences.CompactMode = *req.CompactMode
	}

	if err := s.saveProfile(ctx, profile, map[string]any{
		"preferences": profile.Preferences,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.UserProfile, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if req.Name != nil {
		profile.Name = *req.Name
		fields["full_name"] = profile.Name
	}
	if req.Avatar != nil {
		profile.Avatar = *req.Avatar
		fields["avatar"] = profile.Avatar
	}
	if req.Tagline != nil {
		profile.Tagline = *req.Tagline
		fields["tagline"] = profile.Tagline
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
		fields["bio"] = profile.Bio
	}
	if req.Role != nil {
		profile.Role = models.UserRole(strings.ToUpper(*req.Role))
		fields["role"] = profile.Role
	}

	if err := s.saveProfile(ctx, profile, fields); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateInterests(ctx context.Context, userID string, interests []string) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Interests = interests
	if err := s.saveProfile(ctx, profile, map[string]any{
		"interests": profile.Interests,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateSavedEvents(ctx context.Context, userID string, ids []string) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.SavedEventIDs = ids
	if err := s.store.Set(ctx, savedEventsKey(userID), ids, 0); err != nil {
		return nil, fmt.Errorf("failed to persist saved events: %w", err)
	}
	if err := s.saveProfile(ctx, profile, map[string]any{
		"saved_event_ids": profile.SavedEventIDs,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateRegisteredEvents(ctx context.Context, userID string, ids []string) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.RegisteredEventIDs = ids
	if err := s.store.Set(ctx, registeredEventsKey(userID), ids, 0); err != nil {
		return nil, fmt.Errorf("failed to persist registered events: %w", err)
	}
	if err := s.saveProfile(ctx, profile, map[string]any{
		"registered_event_ids": profile.RegisteredEventIDs,
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

// ===== MENTORSHIP =====

func (s *profileService) SendMentorshipRequest(ctx context.Context, userID string, req MentorshipRequestCreate) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.Business().ValidateMentorshipRequest(&req, profile.MentorshipRequests); errs.HasErrors() {
		for _, e := range errs {
			if e.Rule == "duplicate_request" {
				s.notifications.Push(userID, fmt.Sprintf("You already have a request with %s", req.MentorName), models.SeverityWarning)
				return profile, ErrDuplicateRequest
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	request := models.MentorshipRequest{
		ID:             uuid.NewString(),
		MentorID:       req.MentorID,
		MentorName:     req.MentorName,
		Status:         models.RequestPending,
		RequestDate:    time.Now().Format(time.RFC3339),
		InitialMessage: req.InitialMessage,
	}
	profile.MentorshipRequests = append(profile.MentorshipRequests, request)

	if err := s.saveProfile(ctx, profile, map[string]any{
		"mentorship_requests": profile.MentorshipRequests,
	}); err != nil {
		return nil, err
	}

	s.notifications.Push(userID, fmt.Sprintf("Request sent to %s", req.MentorName), models.SeverityInfo)

	// The mentor "responds" after a fixed wait. The timer is cancellable
	// through WithdrawMentorshipRequest.
	s.mu.Lock()
	s.mentorTimers[request.ID] = time.AfterFunc(s.cfg.MentorResponseWait, func() {
		s.acceptMentorshipRequest(userID, request.ID)
	})
	s.mu.Unlock()

	return profile, nil
}

// acceptMentorshipRequest runs on timer expiry: flips the request to
// accepted, attaches an AI-written response, and grants the mentorship XP.
// A request withdrawn before the timer fires is left untouched.
func (s *profileService) acceptMentorshipRequest(userID, requestID string) {
	s.mu.Lock()
	delete(s.mentorTimers, requestID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		s.logger.Error("mentor acceptance failed to load profile", "user_id", userID, "error", err)
		return
	}

	idx := -1
	for i, r := range profile.MentorshipRequests {
		if r.ID == requestID && r.Status == models.RequestPending {
			idx = i
			break
		}
	}
	if idx < 0 {
		return // withdrawn or already resolved
	}

	request := &profile.MentorshipRequests[idx]
	response, err := s.ai.MentorAcceptance(ctx, request.MentorName, "mentor", profile.Interests)
	if err != nil {
		s.logger.Warn("mentor acceptance text generation failed", "user_id", userID, "error", err)
		response = "I'm excited to support your journey within our innovation network."
	}

	request.Status = models.RequestAccepted
	request.MentorResponse = response

	if err := s.saveProfile(ctx, profile, map[string]any{
		"mentorship_requests": profile.MentorshipRequests,
	}); err != nil {
		s.logger.Error("mentor acceptance failed to save profile", "user_id", userID, "error", err)
		return
	}

	s.notifications.Push(userID, fmt.Sprintf("%s accepted your mentorship request!", request.MentorName), models.SeveritySuccess)

	if _, err := s.AddXP(ctx, userID, xpMentorAccepted, "mentorship accepted"); err != nil {
		s.logger.Error("mentor acceptance xp grant failed", "user_id", userID, "error", err)
	}
}

func (s *profileService) WithdrawMentorshipRequest(ctx context.Context, userID, requestID string) (*models.UserProfile, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, r := range profile.MentorshipRequests {
		if r.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrRequestNotFound
	}
	if profile.MentorshipRequests[idx].Status != models.RequestPending {
		return nil, ErrRequestNotPending
	}

	// Cancel the pending acceptance before touching state
	s.mu.Lock()
	if timer, ok := s.mentorTimers[requestID]; ok {
		timer.Stop()
		delete(s.mentorTimers, requestID)
	}
	s.mu.Unlock()

	mentorName := profile.MentorshipRequests[idx].MentorName
	profile.MentorshipRequests = append(profile.MentorshipRequests[:idx], profile.MentorshipRequests[idx+1:]...)

	if err := s.saveProfile(ctx, profile, map[string]any{
		"mentorship_requests": profile.MentorshipRequests,
	}); err != nil {
		return nil, err
	}

	s.notifications.Push(userID, fmt.Sprintf("Request to %s withdrawn", mentorName), models.SeverityInfo)
	return profile, nil
}

// ===== AI-ASSISTED HELPERS =====

func (s *profileService) SuggestExperienceDescription(ctx context.Context, role, company, description string) (string, error) {
	return s.ai.ImproveExperience(ctx, role, company, description)
}

func (s *profileService) SearchCourses(ctx context.Context, topic string) (*DiscoveryResponse, error) {
	resp, err := s.ai.SearchCourses(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("course search failed: %w", err)
	}
	return &DiscoveryResponse{Text: resp.Text, Links: resp.GroundingLinks}, nil
}

// ===== LIFECYCLE =====

// Reset clears the local profile blob and any transient per-user state.
func (s *profileService) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.lastGains, userID)
	s.mu.Unlock()

	keys := []string{userID, savedEventsKey(userID), registeredEventsKey(userID)}
	if err := s.store.Delete(ctx, keys...); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return fmt.Errorf("failed to clear local profile: %w", err)
	}
	return nil
}

func (s *profileService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.mentorTimers {
		timer.Stop()
		delete(s.mentorTimers, id)
	}
}
