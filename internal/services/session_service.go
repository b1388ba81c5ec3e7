package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SmartEdu-Labs/network-service/internal/cache"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

// sessionService hydrates and tears down the per-user profile state. On
// bootstrap the remote metadata bag wins; when the platform is unreachable
// the last locally persisted blob is used, and a brand-new user starts
// from the guest defaults.
type sessionService struct {
	users   repositories.UserRepository
	store   *cache.CacheHelper
	profile ProfileService
	syncer  *CloudSyncer
	logger  *slog.Logger
}

func NewSessionService(users repositories.UserRepository, store *cache.CacheHelper, profile ProfileService, syncer *CloudSyncer, logger *slog.Logger) SessionService {
	return &sessionService{
		users:   users,
		store:   store,
		profile: profile,
		syncer:  syncer,
		logger:  logger,
	}
}

func (s *sessionService) Bootstrap(ctx context.Context, userID string) (*models.UserProfile, error) {
	meta, err := s.users.GetMetadata(ctx, userID)
	if err != nil {
		s.logger.Warn("metadata fetch failed, falling back to local profile", "user_id", userID, "error", err)
		return s.profile.GetProfile(ctx, userID)
	}

	profile, err := hydrateProfile(userID, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate profile: %w", err)
	}

	if err := s.store.Set(ctx, userID, profile, 0); err != nil {
		return nil, fmt.Errorf("failed to persist hydrated profile: %w", err)
	}
	if err := s.store.Set(ctx, savedEventsKey(userID), profile.SavedEventIDs, 0); err != nil {
		return nil, fmt.Errorf("failed to persist saved events: %w", err)
	}
	if err := s.store.Set(ctx, registeredEventsKey(userID), profile.RegisteredEventIDs, 0); err != nil {
		return nil, fmt.Errorf("failed to persist registered events: %w", err)
	}

	s.logger.Info("session bootstrapped", "user_id", userID, "level", profile.Level)
	return profile, nil
}

func (s *sessionService) SignOut(ctx context.Context, userID string) error {
	// Queued sync work is written out before local state is dropped
	if err := s.syncer.Flush(ctx, userID); err != nil {
		s.logger.Warn("sign-out flush failed", "user_id", userID, "error", err)
	}

	if err := s.profile.Reset(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset profile on sign-out: %w", err)
	}

	s.logger.Info("session ended", "user_id", userID)
	return nil
}

// hydrateProfile layers the metadata bag over the guest defaults. The bag
// keys match the profile's JSON tags, so a marshal round-trip does the
// field mapping.
func hydrateProfile(userID string, meta map[string]any) (*models.UserProfile, error) {
	profile := models.DefaultProfile()
	profile.ID = userID

	if len(meta) == 0 {
		return &profile, nil
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode metadata into profile: %w", err)
	}

	// Defaults for fields older accounts never wrote
	profile.ID = userID
	if profile.Level < 1 {
		profile.Level = 1
	}
	if profile.XPToNextLevel <= 0 {
		profile.XPToNextLevel = 1000
	}
	if profile.Interests == nil {
		profile.Interests = []string{}
	}
	if profile.SavedEventIDs == nil {
		profile.SavedEventIDs = []string{}
	}
	if profile.RegisteredEventIDs == nil {
		profile.RegisteredEventIDs = []string{}
	}

	return &profile, nil
}
