package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

// eventService manages the event catalog plus the per-user saved and
// registered id lists held on the profile.
type eventService struct {
	repo          repositories.Repository
	db            *gorm.DB
	profile       ProfileService
	notifications NotificationService
	ai            *genai.Client
	logger        *slog.Logger
}

func NewEventService(repo repositories.Repository, db *gorm.DB, profile ProfileService, notifications NotificationService, ai *genai.Client, logger *slog.Logger) EventService {
	return &eventService{
		repo:          repo,
		db:            db,
		profile:       profile,
		notifications: notifications,
		ai:            ai,
		logger:        logger,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filters repositories.EventFilters) (*EventListResponse, error) {
	evts, total, err := s.repo.Event().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &EventListResponse{Events: evts, Total: total}, nil
}

// ToggleSaveEvent flips membership of the event id in the saved list.
func (s *eventService) ToggleSaveEvent(ctx context.Context, userID, eventID string) (*models.UserProfile, error) {
	profile, err := s.profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids, removed := toggleID(profile.SavedEventIDs, eventID)
	if removed {
		s.notifications.Push(userID, "Removed from saved events", models.SeverityInfo)
	} else {
		s.notifications.Push(userID, "Event saved", models.SeveritySuccess)
	}

	return s.profile.UpdateSavedEvents(ctx, userID, ids)
}

// ToggleRegisterEvent flips registration. Registering grants XP; releasing
// the seat does not claw it back.
func (s *eventService) ToggleRegisterEvent(ctx context.Context, userID, eventID string) (*models.UserProfile, error) {
	profile, err := s.profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids, removed := toggleID(profile.RegisteredEventIDs, eventID)
	profile, err = s.profile.UpdateRegisteredEvents(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	if removed {
		s.notifications.Push(userID, "Registration cancelled", models.SeverityInfo)
		return profile, nil
	}

	s.notifications.Push(userID, "Registered! See you there", models.SeveritySuccess)
	result, err := s.profile.AddXP(ctx, userID, xpEventRegistered, "event registration")
	if err != nil {
		return nil, err
	}
	return result.Profile, nil
}

// DiscoverNearby asks the grounded AI boundary for events near the user.
func (s *eventService) DiscoverNearby(ctx context.Context, query string, lat, lng *float64) (*DiscoveryResponse, error) {
	resp, err := s.ai.FindNearbyEvents(ctx, query, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("event discovery failed: %w", err)
	}
	return &DiscoveryResponse{Text: resp.Text, Links: resp.GroundingLinks}, nil
}

// toggleID removes id when present, appends it otherwise.
func toggleID(ids []string, id string) ([]string, bool) {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return append(ids, id), false
}
