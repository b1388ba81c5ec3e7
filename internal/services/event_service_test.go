package services

import (
	"context"
	"testing"
	"time"

	"github.com/SmartEdu-Labs/network-service/internal/config"
	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

func newEventFixture(t *testing.T) (EventService, *profileFixture) {
	t.Helper()

	fx := newProfileFixture(t, defaultSyncConfig())
	repo := newStubRepository()
	ai := genai.NewClient(config.GenAIConfig{
		BaseURL:    "http://127.0.0.1:1",
		TextModel:  "test-model",
		MaxRetries: 0,
		RetryBase:  time.Millisecond,
	}, testLogger())

	svc := NewEventService(repo, nil, fx.svc, fx.notifications, ai, testLogger())
	return svc, fx
}

func TestEventService_ToggleSaveEvent(t *testing.T) {
	ctx := context.Background()
	svc, fx := newEventFixture(t)

	profile, err := svc.ToggleSaveEvent(ctx, "u1", "ev1")
	if err != nil {
		t.Fatalf("ToggleSaveEvent failed: %v", err)
	}
	if len(profile.SavedEventIDs) != 1 || profile.SavedEventIDs[0] != "ev1" {
		t.Fatalf("saved ids = %v, want [ev1]", profile.SavedEventIDs)
	}

	// Second toggle removes
	profile, err = svc.ToggleSaveEvent(ctx, "u1", "ev1")
	if err != nil {
		t.Fatalf("second ToggleSaveEvent failed: %v", err)
	}
	if len(profile.SavedEventIDs) != 0 {
		t.Fatalf("saved ids = %v, want empty", profile.SavedEventIDs)
	}

	_ = fx
}

func TestEventService_ToggleRegisterEvent(t *testing.T) {
	ctx := context.Background()
	svc, fx := newEventFixture(t)

	profile, err := svc.ToggleRegisterEvent(ctx, "u1", "ev1")
	if err != nil {
		t.Fatalf("ToggleRegisterEvent failed: %v", err)
	}
	if len(profile.RegisteredEventIDs) != 1 {
		t.Fatalf("registered ids = %v, want one entry", profile.RegisteredEventIDs)
	}
	if profile.XP != xpEventRegistered {
		t.Errorf("xp = %d, want %d", profile.XP, xpEventRegistered)
	}

	// Unregister releases the seat but keeps the XP
	profile, err = svc.ToggleRegisterEvent(ctx, "u1", "ev1")
	if err != nil {
		t.Fatalf("second ToggleRegisterEvent failed: %v", err)
	}
	if len(profile.RegisteredEventIDs) != 0 {
		t.Fatalf("registered ids = %v, want empty", profile.RegisteredEventIDs)
	}
	if profile.XP != xpEventRegistered {
		t.Errorf("xp after unregister = %d, want %d", profile.XP, xpEventRegistered)
	}

	_ = fx
}

func TestDirectoryService_MockFallback(t *testing.T) {
	ctx := context.Background()

	repo := newStubRepository()
	repo.users.failNext = true
	ai := genai.NewClient(config.GenAIConfig{BaseURL: "http://127.0.0.1:1", MaxRetries: 0, RetryBase: time.Millisecond}, testLogger())
	svc := NewDirectoryService(repo, ai, testLogger())

	resp, err := svc.ListStudents(ctx, repositories.UserFilters{})
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if !resp.Fallback {
		t.Error("expected mock fallback")
	}
	if len(resp.Students) == 0 {
		t.Fatal("fallback directory is empty")
	}
}
