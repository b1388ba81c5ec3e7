package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SmartEdu-Labs/network-service/internal/cache"
	"github.com/SmartEdu-Labs/network-service/internal/config"
	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

type profileFixture struct {
	svc           ProfileService
	users         *mockUserRepository
	notifications NotificationService
	store         *cache.CacheHelper
}

func newProfileFixture(t *testing.T, sync config.SyncConfig) *profileFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := cache.NewCacheHelper(client, "smartedu_user_data_")
	users := newMockUserRepository()
	syncer := NewCloudSyncer(users, sync.DebounceInterval, testLogger())
	notifications := NewNotificationService(sync.NotificationLimit, sync.NotificationTTL, testLogger())
	t.Cleanup(notifications.Shutdown)

	// Unreachable endpoint: AI calls fail fast and fallbacks kick in
	ai := genai.NewClient(config.GenAIConfig{
		BaseURL:    "http://127.0.0.1:1",
		TextModel:  "test-model",
		ImageModel: "test-model",
		MaxRetries: 0,
		RetryBase:  time.Millisecond,
	}, testLogger())

	svc := NewProfileService(store, syncer, notifications, ai, validator.New(), sync, testLogger())
	t.Cleanup(svc.Shutdown)

	return &profileFixture{svc: svc, users: users, notifications: notifications, store: store}
}

func defaultSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		DebounceInterval:   20 * time.Millisecond,
		NotificationTTL:    time.Minute,
		NotificationLimit:  3,
		MentorResponseWait: 40 * time.Millisecond,
		XPGainDisplay:      time.Minute,
	}
}

func TestProfileService_AddXP(t *testing.T) {
	ctx := context.Background()

	t.Run("exact threshold wraps once", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())

		result, err := fx.svc.AddXP(ctx, "u1", 1000, "test")
		if err != nil {
			t.Fatalf("AddXP failed: %v", err)
		}

		p := result.Profile
		if p.Level != 2 || p.XP != 0 || p.XPToNextLevel != 1200 {
			t.Errorf("got level=%d xp=%d next=%d, want 2/0/1200", p.Level, p.XP, p.XPToNextLevel)
		}
		if !result.LeveledUp {
			t.Error("expected LeveledUp")
		}
	})

	t.Run("accumulates below threshold", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())

		if _, err := fx.svc.AddXP(ctx, "u1", 150, "a"); err != nil {
			t.Fatalf("AddXP failed: %v", err)
		}
		result, err := fx.svc.AddXP(ctx, "u1", 150, "b")
		if err != nil {
			t.Fatalf("AddXP failed: %v", err)
		}

		p := result.Profile
		if p.Level != 1 || p.XP != 300 || p.XPToNextLevel != 1000 {
			t.Errorf("got level=%d xp=%d next=%d, want 1/300/1000", p.Level, p.XP, p.XPToNextLevel)
		}
	})

	t.Run("overshoot carries remainder", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())

		result, err := fx.svc.AddXP(ctx, "u1", 1150, "test")
		if err != nil {
			t.Fatalf("AddXP failed: %v", err)
		}

		p := result.Profile
		if p.Level != 2 || p.XP != 150 || p.XPToNextLevel != 1200 {
			t.Errorf("got level=%d xp=%d next=%d, want 2/150/1200", p.Level, p.XP, p.XPToNextLevel)
		}
	})

	t.Run("level up pushes a notification", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())

		if _, err := fx.svc.AddXP(ctx, "u1", 1000, "test"); err != nil {
			t.Fatalf("AddXP failed: %v", err)
		}

		queue := fx.notifications.List("u1")
		if len(queue) != 1 || queue[0].Severity != models.SeveritySuccess {
			t.Fatalf("expected one success notification, got %v", queue)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())
		if _, err := fx.svc.AddXP(ctx, "u1", 0, "test"); err == nil {
			t.Error("expected validation error for zero amount")
		}
	})

	t.Run("last gain visible inside display window", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())
		if _, err := fx.svc.AddXP(ctx, "u1", 50, "test"); err != nil {
			t.Fatalf("AddXP failed: %v", err)
		}
		if got := fx.svc.LastXPGain("u1"); got != 50 {
			t.Errorf("LastXPGain = %d, want 50", got)
		}
		if got := fx.svc.LastXPGain("u2"); got != 0 {
			t.Errorf("LastXPGain for other user = %d, want 0", got)
		}
	})
}

func TestProfileService_EnrollCourseIdempotent(t *testing.T) {
	ctx := context.Background()
	fx := newProfileFixture(t, defaultSyncConfig())

	course := models.EnrolledCourse{ID: "c1", Title: "Systems Design", Provider: "SmartEdu"}

	first, err := fx.svc.EnrollCourse(ctx, "u1", course)
	if err != nil {
		t.Fatalf("EnrollCourse failed: %v", err)
	}
	second, err := fx.svc.EnrollCourse(ctx, "u1", course)
	if err != nil {
		t.Fatalf("second EnrollCourse failed: %v", err)
	}

	if len(first.EnrolledCourses) != 1 || len(second.EnrolledCourses) != 1 {
		t.Fatalf("expected one enrollment, got %d then %d", len(first.EnrolledCourses), len(second.EnrolledCourses))
	}
	if second.EnrolledCourses[0].Status != models.CourseEnrolled {
		t.Errorf("status = %s, want enrolled", second.EnrolledCourses[0].Status)
	}
}

func TestProfileService_CompleteCourse(t *testing.T) {
	ctx := context.Background()
	fx := newProfileFixture(t, defaultSyncConfig())

	if _, err := fx.svc.EnrollCourse(ctx, "u1", models.EnrolledCourse{ID: "c1", Title: "Go"}); err != nil {
		t.Fatalf("EnrollCourse failed: %v", err)
	}

	profile, err := fx.svc.CompleteCourse(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("CompleteCourse failed: %v", err)
	}
	if profile.EnrolledCourses[0].Status != models.CourseCompleted {
		t.Errorf("status = %s, want completed", profile.EnrolledCourses[0].Status)
	}
	if profile.XP != xpCourseCompleted {
		t.Errorf("xp = %d, want %d", profile.XP, xpCourseCompleted)
	}

	if _, err := fx.svc.CompleteCourse(ctx, "u1", "missing"); err == nil {
		t.Error("expected error for unknown course")
	}
}

func TestProfileService_AwardBadgeIdempotent(t *testing.T) {
	ctx := context.Background()
	fx := newProfileFixture(t, defaultSyncConfig())

	badge := models.Badge{ID: "b1", Name: "First Steps"}

	if _, err := fx.svc.AwardBadge(ctx, "u1", badge); err != nil {
		t.Fatalf("AwardBadge failed: %v", err)
	}
	profile, err := fx.svc.AwardBadge(ctx, "u1", badge)
	if err != nil {
		t.Fatalf("second AwardBadge failed: %v", err)
	}

	if len(profile.Badges) != 1 {
		t.Fatalf("expected one badge, got %d", len(profile.Badges))
	}
	// Exactly one notification for the duplicate award pair
	if got := len(fx.notifications.List("u1")); got != 1 {
		t.Errorf("expected 1 notification, got %d", got)
	}
}

func TestProfileService_Mentorship(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate request warns without state change", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())
		req := MentorshipRequestCreate{MentorID: "m1", MentorName: "Dr. Mehta"}

		if _, err := fx.svc.SendMentorshipRequest(ctx, "u1", req); err != nil {
			t.Fatalf("SendMentorshipRequest failed: %v", err)
		}
		profile, err := fx.svc.SendMentorshipRequest(ctx, "u1", req)
		if err != ErrDuplicateRequest {
			t.Fatalf("expected ErrDuplicateRequest, got %v", err)
		}
		if len(profile.MentorshipRequests) != 1 {
			t.Errorf("expected one request, got %d", len(profile.MentorshipRequests))
		}
	})

	t.Run("request accepted after wait with xp grant", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())
		req := MentorshipRequestCreate{MentorID: "m1", MentorName: "Dr. Mehta"}

		if _, err := fx.svc.SendMentorshipRequest(ctx, "u1", req); err != nil {
			t.Fatalf("SendMentorshipRequest failed: %v", err)
		}

		// Wait past the simulated mentor response delay
		time.Sleep(400 * time.Millisecond)

		profile, err := fx.svc.GetProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if profile.MentorshipRequests[0].Status != models.RequestAccepted {
			t.Fatalf("status = %s, want accepted", profile.MentorshipRequests[0].Status)
		}
		if profile.MentorshipRequests[0].MentorResponse == "" {
			t.Error("expected a mentor response message")
		}
		if profile.XP != xpMentorAccepted {
			t.Errorf("xp = %d, want %d", profile.XP, xpMentorAccepted)
		}
	})

	t.Run("withdraw cancels pending acceptance", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())
		req := MentorshipRequestCreate{MentorID: "m1", MentorName: "Dr. Mehta"}

		profile, err := fx.svc.SendMentorshipRequest(ctx, "u1", req)
		if err != nil {
			t.Fatalf("SendMentorshipRequest failed: %v", err)
		}
		requestID := profile.MentorshipRequests[0].ID

		profile, err = fx.svc.WithdrawMentorshipRequest(ctx, "u1", requestID)
		if err != nil {
			t.Fatalf("WithdrawMentorshipRequest failed: %v", err)
		}
		if len(profile.MentorshipRequests) != 0 {
			t.Fatalf("expected request removed, got %d", len(profile.MentorshipRequests))
		}

		// The cancelled timer must not resurrect the request or grant XP
		time.Sleep(200 * time.Millisecond)
		profile, err = fx.svc.GetProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if len(profile.MentorshipRequests) != 0 || profile.XP != 0 {
			t.Errorf("withdrawn request came back: requests=%d xp=%d", len(profile.MentorshipRequests), profile.XP)
		}
	})

	t.Run("withdraw unknown request", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())
		if _, err := fx.svc.WithdrawMentorshipRequest(ctx, "u1", "nope"); err != ErrRequestNotFound {
			t.Errorf("expected ErrRequestNotFound, got %v", err)
		}
	})
}

func TestProfileService_DebouncedSync(t *testing.T) {
	ctx := context.Background()
	fx := newProfileFixture(t, defaultSyncConfig())

	// Burst of mutations inside the debounce window
	if _, err := fx.svc.AddXP(ctx, "u1", 50, "a"); err != nil {
		t.Fatalf("AddXP failed: %v", err)
	}
	if _, err := fx.svc.UpdateInterests(ctx, "u1", []string{"robotics"}); err != nil {
		t.Fatalf("UpdateInterests failed: %v", err)
	}
	if _, err := fx.svc.AwardBadge(ctx, "u1", models.Badge{ID: "b1", Name: "Starter"}); err != nil {
		t.Fatalf("AwardBadge failed: %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	writes := fx.users.metadataWrites()
	if len(writes) != 1 {
		t.Fatalf("expected one merged remote write, got %d", len(writes))
	}
	fields := writes[0].fields
	for _, key := range []string{"xp", "level", "interests", "badges"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("merged write missing field %q", key)
		}
	}
}

func TestProfileService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("role mirrors alongside the name fields", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())

		name := "Asha"
		role := "mentor"
		profile, err := fx.svc.UpdateProfile(ctx, "u1", UpdateProfileRequest{Name: &name, Role: &role})
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if profile.Name != "Asha" || profile.Role != models.RoleMentor {
			t.Errorf("got name=%q role=%s, want Asha/MENTOR", profile.Name, profile.Role)
		}

		time.Sleep(120 * time.Millisecond)

		writes := fx.users.metadataWrites()
		if len(writes) != 1 {
			t.Fatalf("expected one remote write, got %d", len(writes))
		}
		for _, key := range []string{"full_name", "role"} {
			if _, ok := writes[0].fields[key]; !ok {
				t.Errorf("remote write missing field %q", key)
			}
		}
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		fx := newProfileFixture(t, defaultSyncConfig())

		role := "wizard"
		if _, err := fx.svc.UpdateProfile(ctx, "u1", UpdateProfileRequest{Role: &role}); err == nil {
			t.Error("expected validation error for unknown role")
		}
	})
}

func TestProfileService_EventListStorage(t *testing.T) {
	ctx := context.Background()
	fx := newProfileFixture(t, defaultSyncConfig())

	if _, err := fx.svc.UpdateSavedEvents(ctx, "u1", []string{"e1", "e2"}); err != nil {
		t.Fatalf("UpdateSavedEvents failed: %v", err)
	}
	if _, err := fx.svc.UpdateRegisteredEvents(ctx, "u1", []string{"e3"}); err != nil {
		t.Fatalf("UpdateRegisteredEvents failed: %v", err)
	}

	// Each list persists under its own key beside the profile blob
	var saved []string
	if err := fx.store.Get(ctx, "u1:saved_events", &saved); err != nil {
		t.Fatalf("saved-events key missing: %v", err)
	}
	if len(saved) != 2 || saved[0] != "e1" || saved[1] != "e2" {
		t.Errorf("saved list = %v, want [e1 e2]", saved)
	}
	var registered []string
	if err := fx.store.Get(ctx, "u1:registered_events", &registered); err != nil {
		t.Fatalf("registered-events key missing: %v", err)
	}
	if len(registered) != 1 || registered[0] != "e3" {
		t.Errorf("registered list = %v, want [e3]", registered)
	}

	// The dedicated keys survive loss of the blob
	if err := fx.store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	profile, err := fx.svc.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if len(profile.SavedEventIDs) != 2 || len(profile.RegisteredEventIDs) != 1 {
		t.Errorf("lists not reloaded from their keys: saved=%v registered=%v", profile.SavedEventIDs, profile.RegisteredEventIDs)
	}

	// Sign-out reset clears every key
	if err := fx.svc.Reset(ctx, "u1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := fx.store.Get(ctx, "u1:saved_events", &saved); err == nil {
		t.Error("saved-events key survived reset")
	}
	if err := fx.store.Get(ctx, "u1:registered_events", &registered); err == nil {
		t.Error("registered-events key survived reset")
	}
}

func TestProfileService_Reset(t *testing.T) {
	ctx := context.Background()
	fx := newProfileFixture(t, defaultSyncConfig())

	if _, err := fx.svc.AddXP(ctx, "u1", 500, "test"); err != nil {
		t.Fatalf("AddXP failed: %v", err)
	}
	if err := fx.svc.Reset(ctx, "u1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	profile, err := fx.svc.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.XP != 0 || profile.Level != 1 || profile.XPToNextLevel != 1000 {
		t.Errorf("expected guest defaults after reset, got level=%d xp=%d next=%d", profile.Level, profile.XP, profile.XPToNextLevel)
	}
	if fx.svc.LastXPGain("u1") != 0 {
		t.Error("transient xp gain survived reset")
	}
}
