package services

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestCloudSyncer_DebounceMergesFields(t *testing.T) {
	users := newMockUserRepository()
	syncer := NewCloudSyncer(users, 50*time.Millisecond, testLogger())

	// Several mutations inside one quiescence window
	syncer.Queue("u1", map[string]any{"xp": 100})
	syncer.Queue("u1", map[string]any{"level": 2})
	syncer.Queue("u1", map[string]any{"xp": 150, "tagline": "Builder"})

	time.Sleep(150 * time.Millisecond)

	writes := users.metadataWrites()
	if len(writes) != 1 {
		t.Fatalf("expected exactly 1 remote write, got %d", len(writes))
	}

	fields := writes[0].fields
	if fields["xp"] != 150 {
		t.Errorf("expected last xp value to win, got %v", fields["xp"])
	}
	if fields["level"] != 2 {
		t.Errorf("expected level from earlier queue call, got %v", fields["level"])
	}
	if fields["tagline"] != "Builder" {
		t.Errorf("expected tagline in merged write, got %v", fields["tagline"])
	}
}

func TestCloudSyncer_TimerResetsOnEachQueue(t *testing.T) {
	users := newMockUserRepository()
	syncer := NewCloudSyncer(users, 60*time.Millisecond, testLogger())

	// Keep queueing faster than the window; nothing should flush yet
	for i := 0; i < 4; i++ {
		syncer.Queue("u1", map[string]any{"xp": i})
		time.Sleep(30 * time.Millisecond)
	}

	if writes := users.metadataWrites(); len(writes) != 0 {
		t.Fatalf("flush fired before quiescence, got %d writes", len(writes))
	}

	time.Sleep(120 * time.Millisecond)
	if writes := users.metadataWrites(); len(writes) != 1 {
		t.Fatalf("expected 1 write after quiescence, got %d", len(writes))
	}
}

func TestCloudSyncer_FlushBypassesWindow(t *testing.T) {
	users := newMockUserRepository()
	syncer := NewCloudSyncer(users, time.Hour, testLogger())

	syncer.Queue("u1", map[string]any{"xp": 10})
	if err := syncer.Flush(context.Background(), "u1"); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if writes := users.metadataWrites(); len(writes) != 1 {
		t.Fatalf("expected immediate write, got %d", len(writes))
	}
	if syncer.Pending("u1") {
		t.Error("buffer should be empty after flush")
	}
}

func TestCloudSyncer_FailureDoesNotRetry(t *testing.T) {
	users := newMockUserRepository()
	users.failNext = true
	syncer := NewCloudSyncer(users, 30*time.Millisecond, testLogger())

	syncer.Queue("u1", map[string]any{"xp": 10})
	time.Sleep(100 * time.Millisecond)

	if syncer.Pending("u1") {
		t.Error("failed flush must drop the buffer, not requeue it")
	}
	if writes := users.metadataWrites(); len(writes) != 0 {
		t.Fatalf("expected no successful writes, got %d", len(writes))
	}
}

func TestCloudSyncer_PerUserBuffers(t *testing.T) {
	users := newMockUserRepository()
	syncer := NewCloudSyncer(users, 40*time.Millisecond, testLogger())

	syncer.Queue("u1", map[string]any{"xp": 1})
	syncer.Queue("u2", map[string]any{"xp": 2})

	time.Sleep(120 * time.Millisecond)

	writes := users.metadataWrites()
	if len(writes) != 2 {
		t.Fatalf("expected one write per user, got %d", len(writes))
	}
	seen := map[string]bool{}
	for _, w := range writes {
		seen[w.userID] = true
	}
	if !seen["u1"] || !seen["u2"] {
		t.Errorf("expected writes for both users, got %v", seen)
	}
}
