package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/SmartEdu-Labs/network-service/internal/models"
)

func TestNotificationService_QueueCap(t *testing.T) {
	svc := NewNotificationService(3, time.Minute, testLogger())
	defer svc.Shutdown()

	for i := 0; i < 5; i++ {
		svc.Push("u1", fmt.Sprintf("message %d", i), models.SeverityInfo)
	}

	queue := svc.List("u1")
	if len(queue) != 3 {
		t.Fatalf("expected queue capped at 3, got %d", len(queue))
	}

	// Newest first
	if queue[0].Message != "message 4" {
		t.Errorf("expected newest entry first, got %q", queue[0].Message)
	}
	if queue[2].Message != "message 2" {
		t.Errorf("expected oldest surviving entry last, got %q", queue[2].Message)
	}
}

func TestNotificationService_Expiry(t *testing.T) {
	svc := NewNotificationService(3, 40*time.Millisecond, testLogger())
	defer svc.Shutdown()

	svc.Push("u1", "short lived", models.SeveritySuccess)
	if got := len(svc.List("u1")); got != 1 {
		t.Fatalf("expected 1 entry before expiry, got %d", got)
	}

	time.Sleep(100 * time.Millisecond)
	if got := len(svc.List("u1")); got != 0 {
		t.Fatalf("expected entry to expire, still have %d", got)
	}
}

func TestNotificationService_DismissIdempotent(t *testing.T) {
	svc := NewNotificationService(3, time.Minute, testLogger())
	defer svc.Shutdown()

	n := svc.Push("u1", "dismiss me", models.SeverityWarning)

	svc.Dismiss("u1", n.ID)
	svc.Dismiss("u1", n.ID) // second removal is a no-op
	svc.Dismiss("u1", "never-existed")

	if got := len(svc.List("u1")); got != 0 {
		t.Fatalf("expected empty queue, got %d", got)
	}
}

func TestNotificationService_PerUserQueues(t *testing.T) {
	svc := NewNotificationService(3, time.Minute, testLogger())
	defer svc.Shutdown()

	svc.Push("u1", "for u1", models.SeverityInfo)
	svc.Push("u2", "for u2", models.SeverityInfo)

	if got := len(svc.List("u1")); got != 1 {
		t.Errorf("u1 queue length = %d, want 1", got)
	}
	if got := len(svc.List("u2")); got != 1 {
		t.Errorf("u2 queue length = %d, want 1", got)
	}
	if svc.List("u1")[0].Message != "for u1" {
		t.Errorf("queues leaked across users")
	}
}
