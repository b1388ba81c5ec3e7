package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SmartEdu-Labs/network-service/internal/models"
)

// notificationService keeps a short, self-expiring toast queue per user:
// newest first, at most `limit` entries, each entry removed `ttl` after it
// was pushed by its own timer. Removal is idempotent so an expiry firing
// after a manual dismiss is a no-op.
type notificationService struct {
	limit  int
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	queues map[string][]models.Notification
	timers map[string]*time.Timer // keyed by notification id
}

func NewNotificationService(limit int, ttl time.Duration, logger *slog.Logger) NotificationService {
	return &notificationService{
		limit:  limit,
		ttl:    ttl,
		logger: logger,
		queues: make(map[string][]models.Notification),
		timers: make(map[string]*time.Timer),
	}
}

func (s *notificationService) Push(userID, message string, severity models.NotificationSeverity) models.Notification {
	n := models.Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		Time:     time.Now().Format(time.RFC3339),
	}

	s.mu.Lock()
	queue := append([]models.Notification{n}, s.queues[userID]...)

	// Oldest entries fall off the end; their timers become dangling
	// expirations, which Dismiss tolerates.
	if len(queue) > s.limit {
		for _, dropped := range queue[s.limit:] {
			s.stopTimerLocked(dropped.ID)
		}
		queue = queue[:s.limit]
	}
	s.queues[userID] = queue

	s.timers[n.ID] = time.AfterFunc(s.ttl, func() {
		s.Dismiss(userID, n.ID)
	})
	s.mu.Unlock()

	s.logger.Debug("notification pushed", "user_id", userID, "severity", severity)
	return n
}

func (s *notificationService) Dismiss(userID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked(id)

	queue := s.queues[userID]
	for i, n := range queue {
		if n.ID == id {
			s.queues[userID] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
	// Already gone: expiry raced a manual dismiss.
}

func (s *notificationService) List(userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[userID]
	out := make([]models.Notification, len(queue))
	copy(out, queue)
	return out
}

func (s *notificationService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.queues = make(map[string][]models.Notification)
}

func (s *notificationService) stopTimerLocked(id string) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}
