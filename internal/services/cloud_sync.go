package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SmartEdu-Labs/network-service/internal/repositories"
)

// CloudSyncer coalesces profile mutations into one remote metadata write
// per quiescence window. Fields queued while a flush is pending are merged
// field-by-field into the buffer, so the write that eventually fires
// carries the union of everything queued since the last flush. Failures
// are logged and dropped; local state is never rolled back.
type CloudSyncer struct {
	users    repositories.UserRepository
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	pending map[string]map[string]any
	timers  map[string]*time.Timer
	closed  bool
}

func NewCloudSyncer(users repositories.UserRepository, interval time.Duration, logger *slog.Logger) *CloudSyncer {
	return &CloudSyncer{
		users:    users,
		logger:   logger,
		interval: interval,
		pending:  make(map[string]map[string]any),
		timers:   make(map[string]*time.Timer),
	}
}

// Queue merges fields into the user's pending buffer and restarts the
// debounce timer. The timer fires only after the window passes with no
// further Queue calls for that user.
func (s *CloudSyncer) Queue(userID string, fields map[string]any) {
	if len(fields) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	buf, ok := s.pending[userID]
	if !ok {
		buf = make(map[string]any, len(fields))
		s.pending[userID] = buf
	}
	for k, v := range fields {
		buf[k] = v
	}

	if timer, ok := s.timers[userID]; ok {
		timer.Stop()
	}
	s.timers[userID] = time.AfterFunc(s.interval, func() {
		s.fire(userID)
	})
}

// fire drains the buffer for one user and performs the remote write.
func (s *CloudSyncer) fire(userID string) {
	fields := s.take(userID)
	if len(fields) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.users.UpdateMetadata(ctx, userID, fields); err != nil {
		// No retry: the next mutation queues a fresh write anyway.
		s.logger.Error("cloud sync failed", "user_id", userID, "fields", len(fields), "error", err)
		return
	}

	s.logger.Debug("cloud sync flushed", "user_id", userID, "fields", len(fields))
}

// take removes and returns the pending buffer for a user.
func (s *CloudSyncer) take(userID string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := s.pending[userID]
	delete(s.pending, userID)
	if timer, ok := s.timers[userID]; ok {
		timer.Stop()
		delete(s.timers, userID)
	}
	return fields
}

// Flush writes any pending fields for a user immediately, bypassing the
// debounce window. Used on sign-out so queued work is not lost.
func (s *CloudSyncer) Flush(ctx context.Context, userID string) error {
	fields := s.take(userID)
	if len(fields) == 0 {
		return nil
	}

	if err := s.users.UpdateMetadata(ctx, userID, fields); err != nil {
		s.logger.Error("cloud sync flush failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}

// Pending reports whether a flush is queued for the user.
func (s *CloudSyncer) Pending(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[userID]) > 0
}

// Close stops all timers and flushes every pending buffer.
func (s *CloudSyncer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	userIDs := make([]string, 0, len(s.pending))
	for id := range s.pending {
		userIDs = append(userIDs, id)
	}
	for _, timer := range s.timers {
		timer.Stop()
	}
	s.timers = make(map[string]*time.Timer)
	s.mu.Unlock()

	var lastErr error
	for _, id := range userIDs {
		if err := s.Flush(ctx, id); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
