package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/SmartEdu-Labs/network-service/internal/cache"
	"github.com/SmartEdu-Labs/network-service/internal/config"
	"github.com/SmartEdu-Labs/network-service/internal/events"
	"github.com/SmartEdu-Labs/network-service/internal/genai"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Sync config.SyncConfig

	// Global settings
	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db         *gorm.DB
	repo       repositories.Repository
	cacheMgr   *cache.CacheManager
	publisher  events.EventPublisher
	subscriber message.Subscriber
	ai         *genai.Client
	logger     *slog.Logger
	validator  *validator.Validator
	config     ServiceManagerConfig

	// Service instances
	syncer              *CloudSyncer
	sessionService      SessionService
	profileService      ProfileService
	feedService         FeedService
	notificationService NotificationService
	eventService        EventService
	ventureService      VentureService
	directoryService    DirectoryService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, cacheMgr *cache.CacheManager, publisher events.EventPublisher, subscriber message.Subscriber, ai *genai.Client, logger *slog.Logger, v *validator.Validator, cfg ServiceManagerConfig) ServiceManager {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}
	return &serviceManager{
		db:         db,
		repo:       repo,
		cacheMgr:   cacheMgr,
		publisher:  publisher,
		subscriber: subscriber,
		ai:         ai,
		logger:     logger,
		validator:  v,
		config:     cfg,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.syncer = NewCloudSyncer(sm.repo.User(), sm.config.Sync.DebounceInterval, sm.logger)

	sm.notificationService = NewNotificationService(sm.config.Sync.NotificationLimit, sm.config.Sync.NotificationTTL, sm.logger)
	sm.logger.Info("Notification service initialized")

	sm.profileService = NewProfileService(sm.cacheMgr.Local, sm.syncer, sm.notificationService, sm.ai, sm.validator, sm.config.Sync, sm.logger)
	sm.logger.Info("Profile service initialized")

	sm.sessionService = NewSessionService(sm.repo.User(), sm.cacheMgr.Local, sm.profileService, sm.syncer, sm.logger)
	sm.logger.Info("Session service initialized")

	sm.feedService = NewFeedService(sm.repo, sm.db, sm.publisher, sm.subscriber, sm.validator, sm.logger)
	sm.logger.Info("Feed service initialized")

	sm.eventService = NewEventService(sm.repo, sm.db, sm.profileService, sm.notificationService, sm.ai, sm.logger)
	sm.logger.Info("Event service initialized")

	sm.ventureService = NewVentureService(sm.ai, sm.profileService, sm.validator, sm.logger)
	sm.logger.Info("Venture service initialized")

	sm.directoryService = NewDirectoryService(sm.repo, sm.ai, sm.logger)
	sm.logger.Info("Directory service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.sessionService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.profileService
}

func (sm *serviceManager) Feed() FeedService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.feedService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.notificationService
}

func (sm *serviceManager) Event() EventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.eventService
}

func (sm *serviceManager) Venture() VentureService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.ventureService
}

func (sm *serviceManager) Directory() DirectoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.directoryService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	if err := sm.cacheMgr.HealthCheck(ctx); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	// Pending sync buffers are flushed before timers are torn down
	if sm.syncer != nil {
		if err := sm.syncer.Close(ctx); err != nil {
			sm.logger.Error("Failed to flush cloud syncer", "error", err)
		}
	}
	if sm.profileService != nil {
		sm.profileService.Shutdown()
	}
	if sm.notificationService != nil {
		sm.notificationService.Shutdown()
	}
	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
