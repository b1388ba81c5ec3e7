package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SmartEdu-Labs/network-service/internal/config"
	"github.com/SmartEdu-Labs/network-service/internal/models"
	"github.com/SmartEdu-Labs/network-service/internal/repositories"
	"github.com/SmartEdu-Labs/network-service/internal/services"
	"github.com/SmartEdu-Labs/network-service/internal/utils"
	"github.com/SmartEdu-Labs/network-service/internal/validator"
)

type HandlerManager struct {
	sessionHandler      *SessionHandler
	profileHandler      *ProfileHandler
	feedHandler         *FeedHandler
	eventHandler        *EventHandler
	ventureHandler      *VentureHandler
	directoryHandler    *DirectoryHandler
	notificationHandler *NotificationHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		sessionHandler:      NewSessionHandler(serviceManager.Session(), logger),
		profileHandler:      NewProfileHandler(serviceManager.Profile(), validator, logger),
		feedHandler:         NewFeedHandler(serviceManager.Feed(), validator, logger),
		eventHandler:        NewEventHandler(serviceManager.Event(), logger),
		ventureHandler:      NewVentureHandler(serviceManager.Venture(), validator, logger),
		directoryHandler:    NewDirectoryHandler(serviceManager.Directory(), userRepo, logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware()) // Apply authentication to all API routes
	{
		// Session routes
		session := v1.Group("/session")
		{
			session.POST("/bootstrap", hm.sessionHandler.Bootstrap)
			session.POST("/signout", hm.sessionHandler.SignOut)
		}

		// Profile routes
		profile := v1.Group("/profile")
		{
			profile.GET("", hm.profileHandler.GetProfile)
			profile.PUT("", hm.profileHandler.UpdateProfile)
			profile.POST("/xp", hm.profileHandler.AddXP)
			profile.GET("/xp/last", hm.profileHandler.GetLastXPGain)
			profile.PUT("/interests", hm.profileHandler.UpdateInterests)
			profile.PUT("/preferences", hm.profileHandler.UpdatePreferences)
			profile.PUT("/social-profiles", hm.profileHandler.UpdateSocialProfiles)

			// Courses
			profile.POST("/courses", hm.profileHandler.EnrollCourse)
			profile.GET("/courses/search", hm.profileHandler.SearchCourses)
			profile.POST("/courses/:id/complete", hm.profileHandler.CompleteCourse)

			// Experience
			profile.PUT("/experience", hm.profileHandler.UpdateExperience)
			profile.POST("/experience/suggest", hm.profileHandler.SuggestExperienceDescription)

			// Badges - awarding is restricted to platform actors
			profile.POST("/badges", hm.authMiddleware.RequireRoleMiddleware(models.RoleSchool, models.RoleAdmin), hm.profileHandler.AwardBadge)

			// Mentorship
			profile.POST("/mentorship-requests", hm.profileHandler.SendMentorshipRequest)
			profile.DELETE("/mentorship-requests/:id", hm.profileHandler.WithdrawMentorshipRequest)
		}

		// Feed routes
		feed := v1.Group("/feed")
		{
			feed.GET("/posts", hm.feedHandler.ListPosts)
			feed.POST("/posts", hm.feedHandler.CreatePost)
			feed.POST("/posts/:id/votes", hm.feedHandler.CastVote)
			feed.POST("/posts/:id/comments", hm.feedHandler.CreateComment)
			feed.POST("/posts/:id/comments/toggle", hm.feedHandler.ToggleComments)
			feed.GET("/stats", hm.feedHandler.GetFeedStats)
		}

		// Event routes
		events := v1.Group("/events")
		{
			events.GET("", hm.eventHandler.ListEvents)
			events.GET("/discover", hm.eventHandler.DiscoverNearby)
			events.POST("/:id/save", hm.eventHandler.ToggleSaveEvent)
			events.POST("/:id/register", hm.eventHandler.ToggleRegisterEvent)
		}

		// Venture routes
		ventures := v1.Group("/ventures")
		{
			ventures.POST("/analyze", hm.ventureHandler.AnalyzeVenture)
		}

		// Directory routes
		directory := v1.Group("/directory")
		{
			directory.GET("/students", hm.directoryHandler.ListStudents)
			directory.GET("/students/search", hm.directoryHandler.SearchStudents)
			directory.GET("/students/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.directoryHandler.ExportStudents)
			directory.GET("/students/:id", hm.directoryHandler.GetStudent)
			directory.GET("/mentor-recommendation", hm.directoryHandler.RecommendMentor)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.DELETE("/:id", hm.notificationHandler.DismissNotification)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "network-service",
		})
	})
}
