package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"storeit/controllers"
	"storeit/services"
	"storeit/store"
	"storeit/utils"
)

// AuthConfig holds the bearer token settings shared by every protected group.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// ServiceContainer holds all services and dependencies
type ServiceContainer struct {
	AppDB       *mongo.Database
	AnalyticsDB *mongo.Database
	Auth        AuthConfig

	Activity      *services.ActivityService
	SearchHistory *services.SearchHistoryService
	Notifications *services.NotificationService
	Analytics     *services.AnalyticsService
	Files         *services.TrackedFileService
	Users         services.UserDirectory
}

// NewServiceContainer wires the stores and services. File metadata lives in
// appDB and analytics records in analyticsDB.
func NewServiceContainer(appDB, analyticsDB *mongo.Database, storage services.ObjectStorage, limits services.FileLimits, auth AuthConfig) *ServiceContainer {
	resolver := services.SessionResolver{}
	users := services.NewMongoUserDirectory(appDB, limits.MaxUserStorage)

	activityStore := store.NewMongoActivityStore(analyticsDB)
	searchStore := store.NewMongoSearchHistoryStore(analyticsDB)
	notificationStore := store.NewMongoNotificationStore(analyticsDB)

	activity := services.NewActivityService(activityStore, resolver)
	searches := services.NewSearchHistoryService(searchStore, resolver)
	notifications := services.NewNotificationService(notificationStore, users, resolver)
	analytics := services.NewAnalyticsService(activityStore, resolver)

	fileService := services.NewFileService(appDB, storage, limits)

	return &ServiceContainer{
		AppDB:         appDB,
		AnalyticsDB:   analyticsDB,
		Auth:          auth,
		Activity:      activity,
		SearchHistory: searches,
		Notifications: notifications,
		Analytics:     analytics,
		Files:         services.NewTrackedFileService(fileService, activity, searches, notifications),
		Users:         users,
	}
}

// SetupRoutesWithContainer configures all API routes using a service container
func SetupRoutesWithContainer(api *gin.RouterGroup, container *ServiceContainer) {
	analyticsController := controllers.NewAnalyticsController(container.Analytics, container.Activity, container.SearchHistory)
	notificationController := controllers.NewNotificationController(container.Notifications)
	fileController := controllers.NewFileController(container.Files)

	RegisterAnalyticsRoutes(api, container.Auth, analyticsController)
	RegisterNotificationRoutes(api, container.Auth, notificationController)
	RegisterFileRoutes(api, container.Auth, fileController)
}

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

// RegisterHealthRoutes adds the unauthenticated health check.
func RegisterHealthRoutes(r gin.IRoutes, ping Pinger) {
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		}

		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				utils.ErrorResponse(c, http.StatusServiceUnavailable, "Service degraded", status)
				return
			}
			status["database"] = "connected"
		}

		utils.SuccessResponse(c, "Service healthy", status)
	})
}
