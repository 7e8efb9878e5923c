package routes

import (
	"github.com/gin-gonic/gin"

	"storeit/controllers"
	"storeit/middleware"
)

func RegisterNotificationRoutes(rg *gin.RouterGroup, auth AuthConfig, notificationController *controllers.NotificationController) {
	notifications := rg.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(auth.JWTSecret, auth.Issuer))
	{
		notifications.GET("", notificationController.GetNotifications) // ?limit=&unread=
		notifications.GET("/unread-count", notificationController.GetUnreadCount)
		notifications.PATCH("/:id/read", notificationController.MarkAsRead)
	}
}
