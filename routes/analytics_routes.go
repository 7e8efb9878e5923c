package routes

import (
	"github.com/gin-gonic/gin"

	"storeit/controllers"
	"storeit/middleware"
)

func RegisterAnalyticsRoutes(rg *gin.RouterGroup, auth AuthConfig, analyticsController *controllers.AnalyticsController) {
	analytics := rg.Group("/analytics")
	analytics.Use(middleware.AuthMiddleware(auth.JWTSecret, auth.Issuer))
	{
		analytics.GET("/dashboard", analyticsController.GetDashboard)
		analytics.GET("/summary", analyticsController.GetSummary) // ?period=daily|weekly|monthly
		analytics.GET("/activity", analyticsController.GetActivity)
		analytics.GET("/files/:id/activity", analyticsController.GetFileActivity)

		analytics.GET("/search/history", analyticsController.GetSearchHistory)
		analytics.GET("/search/popular", analyticsController.GetPopularSearches)
		analytics.GET("/search/stats", analyticsController.GetSearchStats)
	}
}
