package controllers

import (
	"github.com/gin-gonic/gin"

	"storeit/models"
	"storeit/services"
	"storeit/utils"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
	activity  *services.ActivityService
	searches  *services.SearchHistoryService
}

func NewAnalyticsController(analytics *services.AnalyticsService, activity *services.ActivityService, searches *services.SearchHistoryService) *AnalyticsController {
	return &AnalyticsController{
		analytics: analytics,
		activity:  activity,
		searches:  searches,
	}
}

// GetDashboard answers with data null when there is nothing to show.
func (ac *AnalyticsController) GetDashboard(c *gin.Context) {
	utils.SuccessResponse(c, "Dashboard retrieved", ac.analytics.GetDashboard(c.Request.Context()))
}

func (ac *AnalyticsController) GetSummary(c *gin.Context) {
	period := models.SummaryPeriod(c.DefaultQuery("period", string(models.PeriodWeekly)))
	if _, ok := period.Window(); !ok {
		utils.BadRequestResponse(c, "Invalid period", "period must be one of daily, weekly, monthly")
		return
	}

	utils.SuccessResponse(c, "Activity summary retrieved", ac.analytics.GetActivitySummary(c.Request.Context(), period))
}

func (ac *AnalyticsController) GetActivity(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), 0)
	utils.SuccessResponse(c, "Activity retrieved", ac.activity.GetUserActivityLogs(c.Request.Context(), limit))
}

func (ac *AnalyticsController) GetFileActivity(c *gin.Context) {
	fileID := c.Param("id")
	if fileID == "" {
		utils.BadRequestResponse(c, "File ID is required", nil)
		return
	}

	limit := utils.ParseLimit(c.Query("limit"), 0)
	utils.SuccessResponse(c, "File activity retrieved", ac.activity.GetFileActivityLogs(c.Request.Context(), fileID, limit))
}

func (ac *AnalyticsController) GetSearchHistory(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), 0)
	utils.SuccessResponse(c, "Search history retrieved", ac.searches.GetSearchHistory(c.Request.Context(), limit))
}

func (ac *AnalyticsController) GetPopularSearches(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), 0)
	utils.SuccessResponse(c, "Popular searches retrieved", ac.searches.GetPopularSearchQueries(c.Request.Context(), limit))
}

func (ac *AnalyticsController) GetSearchStats(c *gin.Context) {
	utils.SuccessResponse(c, "Search analytics retrieved", ac.searches.GetSearchAnalytics(c.Request.Context()))
}
