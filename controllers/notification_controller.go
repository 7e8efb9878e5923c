package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"storeit/services"
	"storeit/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) GetNotifications(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), 0)
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))

	list := nc.notifications.GetUserNotifications(c.Request.Context(), limit, unreadOnly)
	utils.SuccessResponse(c, "Notifications retrieved", list)
}

func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	count := nc.notifications.GetUnreadCount(c.Request.Context())
	utils.SuccessResponse(c, "Unread count retrieved", gin.H{"count": count})
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	if !nc.notifications.MarkNotificationAsRead(c.Request.Context(), c.Param("id")) {
		utils.NotFoundResponse(c, "Notification not found or already read")
		return
	}

	utils.SuccessResponse(c, "Notification marked as read", gin.H{"id": c.Param("id"), "read": true})
}
