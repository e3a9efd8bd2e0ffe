package notification

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	notificationGroup := r.Group("/notifications")
	{
		notificationGroup.GET("", h.ListNotifications)
		notificationGroup.GET("/:id", h.GetNotification)
		notificationGroup.POST("/:id/replay", h.ReplayNotification)
	}
}
