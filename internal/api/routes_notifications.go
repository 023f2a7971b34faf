package api

import (
	"github.com/gin-gonic/gin"

	"github.com/eventra/eventra/internal/handlers"
)

func registerNotificationRoutes(rg *gin.RouterGroup, handler *handlers.NotificationHandler) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.POST("/read-all", handler.MarkAllRead)
		notifications.POST("/:id/read", handler.MarkRead)
		notifications.POST("/:id/unread", handler.MarkUnread)
		notifications.DELETE("/:id", handler.Delete)
	}
}
