package api

import (
	"github.com/gin-gonic/gin"

	"github.com/eventra/eventra/internal/handlers"
)

func registerCalendarRoutes(rg *gin.RouterGroup, handler *handlers.CalendarHandler) {
	calendar := rg.Group("/calendar")
	{
		calendar.POST("/entries", handler.Create)
		calendar.GET("/entries", handler.List)
		calendar.GET("/entries/:id", handler.Get)
		calendar.PATCH("/entries/:id", handler.Update)
		calendar.DELETE("/entries/:id", handler.Delete)
		calendar.POST("/entries/:id/notify", handler.Notify)
	}
}
