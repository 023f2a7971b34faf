package api

import (
	"github.com/gin-gonic/gin"

	"github.com/eventra/eventra/internal/handlers"
)

func registerTeamRoutes(rg *gin.RouterGroup, handler *handlers.TeamHandler) {
	teams := rg.Group("/teams")
	{
		teams.POST("", handler.Create)
		teams.GET("/:id", handler.Get)
		teams.PATCH("/:id", handler.Update)
		teams.GET("/:id/members", handler.ListMembers)
		teams.POST("/:id/members", handler.AddMember)
		teams.DELETE("/:id/members/:userID", handler.RemoveMember)
	}
}
