package api

import (
	"github.com/gin-gonic/gin"

	"github.com/medifixhq/medifix/internal/handlers"
	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/permissions"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler, resolver *permissions.Resolver) {
	group := api.Group("/notifications")
	group.Use(middleware.RequirePermission(resolver, "notifications.view"))
	{
		group.GET("", handler.List)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/:id/read", handler.MarkRead)
		group.POST("/:id/unread", handler.MarkUnread)
		group.DELETE("/:id", handler.Delete)
	}
}
