package api

import (
	"github.com/gin-gonic/gin"

	"github.com/medifixhq/medifix/internal/handlers"
	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/permissions"
)

func registerWorkOrderRoutes(api *gin.RouterGroup, handler *handlers.WorkOrderHandler, resolver *permissions.Resolver) {
	group := api.Group("/work-orders")
	{
		group.GET("", middleware.RequirePermission(resolver, "work_orders.view"), handler.List)
		group.POST("", middleware.RequirePermission(resolver, "work_orders.create"), handler.Create)
		group.GET("/:id", middleware.RequirePermission(resolver, "work_orders.view"), handler.Get)
		group.PATCH("/:id", middleware.RequirePermission(resolver, "work_orders.update"), handler.Update)

		// Per-action role checks happen inside the service against the
		// record's hospital, so the route gate only needs view access.
		group.GET("/:id/actions", middleware.RequirePermission(resolver, "work_orders.view"), handler.Actions)
		group.POST("/:id/actions", middleware.RequirePermission(resolver, "work_orders.view"), handler.PerformAction)

		group.POST("/:id/reassign", middleware.RequirePermission(resolver, "work_orders.reassign"), handler.Reassign)
		group.POST("/:id/cancel", middleware.RequirePermission(resolver, "work_orders.update"), handler.Cancel)
	}
}
