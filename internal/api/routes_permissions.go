package api

import (
	"github.com/gin-gonic/gin"

	"github.com/medifixhq/medifix/internal/handlers"
	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/permissions"
)

func registerPermissionRoutes(api *gin.RouterGroup, handler *handlers.PermissionHandler, resolver *permissions.Resolver) {
	perms := api.Group("/permissions")
	{
		perms.GET("/my", handler.MyPermissions)

		perms.GET("/catalog", middleware.RequirePermission(resolver, "permissions.view"), handler.Catalog)
		perms.GET("/roles", middleware.RequirePermission(resolver, "permissions.view"), handler.ListRoles)
		perms.GET("/users/:userID", middleware.RequirePermission(resolver, "permissions.view"), handler.UserPermissions)

		perms.POST("/roles", middleware.RequirePermission(resolver, "permissions.manage"), handler.CreateRole)
		perms.PATCH("/roles/:id", middleware.RequirePermission(resolver, "permissions.manage"), handler.UpdateRole)
		perms.DELETE("/roles/:id", middleware.RequirePermission(resolver, "permissions.manage"), handler.DeleteRole)
		perms.PUT("/roles/:id/entries", middleware.RequirePermission(resolver, "permissions.manage"), handler.SetRoleEntry)
		perms.DELETE("/roles/:id/entries/:permissionID", middleware.RequirePermission(resolver, "permissions.manage"), handler.RemoveRoleEntry)

		perms.PUT("/users/:userID/overrides", middleware.RequirePermission(resolver, "permissions.manage"), handler.SetUserOverride)
		perms.DELETE("/users/:userID/overrides/:permissionID", middleware.RequirePermission(resolver, "permissions.manage"), handler.RemoveUserOverride)
		perms.POST("/users/:userID/roles", middleware.RequirePermission(resolver, "permissions.manage"), handler.AssignRole)
		perms.DELETE("/users/:userID/roles/:roleID", middleware.RequirePermission(resolver, "permissions.manage"), handler.RevokeRole)
	}
}
