package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/handlers"
	"github.com/charlesng35/fleetcn/internal/middleware"
	"github.com/charlesng35/fleetcn/internal/permissions"
)

func registerPermissionRoutes(api *gin.RouterGroup, handler *handlers.PermissionHandler, checker middleware.PermissionChecker) {
	perms := api.Group("/permissions")
	{
		// Self-scoped; any authenticated user may read their own snapshot.
		perms.GET("/my", handler.MyPermissions)
		perms.GET("/menus", handler.Menus)
		perms.GET("/check", handler.Check)

		perms.GET("/registry", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionView), handler.Registry)
		perms.GET("/roles", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionView), handler.ListRoles)
		perms.POST("/roles", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionInsert), handler.CreateRole)
		perms.GET("/roles/:id", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionView), handler.GetRole)
		perms.PATCH("/roles/:id", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionEdit), handler.UpdateRole)
		perms.DELETE("/roles/:id", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionDelete), handler.DeleteRole)
		perms.GET("/roles/:id/permissions", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionView), handler.RolePermissions)
		perms.PUT("/roles/:id/permissions", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionEdit), handler.SetRolePermissions)
	}
}

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler, checker middleware.PermissionChecker, stream bool) {
	group := api.Group("/notifications")
	{
		group.GET("", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionView), handler.List)
		group.GET("/unread-count", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionView), handler.UnreadCount)
		group.POST("/read-all", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionEdit), handler.MarkAllRead)

		group.POST("", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionInsert), handler.Create)
		group.POST("/:id/read", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionEdit), handler.MarkRead)
		group.POST("/:id/unread", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionEdit), handler.MarkUnread)
		group.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionEdit), handler.Delete)

		if stream {
			group.GET("/stream", middleware.RequirePermission(checker, permissions.ResourceNotifications, permissions.ActionView), handler.Stream)
		}
	}
}
