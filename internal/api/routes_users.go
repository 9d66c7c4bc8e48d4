package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/handlers"
	"github.com/charlesng35/fleetcn/internal/middleware"
	"github.com/charlesng35/fleetcn/internal/permissions"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler, checker middleware.PermissionChecker) {
	users := api.Group("/users")
	{
		users.GET("", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionView), handler.List)
		users.POST("", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionInsert), handler.Create)
		users.GET("/:id", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionView), handler.Get)
		users.PATCH("/:id", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionEdit), handler.Update)
		users.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionDelete), handler.Delete)
		users.POST("/:id/activate", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionEdit), handler.Activate)
		users.POST("/:id/deactivate", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionEdit), handler.Deactivate)
		users.POST("/:id/password", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionEdit), handler.ChangePassword)
		users.PUT("/:id/role", middleware.RequirePermission(checker, permissions.ResourcePermissions, permissions.ActionEdit), handler.AssignRole)
	}
}

func registerAuditRoutes(api *gin.RouterGroup, handler *handlers.AuditHandler, checker middleware.PermissionChecker) {
	api.GET("/audit", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionView), handler.List)
	api.GET("/audit/export", middleware.RequirePermission(checker, permissions.ResourceUsers, permissions.ActionView), handler.Export)
}
