package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/handlers"
	"github.com/charlesng35/fleetcn/internal/middleware"
	"github.com/charlesng35/fleetcn/internal/permissions"
)

func registerVehicleRoutes(api *gin.RouterGroup, handler *handlers.VehicleHandler, checker middleware.PermissionChecker) {
	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("", middleware.RequirePermission(checker, permissions.ResourceVehicles, permissions.ActionView), handler.List)
		vehicles.GET("/stats", middleware.RequirePermission(checker, permissions.ResourceDashboard, permissions.ActionView), handler.Stats)
		vehicles.POST("", middleware.RequirePermission(checker, permissions.ResourceVehicles, permissions.ActionInsert), handler.Create)
		vehicles.GET("/:id", middleware.RequirePermission(checker, permissions.ResourceVehicles, permissions.ActionView), handler.Get)
		vehicles.PATCH("/:id", middleware.RequirePermission(checker, permissions.ResourceVehicles, permissions.ActionEdit), handler.Update)
		vehicles.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceVehicles, permissions.ActionDelete), handler.Delete)
	}
}

func registerEmployeeRoutes(api *gin.RouterGroup, handler *handlers.EmployeeHandler, checker middleware.PermissionChecker) {
	employees := api.Group("/employees")
	{
		employees.GET("", middleware.RequirePermission(checker, permissions.ResourceEmployees, permissions.ActionView), handler.List)
		employees.POST("", middleware.RequirePermission(checker, permissions.ResourceEmployees, permissions.ActionInsert), handler.Create)
		employees.GET("/:id", middleware.RequirePermission(checker, permissions.ResourceEmployees, permissions.ActionView), handler.Get)
		employees.PATCH("/:id", middleware.RequirePermission(checker, permissions.ResourceEmployees, permissions.ActionEdit), handler.Update)
		employees.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceEmployees, permissions.ActionDelete), handler.Delete)
	}
}

func registerServiceRecordRoutes(api *gin.RouterGroup, handler *handlers.ServiceRecordHandler, checker middleware.PermissionChecker) {
	records := api.Group("/services")
	{
		records.GET("", middleware.RequirePermission(checker, permissions.ResourceServices, permissions.ActionView), handler.List)
		records.POST("", middleware.RequirePermission(checker, permissions.ResourceServices, permissions.ActionInsert), handler.Create)
		records.GET("/:id", middleware.RequirePermission(checker, permissions.ResourceServices, permissions.ActionView), handler.Get)
		records.PATCH("/:id", middleware.RequirePermission(checker, permissions.ResourceServices, permissions.ActionEdit), handler.Update)
		records.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceServices, permissions.ActionDelete), handler.Delete)
	}
}

func registerCertificateRoutes(api *gin.RouterGroup, handler *handlers.CertificateHandler, checker middleware.PermissionChecker) {
	certs := api.Group("/certificates")
	{
		certs.GET("", middleware.RequirePermission(checker, permissions.ResourceCertificates, permissions.ActionView), handler.List)
		certs.GET("/expiring", middleware.RequirePermission(checker, permissions.ResourceCertificates, permissions.ActionView), handler.Expiring)
		certs.POST("", middleware.RequirePermission(checker, permissions.ResourceCertificates, permissions.ActionInsert), handler.Create)
		certs.GET("/:id", middleware.RequirePermission(checker, permissions.ResourceCertificates, permissions.ActionView), handler.Get)
		certs.PATCH("/:id", middleware.RequirePermission(checker, permissions.ResourceCertificates, permissions.ActionEdit), handler.Update)
		certs.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceCertificates, permissions.ActionDelete), handler.Delete)
	}
}

func registerLicenseRoutes(api *gin.RouterGroup, handler *handlers.LicenseHandler, checker middleware.PermissionChecker) {
	licenses := api.Group("/licenses")
	{
		licenses.GET("", middleware.RequirePermission(checker, permissions.ResourceLicenses, permissions.ActionView), handler.List)
		licenses.GET("/expiring", middleware.RequirePermission(checker, permissions.ResourceLicenses, permissions.ActionView), handler.Expiring)
		licenses.POST("", middleware.RequirePermission(checker, permissions.ResourceLicenses, permissions.ActionInsert), handler.Create)
		licenses.GET("/:id", middleware.RequirePermission(checker, permissions.ResourceLicenses, permissions.ActionView), handler.Get)
		licenses.PATCH("/:id", middleware.RequirePermission(checker, permissions.ResourceLicenses, permissions.ActionEdit), handler.Update)
		licenses.DELETE("/:id", middleware.RequirePermission(checker, permissions.ResourceLicenses, permissions.ActionDelete), handler.Delete)
	}
}
