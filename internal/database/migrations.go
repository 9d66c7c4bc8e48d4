package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/permissions"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Menu{},
		&models.RolePermission{},
		&models.Employee{},
		&models.Vehicle{},
		&models.ServiceRecord{},
		&models.Certificate{},
		&models.License{},
		&models.Notification{},
		&models.AuditLog{},
		&models.SystemSetting{},
	)
}

// SeedData syncs the menu registry and populates the default roles with their permissions.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}

	roles := []models.Role{
		{
			BaseModel:   models.BaseModel{ID: models.RoleAdministratorID},
			Name:        "Administrator",
			Description: "Full access to every menu",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: models.RoleOperatorID},
			Name:        "Operator",
			Description: "Day-to-day fleet operations",
			IsSystem:    true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	adminGrants := make([]models.RolePermission, 0)
	for _, res := range permissions.List() {
		adminGrants = append(adminGrants, models.RolePermission{MenuID: res.ID, CanAll: true})
	}
	if err := seedRolePermissions(db, models.RoleAdministratorID, adminGrants); err != nil {
		return err
	}

	return seedRolePermissions(db, models.RoleOperatorID, operatorGrants())
}

func operatorGrants() []models.RolePermission {
	fleet := []string{
		permissions.ResourceVehicles,
		permissions.ResourceEmployees,
		permissions.ResourceServices,
		permissions.ResourceCertificates,
		permissions.ResourceLicenses,
	}

	grants := []models.RolePermission{
		{MenuID: permissions.ResourceDashboard, CanView: true},
		{MenuID: permissions.ResourceNotifications, CanView: true, CanEdit: true},
	}
	for _, id := range fleet {
		grants = append(grants, models.RolePermission{MenuID: id, CanView: true, CanInsert: true, CanEdit: true})
	}
	return grants
}
