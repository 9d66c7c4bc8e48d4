package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
)

// seedRolePermissions inserts grants for menus the role has no record for yet. Existing
// records are left untouched so administrator edits survive restarts.
func seedRolePermissions(db *gorm.DB, roleID string, grants []models.RolePermission) error {
	if len(grants) == 0 {
		return nil
	}

	var role models.Role
	if err := db.Where("id = ?", roleID).First(&role).Error; err != nil {
		return err
	}

	var existing []models.RolePermission
	if err := db.Where("role_id = ?", roleID).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]struct{}, len(existing))
	for _, perm := range existing {
		current[perm.MenuID] = struct{}{}
	}

	toCreate := make([]models.RolePermission, 0, len(grants))
	for _, grant := range grants {
		if _, ok := current[grant.MenuID]; ok {
			continue
		}
		grant.RoleID = roleID
		toCreate = append(toCreate, grant)
		current[grant.MenuID] = struct{}{}
	}
	if len(toCreate) == 0 {
		return nil
	}

	return db.Create(&toCreate).Error
}
