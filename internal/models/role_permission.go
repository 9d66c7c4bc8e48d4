package models

// RolePermission grants a role actions on one menu. A role holds at most one record per menu.
type RolePermission struct {
	BaseModel

	RoleID string `gorm:"type:uuid;not null;uniqueIndex:idx_role_menu,priority:1" json:"role_id"`
	MenuID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_role_menu,priority:2;index" json:"menu_id"`
	Menu   *Menu  `gorm:"foreignKey:MenuID" json:"menu,omitempty"`

	CanView   bool `gorm:"default:false" json:"can_view"`
	CanInsert bool `gorm:"default:false" json:"can_insert"`
	CanEdit   bool `gorm:"default:false" json:"can_edit"`
	CanDelete bool `gorm:"default:false" json:"can_delete"`
	CanAll    bool `gorm:"default:false" json:"can_all"`
}

// TableName overrides the default table name for GORM.
func (RolePermission) TableName() string {
	return "role_permissions"
}
