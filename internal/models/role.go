package models

// Identifiers of the roles seeded on first start.
const (
	RoleAdministratorID = "00000000-0000-4000-8000-000000000001"
	RoleOperatorID      = "00000000-0000-4000-8000-000000000002"
)

type Role struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`

	Permissions []RolePermission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
	Users       []User           `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}
