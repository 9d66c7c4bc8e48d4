package models

import "time"

// Menu mirrors a protected resource from the permission registry. Rows are written by the
// registry sync on start-up and referenced by role permission records.
type Menu struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Path        string    `json:"path"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	SortOrder   int       `gorm:"default:0;index" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
