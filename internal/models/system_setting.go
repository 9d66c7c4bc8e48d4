package models

import "time"

// SystemSetting is a key/value pair owned by the server itself, such as the time of the last
// expiry scan.
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(128)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
