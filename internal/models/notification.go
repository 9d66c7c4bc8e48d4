package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is an inbox entry for one user. Entries raised about a fleet record carry the
// record's resource and id.
type Notification struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index:idx_notification_inbox,priority:1;index:idx_notification_subject,priority:1" json:"user_id"`
	Type   string `gorm:"type:varchar(64);not null;index:idx_notification_subject,priority:2" json:"type"`

	ResourceType string `gorm:"type:varchar(64)" json:"resource_type,omitempty"`
	ResourceID   string `gorm:"type:varchar(64);index:idx_notification_subject,priority:3" json:"resource_id,omitempty"`

	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	Severity  string         `gorm:"type:varchar(16);not null;default:'info'" json:"severity"`
	ActionURL string         `gorm:"type:text" json:"action_url,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`

	IsRead bool       `gorm:"not null;default:false;index:idx_notification_inbox,priority:2" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// ValidSeverity reports whether s is one of the known severities.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}
