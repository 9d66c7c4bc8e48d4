package models

import "time"

// ServiceRecord captures a maintenance or repair service performed on a vehicle.
type ServiceRecord struct {
	BaseModel

	VehicleID   string   `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle     *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Type        string   `gorm:"type:varchar(64);not null;index" json:"type"`
	Description string   `gorm:"type:text" json:"description"`
	Provider    string   `gorm:"type:varchar(128)" json:"provider"`
	// Cost is stored in minor currency units.
	Cost        int64     `gorm:"default:0" json:"cost"`
	Odometer    int       `json:"odometer"`
	ServiceDate time.Time `gorm:"index" json:"service_date"`
}

// TableName overrides the default table name for GORM.
func (ServiceRecord) TableName() string {
	return "services"
}
