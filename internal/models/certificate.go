package models

import "time"

// Certificate is a qualification held by an employee, e.g. hazardous goods or first aid.
type Certificate struct {
	BaseModel

	EmployeeID string     `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *Employee  `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Name       string     `gorm:"type:varchar(128);not null" json:"name"`
	Issuer     string     `gorm:"type:varchar(128)" json:"issuer"`
	Number     string     `gorm:"type:varchar(64);index" json:"number"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  *time.Time `gorm:"index" json:"expires_at"`
}
