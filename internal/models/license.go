package models

import "time"

// License is a driving license held by an employee.
type License struct {
	BaseModel

	EmployeeID string     `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *Employee  `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Number     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"number"`
	Class      string     `gorm:"type:varchar(16);not null" json:"class"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  *time.Time `gorm:"index" json:"expires_at"`
}
