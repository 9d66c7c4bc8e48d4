package models

import "time"

// Employee is a driver or staff member who may be assigned vehicles and hold licenses
// and certificates.
type Employee struct {
	BaseModel

	FirstName  string     `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName   string     `gorm:"type:varchar(64);not null" json:"last_name"`
	Email      string     `gorm:"type:varchar(255);index" json:"email"`
	Phone      string     `gorm:"type:varchar(32)" json:"phone"`
	Position   string     `gorm:"type:varchar(64)" json:"position"`
	DocumentID *string    `gorm:"type:varchar(32);uniqueIndex" json:"document_id"`
	HireDate   *time.Time `json:"hire_date"`
	IsActive   bool       `gorm:"default:true;index" json:"is_active"`

	Licenses     []License     `gorm:"foreignKey:EmployeeID" json:"licenses,omitempty"`
	Certificates []Certificate `gorm:"foreignKey:EmployeeID" json:"certificates,omitempty"`
}
