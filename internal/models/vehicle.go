package models

// Vehicle lifecycle states.
const (
	VehicleStatusActive      = "active"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusRetired     = "retired"
)

// Vehicle is a fleet unit.
type Vehicle struct {
	BaseModel

	Plate   string `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate"`
	VIN     string `gorm:"type:varchar(32);index" json:"vin"`
	Make    string `gorm:"type:varchar(64)" json:"make"`
	Model   string `gorm:"type:varchar(64)" json:"model"`
	Year    int    `json:"year"`
	Color   string `gorm:"type:varchar(32)" json:"color"`
	Status  string `gorm:"type:varchar(16);default:'active';index" json:"status"`
	Mileage int    `gorm:"default:0" json:"mileage"`

	AssignedEmployeeID *string   `gorm:"type:uuid;index" json:"assigned_employee_id"`
	AssignedEmployee   *Employee `gorm:"foreignKey:AssignedEmployeeID" json:"assigned_employee,omitempty"`
}
