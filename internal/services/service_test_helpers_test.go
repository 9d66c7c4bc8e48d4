package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/database/testutil"
	"github.com/charlesng35/fleetcn/internal/models"
)

type fleetServices struct {
	db           *gorm.DB
	audit        *AuditService
	vehicles     *VehicleService
	employees    *EmployeeService
	records      *ServiceRecordService
	certificates *CertificateService
	licenses     *LicenseService
}

func setupFleetServices(t *testing.T) *fleetServices {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	audit, err := NewAuditService(db)
	require.NoError(t, err)
	vehicles, err := NewVehicleService(db, audit)
	require.NoError(t, err)
	employees, err := NewEmployeeService(db, audit)
	require.NoError(t, err)
	records, err := NewServiceRecordService(db, audit)
	require.NoError(t, err)
	certificates, err := NewCertificateService(db, audit)
	require.NoError(t, err)
	licenses, err := NewLicenseService(db, audit)
	require.NoError(t, err)

	return &fleetServices{
		db:           db,
		audit:        audit,
		vehicles:     vehicles,
		employees:    employees,
		records:      records,
		certificates: certificates,
		licenses:     licenses,
	}
}

func (f *fleetServices) mustEmployee(t *testing.T, first, last string) *models.Employee {
	t.Helper()

	employee, err := f.employees.Create(context.Background(), EmployeeInput{
		FirstName: first,
		LastName:  last,
		Email:     first + "@fleet.test",
	})
	require.NoError(t, err)
	return employee
}

func (f *fleetServices) mustVehicle(t *testing.T, plate string) *models.Vehicle {
	t.Helper()

	vehicle, err := f.vehicles.Create(context.Background(), VehicleInput{
		Plate: plate,
		Make:  "Volvo",
		Model: "FH16",
		Year:  2021,
	})
	require.NoError(t, err)
	return vehicle
}

func countAudit(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}
