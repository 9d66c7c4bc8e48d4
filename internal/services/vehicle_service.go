package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

// ErrVehicleNotFound indicates the requested vehicle does not exist.
var ErrVehicleNotFound = apperrors.New("VEHICLE_NOT_FOUND", "Vehicle not found", http.StatusNotFound)

// VehicleInput describes the fields accepted when registering a vehicle.
type VehicleInput struct {
	Plate              string
	VIN                string
	Make               string
	Model              string
	Year               int
	Color              string
	Status             string
	Mileage            int
	AssignedEmployeeID string
}

// UpdateVehicleInput enumerates mutable vehicle attributes. Nil fields are left unchanged;
// an empty AssignedEmployeeID unassigns the vehicle.
type UpdateVehicleInput struct {
	Plate              *string
	VIN                *string
	Make               *string
	Model              *string
	Year               *int
	Color              *string
	Status             *string
	Mileage            *int
	AssignedEmployeeID *string
}

// ListVehiclesOptions controls pagination and filtering for vehicle listing.
type ListVehiclesOptions struct {
	ListOptions
	Status     string
	EmployeeID string
}

// VehicleService manages the fleet register.
type VehicleService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(db *gorm.DB, audit *AuditService) (*VehicleService, error) {
	if db == nil {
		return nil, errors.New("vehicle service: db is required")
	}
	return &VehicleService{db: db, auditService: audit}, nil
}

// List returns a page of vehicles matching the filters, ordered by plate.
func (s *VehicleService) List(ctx context.Context, opts ListVehiclesOptions) (*ListResult[models.Vehicle], error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Vehicle{})
	if status := strings.TrimSpace(opts.Status); status != "" {
		query = query.Where("status = ?", strings.ToLower(status))
	}
	if employeeID := strings.TrimSpace(opts.EmployeeID); employeeID != "" {
		query = query.Where("assigned_employee_id = ?", employeeID)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(plate) LIKE ? OR LOWER(vin) LIKE ? OR LOWER(make) LIKE ? OR LOWER(model) LIKE ?", pattern, pattern, pattern, pattern)
	}

	result, err := paginate[models.Vehicle](query, opts.ListOptions, "plate ASC", "AssignedEmployee")
	if err != nil {
		return nil, fmt.Errorf("vehicle service: list vehicles: %w", err)
	}
	return result, nil
}

// Get loads a vehicle including its assigned employee.
func (s *VehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	ctx = ensureContext(ctx)

	var vehicle models.Vehicle
	err := s.db.WithContext(ctx).Preload("AssignedEmployee").First(&vehicle, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vehicle service: get vehicle: %w", err)
	}
	return &vehicle, nil
}

// Create registers a vehicle. Plates are stored upper-case and must be unique.
func (s *VehicleService) Create(ctx context.Context, input VehicleInput) (*models.Vehicle, error) {
	ctx = ensureContext(ctx)

	plate := normalisePlate(input.Plate)
	if plate == "" {
		return nil, apperrors.NewBadRequest("plate is required")
	}
	status, err := vehicleStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if input.Mileage < 0 {
		return nil, apperrors.NewBadRequest("mileage must not be negative")
	}

	vehicle := &models.Vehicle{
		Plate:   plate,
		VIN:     strings.ToUpper(strings.TrimSpace(input.VIN)),
		Make:    strings.TrimSpace(input.Make),
		Model:   strings.TrimSpace(input.Model),
		Year:    input.Year,
		Color:   strings.TrimSpace(input.Color),
		Status:  status,
		Mileage: input.Mileage,
	}

	if employeeID := strings.TrimSpace(input.AssignedEmployeeID); employeeID != "" {
		if err := ensureEmployeeExists(s.db.WithContext(ctx), employeeID); err != nil {
			return nil, err
		}
		vehicle.AssignedEmployeeID = &employeeID
	}

	if err := s.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, writeFailure("vehicle service: create vehicle", err, "plate already registered")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "vehicle.create",
		Resource: vehicle.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"plate": vehicle.Plate},
	})

	return s.Get(ctx, vehicle.ID)
}

// Update persists changed vehicle attributes.
func (s *VehicleService) Update(ctx context.Context, id string, input UpdateVehicleInput) (*models.Vehicle, error) {
	ctx = ensureContext(ctx)

	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Plate != nil {
		plate := normalisePlate(*input.Plate)
		if plate == "" {
			return nil, apperrors.NewBadRequest("plate is required")
		}
		if plate != vehicle.Plate {
			updates["plate"] = plate
		}
	}
	if input.VIN != nil {
		updates["vin"] = strings.ToUpper(strings.TrimSpace(*input.VIN))
	}
	if input.Make != nil {
		updates["make"] = strings.TrimSpace(*input.Make)
	}
	if input.Model != nil {
		updates["model"] = strings.TrimSpace(*input.Model)
	}
	if input.Year != nil {
		updates["year"] = *input.Year
	}
	if input.Color != nil {
		updates["color"] = strings.TrimSpace(*input.Color)
	}
	if input.Status != nil {
		status, err := vehicleStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}
	if input.Mileage != nil {
		if *input.Mileage < 0 {
			return nil, apperrors.NewBadRequest("mileage must not be negative")
		}
		updates["mileage"] = *input.Mileage
	}
	if input.AssignedEmployeeID != nil {
		employeeID := strings.TrimSpace(*input.AssignedEmployeeID)
		if employeeID == "" {
			updates["assigned_employee_id"] = nil
		} else {
			if err := ensureEmployeeExists(s.db.WithContext(ctx), employeeID); err != nil {
				return nil, err
			}
			updates["assigned_employee_id"] = employeeID
		}
	}

	if len(updates) == 0 {
		return vehicle, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Updates(updates).Error; err != nil {
		return nil, writeFailure("vehicle service: update vehicle", err, "plate already registered")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "vehicle.update",
		Resource: vehicle.ID,
		Result:   AuditResultSuccess,
		Metadata: updates,
	})

	return s.Get(ctx, vehicle.ID)
}

// Delete removes a vehicle together with its service history.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", vehicle.ID).Delete(&models.ServiceRecord{}).Error; err != nil {
			return fmt.Errorf("vehicle service: delete service records: %w", err)
		}
		if err := tx.Delete(&models.Vehicle{}, "id = ?", vehicle.ID).Error; err != nil {
			return fmt.Errorf("vehicle service: delete vehicle: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "vehicle.delete",
		Resource: vehicle.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"plate": vehicle.Plate},
	})

	return nil
}

// CountByStatus reports how many vehicles are in each lifecycle state.
func (s *VehicleService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx = ensureContext(ctx)

	var rows []struct {
		Status string
		Total  int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("vehicle service: count vehicles: %w", err)
	}

	counts := map[string]int64{
		models.VehicleStatusActive:      0,
		models.VehicleStatusMaintenance: 0,
		models.VehicleStatusRetired:     0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func normalisePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), " "))
}

func vehicleStatus(value string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(value))
	switch status {
	case "":
		return models.VehicleStatusActive, nil
	case models.VehicleStatusActive, models.VehicleStatusMaintenance, models.VehicleStatusRetired:
		return status, nil
	default:
		return "", apperrors.NewBadRequest(fmt.Sprintf("unknown vehicle status %q", value))
	}
}
