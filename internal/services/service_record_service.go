package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

// ErrServiceRecordNotFound indicates the requested service record does not exist.
var ErrServiceRecordNotFound = apperrors.New("SERVICE_RECORD_NOT_FOUND", "Service record not found", http.StatusNotFound)

// ServiceRecordInput describes a maintenance entry. Cost is in minor currency units.
type ServiceRecordInput struct {
	VehicleID   string
	Type        string
	Description string
	Provider    string
	Cost        int64
	Odometer    int
	ServiceDate time.Time
}

// UpdateServiceRecordInput enumerates mutable service record attributes.
type UpdateServiceRecordInput struct {
	Type        *string
	Description *string
	Provider    *string
	Cost        *int64
	Odometer    *int
	ServiceDate *time.Time
}

// ListServiceRecordsOptions controls pagination and filtering for service history.
type ListServiceRecordsOptions struct {
	ListOptions
	VehicleID string
}

// ServiceRecordService manages vehicle maintenance history.
type ServiceRecordService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewServiceRecordService constructs a ServiceRecordService.
func NewServiceRecordService(db *gorm.DB, audit *AuditService) (*ServiceRecordService, error) {
	if db == nil {
		return nil, errors.New("service record service: db is required")
	}
	return &ServiceRecordService{db: db, auditService: audit}, nil
}

// List returns a page of service records, most recent first.
func (s *ServiceRecordService) List(ctx context.Context, opts ListServiceRecordsOptions) (*ListResult[models.ServiceRecord], error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.ServiceRecord{})
	if vehicleID := strings.TrimSpace(opts.VehicleID); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(type) LIKE ? OR LOWER(provider) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern)
	}

	result, err := paginate[models.ServiceRecord](query, opts.ListOptions, "service_date DESC", "Vehicle")
	if err != nil {
		return nil, fmt.Errorf("service record service: list records: %w", err)
	}
	return result, nil
}

// Get loads a service record including its vehicle.
func (s *ServiceRecordService) Get(ctx context.Context, id string) (*models.ServiceRecord, error) {
	ctx = ensureContext(ctx)

	var record models.ServiceRecord
	err := s.db.WithContext(ctx).Preload("Vehicle").First(&record, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("service record service: get record: %w", err)
	}
	return &record, nil
}

// Create stores a service record. A higher odometer reading than the vehicle's mileage
// advances the mileage.
func (s *ServiceRecordService) Create(ctx context.Context, input ServiceRecordInput) (*models.ServiceRecord, error) {
	ctx = ensureContext(ctx)

	vehicleID := strings.TrimSpace(input.VehicleID)
	kind := strings.TrimSpace(input.Type)
	if vehicleID == "" {
		return nil, apperrors.NewBadRequest("vehicle is required")
	}
	if kind == "" {
		return nil, apperrors.NewBadRequest("service type is required")
	}
	if input.Cost < 0 || input.Odometer < 0 {
		return nil, apperrors.NewBadRequest("cost and odometer must not be negative")
	}

	serviceDate := input.ServiceDate
	if serviceDate.IsZero() {
		serviceDate = time.Now().UTC()
	}

	record := &models.ServiceRecord{
		VehicleID:   vehicleID,
		Type:        kind,
		Description: strings.TrimSpace(input.Description),
		Provider:    strings.TrimSpace(input.Provider),
		Cost:        input.Cost,
		Odometer:    input.Odometer,
		ServiceDate: serviceDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, "id = ?", vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("service record service: load vehicle: %w", err)
		}

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("service record service: create record: %w", err)
		}

		if record.Odometer > vehicle.Mileage {
			if err := tx.Model(&vehicle).Update("mileage", record.Odometer).Error; err != nil {
				return fmt.Errorf("service record service: update mileage: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "service.create",
		Resource: record.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"vehicle_id": record.VehicleID, "type": record.Type},
	})

	return s.Get(ctx, record.ID)
}

// Update persists changed service record attributes.
func (s *ServiceRecordService) Update(ctx context.Context, id string, input UpdateServiceRecordInput) (*models.ServiceRecord, error) {
	ctx = ensureContext(ctx)

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Type != nil {
		kind := strings.TrimSpace(*input.Type)
		if kind == "" {
			return nil, apperrors.NewBadRequest("service type is required")
		}
		updates["type"] = kind
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Provider != nil {
		updates["provider"] = strings.TrimSpace(*input.Provider)
	}
	if input.Cost != nil {
		if *input.Cost < 0 {
			return nil, apperrors.NewBadRequest("cost must not be negative")
		}
		updates["cost"] = *input.Cost
	}
	if input.Odometer != nil {
		if *input.Odometer < 0 {
			return nil, apperrors.NewBadRequest("odometer must not be negative")
		}
		updates["odometer"] = *input.Odometer
	}
	if input.ServiceDate != nil {
		updates["service_date"] = *input.ServiceDate
	}

	if len(updates) == 0 {
		return record, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.ServiceRecord{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("service record service: update record: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "service.update",
		Resource: record.ID,
		Result:   AuditResultSuccess,
		Metadata: updates,
	})

	return s.Get(ctx, record.ID)
}

// Delete removes a service record.
func (s *ServiceRecordService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.ServiceRecord{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("service record service: delete record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrServiceRecordNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "service.delete",
		Resource: id,
		Result:   AuditResultSuccess,
	})

	return nil
}
