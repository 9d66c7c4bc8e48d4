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

// ErrLicenseNotFound indicates the requested license does not exist.
var ErrLicenseNotFound = apperrors.New("LICENSE_NOT_FOUND", "License not found", http.StatusNotFound)

// LicenseInput describes a driving license held by an employee.
type LicenseInput struct {
	EmployeeID string
	Number     string
	Class      string
	IssuedAt   time.Time
	ExpiresAt  *time.Time
}

// UpdateLicenseInput enumerates mutable license attributes.
type UpdateLicenseInput struct {
	Number      *string
	Class       *string
	IssuedAt    *time.Time
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// ListLicensesOptions controls pagination and filtering for licenses.
type ListLicensesOptions struct {
	ListOptions
	EmployeeID string
	Class      string
}

// LicenseService manages employee driving licenses.
type LicenseService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewLicenseService constructs a LicenseService.
func NewLicenseService(db *gorm.DB, audit *AuditService) (*LicenseService, error) {
	if db == nil {
		return nil, errors.New("license service: db is required")
	}
	return &LicenseService{db: db, auditService: audit}, nil
}

// List returns a page of licenses ordered by number.
func (s *LicenseService) List(ctx context.Context, opts ListLicensesOptions) (*ListResult[models.License], error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.License{})
	if employeeID := strings.TrimSpace(opts.EmployeeID); employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}
	if class := strings.TrimSpace(opts.Class); class != "" {
		query = query.Where("class = ?", strings.ToUpper(class))
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		query = query.Where("LOWER(number) LIKE ?", likePattern(q))
	}

	result, err := paginate[models.License](query, opts.ListOptions, "number ASC", "Employee")
	if err != nil {
		return nil, fmt.Errorf("license service: list licenses: %w", err)
	}
	return result, nil
}

// Get loads a license including its holder.
func (s *LicenseService) Get(ctx context.Context, id string) (*models.License, error) {
	ctx = ensureContext(ctx)

	var license models.License
	err := s.db.WithContext(ctx).Preload("Employee").First(&license, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLicenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("license service: get license: %w", err)
	}
	return &license, nil
}

// Create stores a license for an existing employee. License numbers are unique.
func (s *LicenseService) Create(ctx context.Context, input LicenseInput) (*models.License, error) {
	ctx = ensureContext(ctx)

	number := strings.ToUpper(strings.TrimSpace(input.Number))
	class := strings.ToUpper(strings.TrimSpace(input.Class))
	if number == "" || class == "" {
		return nil, apperrors.NewBadRequest("license number and class are required")
	}
	if err := validateDocumentDates(input.IssuedAt, input.ExpiresAt); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.EmployeeID) == "" {
		return nil, apperrors.NewBadRequest("employee is required")
	}
	if err := ensureEmployeeExists(s.db.WithContext(ctx), strings.TrimSpace(input.EmployeeID)); err != nil {
		return nil, err
	}

	license := &models.License{
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		Number:     number,
		Class:      class,
		IssuedAt:   input.IssuedAt,
		ExpiresAt:  input.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(license).Error; err != nil {
		return nil, writeFailure("license service: create license", err, "license number already registered")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "license.create",
		Resource: license.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"employee_id": license.EmployeeID, "class": license.Class},
	})

	return s.Get(ctx, license.ID)
}

// Update persists changed license attributes.
func (s *LicenseService) Update(ctx context.Context, id string, input UpdateLicenseInput) (*models.License, error) {
	ctx = ensureContext(ctx)

	license, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Number != nil {
		number := strings.ToUpper(strings.TrimSpace(*input.Number))
		if number == "" {
			return nil, apperrors.NewBadRequest("license number is required")
		}
		updates["number"] = number
	}
	if input.Class != nil {
		class := strings.ToUpper(strings.TrimSpace(*input.Class))
		if class == "" {
			return nil, apperrors.NewBadRequest("license class is required")
		}
		updates["class"] = class
	}

	issuedAt := license.IssuedAt
	if input.IssuedAt != nil {
		issuedAt = *input.IssuedAt
		updates["issued_at"] = issuedAt
	}
	expiresAt := license.ExpiresAt
	switch {
	case input.ClearExpiry:
		expiresAt = nil
		updates["expires_at"] = nil
	case input.ExpiresAt != nil:
		expiresAt = input.ExpiresAt
		updates["expires_at"] = *input.ExpiresAt
	}
	if err := validateDocumentDates(issuedAt, expiresAt); err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return license, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.License{}).Where("id = ?", license.ID).Updates(updates).Error; err != nil {
		return nil, writeFailure("license service: update license", err, "license number already registered")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "license.update",
		Resource: license.ID,
		Result:   AuditResultSuccess,
	})

	return s.Get(ctx, license.ID)
}

// Delete removes a license.
func (s *LicenseService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.License{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("license service: delete license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLicenseNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "license.delete",
		Resource: id,
		Result:   AuditResultSuccess,
	})
	return nil
}

// ExpiringBetween returns licenses of active employees expiring in [from, to).
func (s *LicenseService) ExpiringBetween(ctx context.Context, from, to time.Time) ([]models.License, error) {
	ctx = ensureContext(ctx)

	var licenses []models.License
	if err := expiringQuery(s.db.WithContext(ctx), "licenses", from, to).
		Preload("Employee").
		Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("license service: expiring licenses: %w", err)
	}
	return licenses, nil
}
