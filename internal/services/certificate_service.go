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

// ErrCertificateNotFound indicates the requested certificate does not exist.
var ErrCertificateNotFound = apperrors.New("CERTIFICATE_NOT_FOUND", "Certificate not found", http.StatusNotFound)

// CertificateInput describes a certificate held by an employee.
type CertificateInput struct {
	EmployeeID string
	Name       string
	Issuer     string
	Number     string
	IssuedAt   time.Time
	ExpiresAt  *time.Time
}

// UpdateCertificateInput enumerates mutable certificate attributes. ClearExpiry removes the
// expiry date.
type UpdateCertificateInput struct {
	Name        *string
	Issuer      *string
	Number      *string
	IssuedAt    *time.Time
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// ListCertificatesOptions controls pagination and filtering for certificates.
type ListCertificatesOptions struct {
	ListOptions
	EmployeeID string
}

// CertificateService manages employee certificates.
type CertificateService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(db *gorm.DB, audit *AuditService) (*CertificateService, error) {
	if db == nil {
		return nil, errors.New("certificate service: db is required")
	}
	return &CertificateService{db: db, auditService: audit}, nil
}

// List returns a page of certificates ordered by name.
func (s *CertificateService) List(ctx context.Context, opts ListCertificatesOptions) (*ListResult[models.Certificate], error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Certificate{})
	if employeeID := strings.TrimSpace(opts.EmployeeID); employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(issuer) LIKE ? OR LOWER(number) LIKE ?", pattern, pattern, pattern)
	}

	result, err := paginate[models.Certificate](query, opts.ListOptions, "name ASC, id ASC", "Employee")
	if err != nil {
		return nil, fmt.Errorf("certificate service: list certificates: %w", err)
	}
	return result, nil
}

// Get loads a certificate including its holder.
func (s *CertificateService) Get(ctx context.Context, id string) (*models.Certificate, error) {
	ctx = ensureContext(ctx)

	var certificate models.Certificate
	err := s.db.WithContext(ctx).Preload("Employee").First(&certificate, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("certificate service: get certificate: %w", err)
	}
	return &certificate, nil
}

// Create stores a certificate for an existing employee.
func (s *CertificateService) Create(ctx context.Context, input CertificateInput) (*models.Certificate, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("certificate name is required")
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

	certificate := &models.Certificate{
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		Name:       name,
		Issuer:     strings.TrimSpace(input.Issuer),
		Number:     strings.TrimSpace(input.Number),
		IssuedAt:   input.IssuedAt,
		ExpiresAt:  input.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(certificate).Error; err != nil {
		return nil, fmt.Errorf("certificate service: create certificate: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "certificate.create",
		Resource: certificate.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"employee_id": certificate.EmployeeID, "name": certificate.Name},
	})

	return s.Get(ctx, certificate.ID)
}

// Update persists changed certificate attributes.
func (s *CertificateService) Update(ctx context.Context, id string, input UpdateCertificateInput) (*models.Certificate, error) {
	ctx = ensureContext(ctx)

	certificate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("certificate name is required")
		}
		updates["name"] = name
	}
	if input.Issuer != nil {
		updates["issuer"] = strings.TrimSpace(*input.Issuer)
	}
	if input.Number != nil {
		updates["number"] = strings.TrimSpace(*input.Number)
	}

	issuedAt := certificate.IssuedAt
	if input.IssuedAt != nil {
		issuedAt = *input.IssuedAt
		updates["issued_at"] = issuedAt
	}
	expiresAt := certificate.ExpiresAt
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
		return certificate, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Certificate{}).Where("id = ?", certificate.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("certificate service: update certificate: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "certificate.update",
		Resource: certificate.ID,
		Result:   AuditResultSuccess,
	})

	return s.Get(ctx, certificate.ID)
}

// Delete removes a certificate.
func (s *CertificateService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Certificate{}, "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("certificate service: delete certificate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCertificateNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "certificate.delete",
		Resource: id,
		Result:   AuditResultSuccess,
	})
	return nil
}

// ExpiringBetween returns certificates of active employees expiring in [from, to).
func (s *CertificateService) ExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Certificate, error) {
	ctx = ensureContext(ctx)

	var certificates []models.Certificate
	if err := expiringQuery(s.db.WithContext(ctx), "certificates", from, to).
		Preload("Employee").
		Find(&certificates).Error; err != nil {
		return nil, fmt.Errorf("certificate service: expiring certificates: %w", err)
	}
	return certificates, nil
}

func validateDocumentDates(issuedAt time.Time, expiresAt *time.Time) error {
	if expiresAt == nil || issuedAt.IsZero() {
		return nil
	}
	if expiresAt.Before(issuedAt) {
		return apperrors.NewBadRequest("expiry date must not precede the issue date")
	}
	return nil
}

// expiringQuery selects documents of active employees whose expiry falls in [from, to).
func expiringQuery(db *gorm.DB, table string, from, to time.Time) *gorm.DB {
	return db.Table(table).
		Select(table+".*").
		Joins("JOIN employees ON employees.id = "+table+".employee_id").
		Where("employees.is_active = ?", true).
		Where(table+".expires_at IS NOT NULL AND "+table+".expires_at >= ? AND "+table+".expires_at < ?", from, to).
		Order(table + ".expires_at ASC")
}
