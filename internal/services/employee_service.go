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

// ErrEmployeeNotFound indicates the requested employee does not exist.
var ErrEmployeeNotFound = apperrors.New("EMPLOYEE_NOT_FOUND", "Employee not found", http.StatusNotFound)

// EmployeeInput describes the fields accepted when creating an employee.
type EmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Position   string
	DocumentID string
	HireDate   *time.Time
}

// UpdateEmployeeInput enumerates mutable employee attributes.
type UpdateEmployeeInput struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Position   *string
	DocumentID *string
	HireDate   *time.Time
	IsActive   *bool
}

// ListEmployeesOptions controls pagination and filtering for employee listing.
type ListEmployeesOptions struct {
	ListOptions
	IsActive *bool
}

// EmployeeService manages drivers and staff.
type EmployeeService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(db *gorm.DB, audit *AuditService) (*EmployeeService, error) {
	if db == nil {
		return nil, errors.New("employee service: db is required")
	}
	return &EmployeeService{db: db, auditService: audit}, nil
}

// List returns a page of employees ordered by last then first name.
func (s *EmployeeService) List(ctx context.Context, opts ListEmployeesOptions) (*ListResult[models.Employee], error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Employee{})
	if opts.IsActive != nil {
		query = query.Where("is_active = ?", *opts.IsActive)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(document_id) LIKE ?", pattern, pattern, pattern, pattern)
	}

	result, err := paginate[models.Employee](query, opts.ListOptions, "last_name ASC, first_name ASC")
	if err != nil {
		return nil, fmt.Errorf("employee service: list employees: %w", err)
	}
	return result, nil
}

// Get loads an employee including licences and certificates.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	ctx = ensureContext(ctx)

	var employee models.Employee
	err := s.db.WithContext(ctx).
		Preload("Licenses").
		Preload("Certificates").
		First(&employee, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("employee service: get employee: %w", err)
	}
	return &employee, nil
}

// Create registers an employee.
func (s *EmployeeService) Create(ctx context.Context, input EmployeeInput) (*models.Employee, error) {
	ctx = ensureContext(ctx)

	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return nil, apperrors.NewBadRequest("first and last name are required")
	}

	employee := &models.Employee{
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:     strings.TrimSpace(input.Phone),
		Position:  strings.TrimSpace(input.Position),
		HireDate:  input.HireDate,
		IsActive:  true,
	}
	if doc := strings.TrimSpace(input.DocumentID); doc != "" {
		employee.DocumentID = &doc
	}

	if err := s.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, writeFailure("employee service: create employee", err, "document id already registered")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "employee.create",
		Resource: employee.ID,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"name": employee.FirstName + " " + employee.LastName},
	})

	return s.Get(ctx, employee.ID)
}

// Update persists changed employee attributes.
func (s *EmployeeService) Update(ctx context.Context, id string, input UpdateEmployeeInput) (*models.Employee, error) {
	ctx = ensureContext(ctx)

	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, apperrors.NewBadRequest("first name is required")
		}
		updates["first_name"] = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, apperrors.NewBadRequest("last name is required")
		}
		updates["last_name"] = name
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Position != nil {
		updates["position"] = strings.TrimSpace(*input.Position)
	}
	if input.DocumentID != nil {
		if doc := strings.TrimSpace(*input.DocumentID); doc != "" {
			updates["document_id"] = doc
		} else {
			updates["document_id"] = nil
		}
	}
	if input.HireDate != nil {
		updates["hire_date"] = *input.HireDate
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return employee, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", employee.ID).Updates(updates).Error; err != nil {
		return nil, writeFailure("employee service: update employee", err, "document id already registered")
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "employee.update",
		Resource: employee.ID,
		Result:   AuditResultSuccess,
		Metadata: updates,
	})

	return s.Get(ctx, employee.ID)
}

// Delete removes an employee with their licences and certificates and unassigns their vehicles.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	employee, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Vehicle{}).Where("assigned_employee_id = ?", employee.ID).Update("assigned_employee_id", nil).Error; err != nil {
			return fmt.Errorf("employee service: unassign vehicles: %w", err)
		}
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.License{}).Error; err != nil {
			return fmt.Errorf("employee service: delete licenses: %w", err)
		}
		if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.Certificate{}).Error; err != nil {
			return fmt.Errorf("employee service: delete certificates: %w", err)
		}
		if err := tx.Delete(&models.Employee{}, "id = ?", employee.ID).Error; err != nil {
			return fmt.Errorf("employee service: delete employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "employee.delete",
		Resource: employee.ID,
		Result:   AuditResultSuccess,
	})

	return nil
}

func ensureEmployeeExists(db *gorm.DB, employeeID string) error {
	var count int64
	if err := db.Model(&models.Employee{}).Where("id = ?", employeeID).Count(&count).Error; err != nil {
		return fmt.Errorf("employee service: load employee: %w", err)
	}
	if count == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
