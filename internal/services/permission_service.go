package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/permissions"
	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

var (
	ErrRoleNotFound        = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	ErrSystemRoleImmutable = apperrors.New("ROLE_IMMUTABLE", "System roles cannot be renamed, deleted or regranted", http.StatusBadRequest)
)

const duplicateRoleMessage = "role name already exists"

// PermissionService manages roles and the per-menu permission records each role grants.
// Snapshots and checks are delegated to permissions.Checker.
type PermissionService struct {
	db           *gorm.DB
	checker      *permissions.Checker
	auditService *AuditService
}

func NewPermissionService(db *gorm.DB, audit *AuditService) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}
	return &PermissionService{db: db, checker: checker, auditService: audit}, nil
}

type CreateRoleInput struct {
	Name        string
	Description string
}

// UpdateRoleInput replaces the role's name (when non-blank) and description.
type UpdateRoleInput struct {
	Name        string
	Description string
}

func (in UpdateRoleInput) changes(role *models.Role) (map[string]any, error) {
	cols := make(map[string]any, 2)
	if name := strings.TrimSpace(in.Name); name != "" && name != role.Name {
		if role.IsSystem {
			return nil, ErrSystemRoleImmutable
		}
		cols["name"] = name
	}
	if desc := strings.TrimSpace(in.Description); desc != role.Description {
		cols["description"] = desc
	}
	return cols, nil
}

// CreateRole adds a role that grants nothing until permissions are saved for it.
func (s *PermissionService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	role := &models.Role{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if role.Name == "" {
		return nil, apperrors.NewBadRequest("role name is required")
	}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, writeFailure("permission service: create role", err, duplicateRoleMessage)
	}

	s.audit(ctx, "role.create", role.ID, map[string]any{"name": role.Name})
	return role, nil
}

func (s *PermissionService) GetRole(ctx context.Context, roleID string) (*models.Role, error) {
	return loadRole(s.db.WithContext(ensureContext(ctx)), roleID)
}

// UpdateRole edits the description of any role and the name of non-system roles.
func (s *PermissionService) UpdateRole(ctx context.Context, roleID string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	cols, err := input.changes(role)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return role, nil
	}

	if err := s.db.WithContext(ctx).Model(role).Updates(cols).Error; err != nil {
		return nil, writeFailure("permission service: update role", err, duplicateRoleMessage)
	}
	s.audit(ctx, "role.update", role.ID, cols)
	return s.GetRole(ctx, role.ID)
}

// DeleteRole removes a non-system role with its permission rows. Users holding the role
// are left without one.
func (s *PermissionService) DeleteRole(ctx context.Context, roleID string) error {
	ctx = ensureContext(ctx)

	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRoleImmutable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name string
			run  func() error
		}{
			{"detach users", func() error {
				return tx.Model(&models.User{}).Where("role_id = ?", role.ID).Update("role_id", nil).Error
			}},
			{"clear permissions", func() error {
				return tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error
			}},
			{"delete role", func() error { return tx.Delete(role).Error }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("permission service: %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "role.delete", role.ID, map[string]any{"name": role.Name})
	return nil
}

// ListRoles pages through roles by name.
func (s *PermissionService) ListRoles(ctx context.Context, opts ListOptions) (*ListResult[models.Role], error) {
	query := s.db.WithContext(ensureContext(ctx)).Model(&models.Role{})
	if q := strings.TrimSpace(opts.Query); q != "" {
		p := likePattern(q)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}

	page, err := paginate[models.Role](query, opts, "name ASC")
	if err != nil {
		return nil, fmt.Errorf("permission service: list roles: %w", err)
	}
	return page, nil
}

// ListRolePermissions returns one record per registered menu in menu order. Menus the role
// holds no row for are reported with every flag false.
func (s *PermissionService) ListRolePermissions(ctx context.Context, roleID string) ([]permissions.Record, error) {
	ctx = ensureContext(ctx)

	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	stored, err := s.checker.RoleSnapshot(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	byResource := make(map[string]permissions.Record, len(stored))
	for _, rec := range stored {
		if _, exists := byResource[rec.ResourceID]; !exists {
			byResource[rec.ResourceID] = rec
		}
	}

	resources := permissions.List()
	out := make([]permissions.Record, 0, len(resources))
	for _, res := range resources {
		rec, ok := byResource[res.ID]
		if !ok {
			rec = permissions.Record{ResourceID: res.ID}
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveRolePermissions replaces every record the role holds with records. Records that grant
// nothing are not stored. The administrator role cannot be edited.
func (s *PermissionService) SaveRolePermissions(ctx context.Context, roleID string, records []permissions.Record) error {
	ctx = ensureContext(ctx)

	rows, err := rolePermissionRows(records)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := loadRole(tx, roleID)
		if err != nil {
			return err
		}
		if role.ID == models.RoleAdministratorID {
			return ErrSystemRoleImmutable
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("permission service: clear role permissions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		for i := range rows {
			rows[i].RoleID = role.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("permission service: store role permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	granted := make([]string, 0, len(rows))
	for _, row := range rows {
		granted = append(granted, row.MenuID)
	}

	s.audit(ctx, "role.set_permissions", strings.TrimSpace(roleID), map[string]any{"menu_ids": granted})

	return nil
}

// ListUserPermissions resolves the permission snapshot of the supplied user.
func (s *PermissionService) ListUserPermissions(ctx context.Context, userID string) ([]permissions.Record, error) {
	return s.checker.Snapshot(ensureContext(ctx), userID)
}

// Checker exposes the snapshot evaluator used by this service.
func (s *PermissionService) Checker() *permissions.Checker {
	return s.checker
}

func (s *PermissionService) audit(ctx context.Context, action, roleID string, metadata map[string]any) {
	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   action,
		Resource: roleID,
		Result:   AuditResultSuccess,
		Metadata: metadata,
	})
}

func loadRole(db *gorm.DB, roleID string) (*models.Role, error) {
	var role models.Role
	err := db.Where("id = ?", strings.TrimSpace(roleID)).First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrRoleNotFound
	case err != nil:
		return nil, fmt.Errorf("permission service: load role: %w", err)
	}
	return &role, nil
}

func rolePermissionRows(records []permissions.Record) ([]models.RolePermission, error) {
	seen := make(map[string]struct{}, len(records))
	rows := make([]models.RolePermission, 0, len(records))

	for _, rec := range records {
		id := strings.TrimSpace(rec.ResourceID)
		if id == "" {
			return nil, apperrors.NewBadRequest("resource id is required")
		}
		if _, ok := permissions.Get(id); !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("%s %q", permissions.ErrUnknownResource.Error(), id))
		}
		if _, dup := seen[id]; dup {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("duplicate permission record for %q", id))
		}
		seen[id] = struct{}{}

		if !rec.CanAll && !rec.CanView && !rec.CanInsert && !rec.CanEdit && !rec.CanDelete {
			continue
		}
		rows = append(rows, models.RolePermission{
			MenuID:    id,
			CanView:   rec.CanView,
			CanInsert: rec.CanInsert,
			CanEdit:   rec.CanEdit,
			CanDelete: rec.CanDelete,
			CanAll:    rec.CanAll,
		})
	}

	return rows, nil
}
