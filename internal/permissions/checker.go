package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/models"
)

// ErrUnknownUser indicates the snapshot was requested for a user that does not exist.
var ErrUnknownUser = errors.New("permission checker: unknown user")

// Checker loads permission snapshots from the database and evaluates them.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check reports whether the user may perform action on resourceID. Missing records deny;
// only lookup failures are returned as errors.
func (c *Checker) Check(ctx context.Context, userID, resourceID string, action Action) (bool, error) {
	snapshot, err := c.Snapshot(ctx, userID)
	if err != nil {
		return false, err
	}
	return HasPermission(snapshot, strings.TrimSpace(resourceID), action), nil
}

// Snapshot returns the permission records that apply to the user. Root users receive full
// access to every registered resource; inactive users and users without a role receive an
// empty snapshot.
func (c *Checker) Snapshot(ctx context.Context, userID string) ([]Record, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	var user models.User
	if err := c.db.WithContext(ctx).
		Preload("Role.Permissions").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w %q", ErrUnknownUser, userID)
		}
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}

	return SnapshotFor(&user), nil
}

// RoleSnapshot returns the records stored for a role.
func (c *Checker) RoleSnapshot(ctx context.Context, roleID string) ([]Record, error) {
	ctx = ensureContext(ctx)

	var rows []models.RolePermission
	if err := c.db.WithContext(ctx).
		Where("role_id = ?", strings.TrimSpace(roleID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load role permissions: %w", err)
	}
	return recordsFromModels(rows), nil
}

// SnapshotFor derives a snapshot from a user whose role permissions are already loaded.
func SnapshotFor(user *models.User) []Record {
	if user == nil || !user.IsActive {
		return nil
	}

	if user.IsRoot {
		resources := List()
		out := make([]Record, 0, len(resources))
		for _, res := range resources {
			out = append(out, FullAccess(res.ID))
		}
		return out
	}

	if user.Role == nil {
		return nil
	}
	return recordsFromModels(user.Role.Permissions)
}

func recordsFromModels(rows []models.RolePermission) []Record {
	if len(rows) == 0 {
		return nil
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, RecordFromModel(row))
	}
	return out
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
