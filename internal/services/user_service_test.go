package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/database/testutil"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/pkg/crypto"
	apperrors "github.com/charlesng35/fleetcn/pkg/errors"
)

const strongPassword = "Fleet@2024"

func setupUserServiceTest(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	auditSvc, err := NewAuditService(db)
	require.NoError(t, err)

	svc, err := NewUserService(db, auditSvc)
	require.NoError(t, err)
	return db, svc
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	db, svc := setupUserServiceTest(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Username:  "dispatcher",
		Email:     "Dispatcher@Example.com",
		Password:  strongPassword,
		FirstName: "Dana",
		RoleID:    models.RoleOperatorID,
	})
	require.NoError(t, err)
	require.Equal(t, "dispatcher@example.com", user.Email)
	require.NotEqual(t, strongPassword, user.Password)
	require.True(t, crypto.VerifyPassword(user.Password, strongPassword))
	require.True(t, user.IsActive)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", "user.create").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUserServiceCreateRejectsWeakPassword(t *testing.T) {
	_, svc := setupUserServiceTest(t)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Username: "weak",
		Email:    "weak@example.com",
		Password: "password",
	})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUserServiceCreateValidatesRoleAndUniqueness(t *testing.T) {
	_, svc := setupUserServiceTest(t)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Username: "ghost",
		Email:    "ghost@example.com",
		Password: strongPassword,
		RoleID:   "00000000-0000-4000-8000-0000000000ff",
	})
	require.ErrorIs(t, err, ErrRoleNotFound)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "twin", Email: "twin@example.com", Password: strongPassword})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "twin", Email: "other@example.com", Password: strongPassword})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserServiceCreateInactive(t *testing.T) {
	_, svc := setupUserServiceTest(t)

	inactive := false
	user, err := svc.Create(context.Background(), CreateUserInput{
		Username: "sleeper",
		Email:    "sleeper@example.com",
		Password: strongPassword,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	loaded, err := svc.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, loaded.IsActive)
}

func TestUserServiceRootUser(t *testing.T) {
	db, svc := setupUserServiceTest(t)

	root, err := svc.Create(context.Background(), CreateUserInput{
		Username: "root",
		Email:    "root@example.com",
		Password: strongPassword,
		IsRoot:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, root.RoleID)
	require.Equal(t, models.RoleAdministratorID, *root.RoleID)

	require.ErrorIs(t, svc.SetActive(context.Background(), root.ID, false), ErrRootUserImmutable)
	require.ErrorIs(t, svc.Delete(context.Background(), root.ID), ErrRootUserImmutable)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)
	allowed, err := checker.Check(context.Background(), root.ID, permissions.ResourcePermissions, permissions.ActionDelete)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestUserServiceAssignRoleChangesSnapshot(t *testing.T) {
	db, svc := setupUserServiceTest(t)

	user, err := svc.Create(context.Background(), CreateUserInput{Username: "mover", Email: "mover@example.com", Password: strongPassword})
	require.NoError(t, err)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	allowed, err := checker.Check(context.Background(), user.ID, permissions.ResourceVehicles, permissions.ActionView)
	require.NoError(t, err)
	require.False(t, allowed, "users without a role are denied")

	updated, err := svc.AssignRole(context.Background(), user.ID, models.RoleOperatorID)
	require.NoError(t, err)
	require.NotNil(t, updated.Role)
	require.Equal(t, "Operator", updated.Role.Name)

	allowed, err = checker.Check(context.Background(), user.ID, permissions.ResourceVehicles, permissions.ActionView)
	require.NoError(t, err)
	require.True(t, allowed)

	updated, err = svc.AssignRole(context.Background(), user.ID, "")
	require.NoError(t, err)
	require.Nil(t, updated.RoleID)

	_, err = svc.AssignRole(context.Background(), user.ID, "missing")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestUserServiceUpdateListAndDelete(t *testing.T) {
	_, svc := setupUserServiceTest(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateUserInput{Username: "alpha", Email: "alpha@example.com", Password: strongPassword})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserInput{Username: "bravo", Email: "bravo@example.com", Password: strongPassword})
	require.NoError(t, err)

	last := "Anders"
	updated, err := svc.Update(ctx, first.ID, UpdateUserInput{LastName: &last})
	require.NoError(t, err)
	require.Equal(t, "Anders", updated.LastName)

	result, err := svc.List(ctx, ListUsersOptions{ListOptions: ListOptions{Page: 1, PerPage: 10, Query: "ANDERS"}})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, first.ID, result.Items[0].ID)

	require.NoError(t, svc.SetActive(ctx, first.ID, false))
	inactive := false
	result, err = svc.List(ctx, ListUsersOptions{ListOptions: ListOptions{Page: 1, PerPage: 10}, Filters: UserFilters{IsActive: &inactive}})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	ids, err := svc.ActiveUserIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	require.NoError(t, svc.Delete(ctx, first.ID))
	_, err = svc.GetByID(ctx, first.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceChangePassword(t *testing.T) {
	_, svc := setupUserServiceTest(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{Username: "rotate", Email: "rotate@example.com", Password: strongPassword})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "short"), apperrors.ErrBadRequest)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, "Rotated@99"))

	found, err := svc.FindByLogin(ctx, "rotate")
	require.NoError(t, err)
	require.True(t, crypto.VerifyPassword(found.Password, "Rotated@99"))

	require.ErrorIs(t, svc.ChangePassword(ctx, "missing", "Rotated@99"), ErrUserNotFound)
}
