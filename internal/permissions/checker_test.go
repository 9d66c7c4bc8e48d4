package permissions

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/charlesng35/fleetcn/internal/models"
)

func TestNewCheckerRequiresDB(t *testing.T) {
	_, err := NewChecker(nil)
	require.Error(t, err)
}

func TestCheckerRootHasFullAccess(t *testing.T) {
	db := setupPermissionTestDB(t)

	root := &models.User{
		Username: "root",
		Email:    "root@example.com",
		Password: "hashed",
		IsRoot:   true,
		IsActive: true,
	}
	require.NoError(t, db.Create(root).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	for _, res := range List() {
		for _, action := range Actions() {
			ok, err := checker.Check(context.Background(), root.ID, res.ID, action)
			require.NoError(t, err)
			require.True(t, ok)
		}
	}

	ok, err := checker.Check(context.Background(), root.ID, "not.registered", ActionView)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerEvaluatesRoleRecords(t *testing.T) {
	db := setupPermissionTestDB(t)

	role := &models.Role{Name: "Dispatcher"}
	require.NoError(t, db.Create(role).Error)
	require.NoError(t, db.Create(&[]models.RolePermission{
		{RoleID: role.ID, MenuID: ResourceVehicles, CanView: true, CanEdit: true},
		{RoleID: role.ID, MenuID: ResourceLicenses, CanAll: true},
	}).Error)

	user := &models.User{
		Username: "dispatcher",
		Email:    "dispatcher@example.com",
		Password: "secret",
		RoleID:   &role.ID,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)
	ctx := context.Background()

	cases := []struct {
		resource string
		action   Action
		want     bool
	}{
		{ResourceVehicles, ActionView, true},
		{ResourceVehicles, ActionEdit, true},
		{ResourceVehicles, ActionInsert, false},
		{ResourceVehicles, ActionDelete, false},
		{ResourceLicenses, ActionDelete, true},
		{ResourceEmployees, ActionView, false},
	}
	for _, tc := range cases {
		ok, err := checker.Check(ctx, user.ID, tc.resource, tc.action)
		require.NoError(t, err)
		require.Equal(t, tc.want, ok, "%s:%s", tc.resource, tc.action)
	}

	snapshot, err := checker.Snapshot(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	roleSnapshot, err := checker.RoleSnapshot(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, snapshot, roleSnapshot)
}

func TestCheckerFailsClosed(t *testing.T) {
	db := setupPermissionTestDB(t)
	checker, err := NewChecker(db)
	require.NoError(t, err)
	ctx := context.Background()

	noRole := &models.User{Username: "norole", Email: "norole@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(noRole).Error)

	ok, err := checker.Check(ctx, noRole.ID, ResourceVehicles, ActionView)
	require.NoError(t, err)
	require.False(t, ok)

	role := &models.Role{Name: "Full"}
	require.NoError(t, db.Create(role).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, MenuID: ResourceVehicles, CanAll: true}).Error)

	inactive := &models.User{Username: "inactive", Email: "inactive@example.com", Password: "x", RoleID: &role.ID, IsActive: true}
	require.NoError(t, db.Create(inactive).Error)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	ok, err = checker.Check(ctx, inactive.ID, ResourceVehicles, ActionView)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = checker.Check(ctx, uuid.NewString(), ResourceVehicles, ActionView)
	require.ErrorIs(t, err, ErrUnknownUser)

	_, err = checker.Check(ctx, "  ", ResourceVehicles, ActionView)
	require.Error(t, err)
}

func TestSyncWritesMenus(t *testing.T) {
	db := setupPermissionTestDB(t)

	var menus []models.Menu
	require.NoError(t, db.Order("sort_order ASC").Find(&menus).Error)
	require.Len(t, menus, len(List()))
	require.Equal(t, ResourceDashboard, menus[0].ID)

	require.NoError(t, db.Model(&models.Menu{}).Where("id = ?", ResourceVehicles).Update("name", "Old").Error)
	require.NoError(t, Sync(context.Background(), db))

	var vehicles models.Menu
	require.NoError(t, db.First(&vehicles, "id = ?", ResourceVehicles).Error)
	require.Equal(t, "Vehicles", vehicles.Name)

	require.Error(t, Sync(context.Background(), nil))
}

func setupPermissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Menu{},
		&models.RolePermission{},
	))
	require.NoError(t, Sync(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
