package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/models"
)

func TestHasPermissionEmptySnapshotDenies(t *testing.T) {
	for _, resource := range []string{"", ResourceVehicles, "unknown"} {
		for _, action := range Actions() {
			require.False(t, HasPermission(nil, resource, action))
			require.False(t, HasPermission([]Record{}, resource, action))
		}
	}
}

func TestHasPermissionCanAllOverridesFlags(t *testing.T) {
	rec := Record{ResourceID: ResourceVehicles, CanAll: true}
	for _, action := range Actions() {
		require.True(t, HasPermission([]Record{rec}, ResourceVehicles, action), "action %s", action)
	}
	require.False(t, HasPermission([]Record{rec}, ResourceEmployees, ActionView))
}

func TestHasPermissionMatchesIndividualFlags(t *testing.T) {
	// Every combination of the four flags with CanAll off.
	for mask := 0; mask < 16; mask++ {
		rec := Record{
			ResourceID: ResourceLicenses,
			CanView:    mask&1 != 0,
			CanInsert:  mask&2 != 0,
			CanEdit:    mask&4 != 0,
			CanDelete:  mask&8 != 0,
		}
		perms := []Record{rec}

		require.Equal(t, rec.CanView, HasPermission(perms, ResourceLicenses, ActionView))
		require.Equal(t, rec.CanInsert, HasPermission(perms, ResourceLicenses, ActionInsert))
		require.Equal(t, rec.CanEdit, HasPermission(perms, ResourceLicenses, ActionEdit))
		require.Equal(t, rec.CanDelete, HasPermission(perms, ResourceLicenses, ActionDelete))
	}
}

func TestHasPermissionExactResourceMatch(t *testing.T) {
	perms := []Record{FullAccess(ResourceVehicles)}

	require.False(t, HasPermission(perms, "Vehicles", ActionView))
	require.False(t, HasPermission(perms, "vehicles/", ActionView))
	require.False(t, HasPermission(perms, "*", ActionView))
	require.False(t, HasPermission(perms, "", ActionView))
	require.True(t, HasPermission(perms, ResourceVehicles, ActionView))
}

func TestHasPermissionFirstMatchWins(t *testing.T) {
	perms := []Record{
		{ResourceID: ResourceServices, CanView: true},
		{ResourceID: ResourceServices, CanAll: true},
	}

	require.True(t, HasPermission(perms, ResourceServices, ActionView))
	require.False(t, HasPermission(perms, ResourceServices, ActionDelete))
}

func TestHasPermissionUnknownActionDenied(t *testing.T) {
	perms := []Record{{ResourceID: ResourceUsers, CanView: true, CanInsert: true, CanEdit: true, CanDelete: true}}
	require.False(t, HasPermission(perms, ResourceUsers, Action("export")))

	perms = []Record{FullAccess(ResourceUsers)}
	require.True(t, HasPermission(perms, ResourceUsers, Action("export")))
}

func TestHasPermissionDoesNotMutateSnapshot(t *testing.T) {
	perms := []Record{
		{ResourceID: ResourceEmployees, CanView: true},
		{ResourceID: ResourceVehicles, CanEdit: true},
	}
	before := append([]Record(nil), perms...)

	HasPermission(perms, ResourceVehicles, ActionEdit)
	HasPermission(perms, ResourceEmployees, ActionDelete)

	require.Equal(t, before, perms)
}

func TestParseAction(t *testing.T) {
	for _, action := range Actions() {
		parsed, err := ParseAction(" " + string(action) + " ")
		require.NoError(t, err)
		require.Equal(t, action, parsed)
	}

	parsed, err := ParseAction("EDIT")
	require.NoError(t, err)
	require.Equal(t, ActionEdit, parsed)

	_, err = ParseAction("update")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestRecordFromModel(t *testing.T) {
	rec := RecordFromModel(models.RolePermission{
		MenuID:    ResourceCertificates,
		CanView:   true,
		CanDelete: true,
	})

	require.Equal(t, Record{ResourceID: ResourceCertificates, CanView: true, CanDelete: true}, rec)
}
