package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/models"
)

func TestSystemSettingRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.SystemSetting{}))

	value, err := GetSystemSetting(ctx, db, SettingLastExpiryScan)
	require.NoError(t, err)
	require.Empty(t, value)

	for _, stamp := range []string{"2026-10-01T06:00:00Z", "2026-10-02T06:00:00Z"} {
		require.NoError(t, UpsertSystemSetting(ctx, db, SettingLastExpiryScan, stamp))

		value, err = GetSystemSetting(ctx, db, " "+SettingLastExpiryScan+" ")
		require.NoError(t, err)
		require.Equal(t, stamp, value)
	}

	var rows int64
	require.NoError(t, db.Model(&models.SystemSetting{}).Count(&rows).Error)
	require.EqualValues(t, 1, rows)
}

func TestGetSystemSettingBeforeMigration(t *testing.T) {
	value, err := GetSystemSetting(context.Background(), openTestDB(t), SettingLastExpiryScan)
	require.NoError(t, err)
	require.Empty(t, value)
}

func TestSystemSettingArguments(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := GetSystemSetting(ctx, db, "  ")
	require.Error(t, err)
	_, err = GetSystemSetting(ctx, nil, "key")
	require.Error(t, err)
	require.Error(t, UpsertSystemSetting(ctx, db, "  ", "value"))
	require.Error(t, UpsertSystemSetting(ctx, nil, "key", "value"))
}

func TestGetSystemSettingQueryErrors(t *testing.T) {
	db, mock := openMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "system_settings"`).
		WillReturnError(errors.New(`ERROR: relation "system_settings" does not exist (SQLSTATE 42P01)`))
	value, err := GetSystemSetting(context.Background(), db, SettingLastExpiryScan)
	require.NoError(t, err)
	require.Empty(t, value)

	boom := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "system_settings"`).WillReturnError(boom)
	_, err = GetSystemSetting(context.Background(), db, SettingLastExpiryScan)
	require.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}
