package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/fleetcn/internal/models"
)

// SettingLastExpiryScan holds the RFC3339 time of the last completed expiry scan.
const SettingLastExpiryScan = "maintenance.expiry.last_run"

// GetSystemSetting returns the stored value for key, or "" when the key (or the settings
// table itself) does not exist yet.
func GetSystemSetting(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if db == nil {
		return "", errors.New("system settings: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("system settings: key is required")
	}

	var setting models.SystemSetting
	err := db.WithContext(ctx).Where(&models.SystemSetting{Key: key}).Take(&setting).Error
	switch {
	case err == nil:
		return setting.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound), isMissingTable(err):
		return "", nil
	default:
		return "", fmt.Errorf("system settings: get %q: %w", key, err)
	}
}

// UpsertSystemSetting stores value under key, replacing any previous value.
func UpsertSystemSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	if db == nil {
		return errors.New("system settings: db is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("system settings: key is required")
	}

	setting := models.SystemSetting{Key: key, Value: value}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("system settings: upsert %q: %w", key, err)
	}
	return nil
}

func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "doesn't exist")
}
