package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/fleetcn/internal/models"
)

// Sync persists registered resources to the menus table.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)

	resources := List()
	if len(resources) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for _, res := range resources {
		menu := models.Menu{
			ID:          res.ID,
			Name:        res.Name,
			Path:        res.Path,
			Icon:        res.Icon,
			Description: res.Description,
			SortOrder:   res.SortOrder,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "path", "icon", "description", "sort_order", "updated_at"}),
		}).Create(&menu).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", res.ID, err)
		}
	}

	return nil
}
