package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/database"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/logger"
	"github.com/charlesng35/fleetcn/pkg/response"
)

var errDatabaseUnavailable = errors.New("SERVICE_UNAVAILABLE", "Database unavailable", http.StatusServiceUnavailable)

// Health answers readiness checks. When db is set the connection is pinged and the time
// of the last expiry scan, if any, is reported.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if db != nil {
			ctx := requestContext(c)
			if err := pingDatabase(ctx, db); err != nil {
				logger.WithModule("health").Warn("database ping failed", zap.Error(err))
				response.Error(c, errDatabaseUnavailable.WithInternal(err))
				return
			}
			if last, err := database.GetSystemSetting(ctx, db, database.SettingLastExpiryScan); err == nil && last != "" {
				body["last_expiry_scan"] = last
			}
		}
		response.Success(c, http.StatusOK, body)
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
