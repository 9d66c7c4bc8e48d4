package middleware

import (
	"context"
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/logger"
	"github.com/charlesng35/fleetcn/pkg/metrics"
	"github.com/charlesng35/fleetcn/pkg/response"
)

// PermissionChecker answers whether a user may perform an action on a resource.
type PermissionChecker interface {
	Check(ctx context.Context, userID, resourceID string, action permissions.Action) (bool, error)
}

// RequirePermission aborts with 403 unless the authenticated user's snapshot allows action
// on resourceID.
func RequirePermission(checker PermissionChecker, resourceID string, action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowed, err := checker.Check(c.Request.Context(), userID, resourceID, action)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues(resourceID, string(action), "error").Inc()
			if stderrors.Is(err, permissions.ErrUnknownUser) {
				response.Error(c, errors.ErrUnauthorized)
				c.Abort()
				return
			}
			logger.WithModule("permissions").Error("permission check failed",
				zap.String("user_id", userID),
				zap.String("resource", resourceID),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			response.Error(c, errors.ErrInternalServer)
			c.Abort()
			return
		}
		if !allowed {
			metrics.PermissionChecks.WithLabelValues(resourceID, string(action), "denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(resourceID, string(action), "allowed").Inc()
		c.Next()
	}
}
