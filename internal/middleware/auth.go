package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/internal/auditctx"
	iauth "github.com/charlesng35/fleetcn/internal/auth"
	"github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
)

// TokenVerifier validates bearer tokens issued by the identity provider.
type TokenVerifier interface {
	Verify(token string) (*iauth.Claims, error)
}

// Auth enforces bearer-token authentication using the supplied verifier.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c)
			return
		}
		// Every verification failure is a plain 401; the reason is not disclosed.
		claims, err := verifier.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}

		userID := claims.Identity()
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, userID)
		if claims.SessionID != "" {
			c.Set(CtxSessionIDKey, claims.SessionID)
		}
		c.Request = c.Request.WithContext(auditctx.WithActor(c.Request.Context(), auditctx.Actor{
			UserID:    userID,
			SessionID: claims.SessionID,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}))

		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error(c, errors.ErrUnauthorized)
	c.Abort()
}

// bearerToken reads the token from the Authorization header. Browsers cannot set headers on
// WebSocket upgrades, so upgrade requests may pass it as the access_token query parameter.
func bearerToken(c *gin.Context) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		token := strings.TrimSpace(authz[7:])
		return token, token != ""
	}

	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		token := strings.TrimSpace(c.Query("access_token"))
		return token, token != ""
	}
	return "", false
}
