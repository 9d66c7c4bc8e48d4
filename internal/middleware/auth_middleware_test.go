package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/auditctx"
	iauth "github.com/charlesng35/fleetcn/internal/auth"
)

const authTestSecret = "middleware-test-secret"

func signClaims(t *testing.T, claims *iauth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(authTestSecret))
	require.NoError(t, err)
	return token
}

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := iauth.NewTokenVerifier(iauth.VerifierConfig{Secret: authTestSecret, Issuer: "fleet-idp"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/vehicles", Auth(verifier), func(c *gin.Context) {
		actor, _ := auditctx.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString(CtxUserIDKey),
			"session_id": c.GetString(CtxSessionIDKey),
			"actor":      actor.UserID,
			"actor_sid":  actor.SessionID,
		})
	})
	return r
}

func TestAuthBearerToken(t *testing.T) {
	r := authRouter(t)
	valid := signClaims(t, &iauth.Claims{
		UserID:    "user-123",
		SessionID: "session-abc",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fleet-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	expired := signClaims(t, &iauth.Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fleet-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	cases := []struct {
		name    string
		path    string
		headers map[string]string
		status  int
	}{
		{"no credentials", "/api/vehicles", nil, http.StatusUnauthorized},
		{"empty bearer", "/api/vehicles", map[string]string{"Authorization": "Bearer "}, http.StatusUnauthorized},
		{"other scheme", "/api/vehicles", map[string]string{"Authorization": "Basic " + valid}, http.StatusUnauthorized},
		{"tampered", "/api/vehicles", map[string]string{"Authorization": "Bearer " + valid + "x"}, http.StatusUnauthorized},
		{"expired", "/api/vehicles", map[string]string{"Authorization": "Bearer " + expired}, http.StatusUnauthorized},
		{"query token without upgrade", "/api/vehicles?access_token=" + valid, nil, http.StatusUnauthorized},
		{"lower case scheme", "/api/vehicles", map[string]string{"Authorization": "bearer " + valid}, http.StatusOK},
		{"query token on upgrade", "/api/vehicles?access_token=" + valid, map[string]string{"Upgrade": "websocket"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusUnauthorized {
				require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				return
			}
			require.JSONEq(t, `{"user_id":"user-123","session_id":"session-abc","actor":"user-123","actor_sid":"session-abc"}`, w.Body.String())
		})
	}
}

func TestAuthFallsBackToSubject(t *testing.T) {
	r := authRouter(t)
	token := signClaims(t, &iauth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-9",
			Issuer:    "fleet-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":"user-9","session_id":"","actor":"user-9","actor_sid":""}`, w.Body.String())
}
