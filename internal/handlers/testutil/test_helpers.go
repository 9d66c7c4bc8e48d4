// Package testutil builds a fully wired API over an in-memory database for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/api"
	"github.com/charlesng35/fleetcn/internal/app"
	iauth "github.com/charlesng35/fleetcn/internal/auth"
	sharedtestutil "github.com/charlesng35/fleetcn/internal/database/testutil"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/realtime"
	"github.com/charlesng35/fleetcn/pkg/crypto"
	"github.com/charlesng35/fleetcn/pkg/response"
)

const (
	tokenSecret = "handler-tests-hs256-secret-0123456789"
	tokenIssuer = "fleet-idp"
)

// Env is one API instance with seeded roles and menus.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Hub    *realtime.Hub
	Config *app.Config
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &app.Config{}
	cfg.Auth.JWT = app.JWTSettings{Secret: tokenSecret, Issuer: tokenIssuer}
	cfg.Pagination = app.PaginationConfig{DefaultPerPage: 10, MaxPerPage: 50}
	cfg.Notifications.Enabled = true
	cfg.Monitoring.Prometheus = app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"}
	cfg.Monitoring.Health.Enabled = true

	verifier, err := iauth.NewTokenVerifier(cfg.Auth.VerifierConfig())
	require.NoError(t, err)

	env := &Env{
		T:      t,
		DB:     sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData()),
		Hub:    realtime.NewHub(),
		Config: cfg,
	}
	env.Router, err = api.NewRouter(env.DB, verifier, cfg, env.Hub, nil)
	require.NoError(t, err)
	return env
}

// CreateRootUser adds an active root account.
func (e *Env) CreateRootUser() *models.User {
	e.T.Helper()
	return e.insertUser(func(u *models.User) { u.IsRoot = true })
}

// CreateUserWithRole adds an active account holding roleID, or no role when roleID is "".
func (e *Env) CreateUserWithRole(roleID string) *models.User {
	e.T.Helper()
	return e.insertUser(func(u *models.User) {
		if roleID != "" {
			u.RoleID = &roleID
		}
	})
}

func (e *Env) insertUser(configure func(*models.User)) *models.User {
	e.T.Helper()

	hash, err := crypto.HashPassword("Fleet@Tests1")
	require.NoError(e.T, err)

	name := "driver-" + uuid.NewString()[:8]
	user := &models.User{Username: name, Email: name + "@fleet.test", Password: hash, IsActive: true}
	configure(user)
	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// Token returns an hour-long access token for userID, signed as the identity provider would.
func (e *Env) Token(userID string) string {
	e.T.Helper()

	issued := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &iauth.Claims{
		UserID:    userID,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(tokenSecret))
	require.NoError(e.T, err)
	return signed
}

// Request serves one request. A non-nil body is sent as JSON and a non-empty token as a
// bearer credential.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.T, err)
		payload = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// APIResponse mirrors response.Response with the data left raw.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var out APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// DecodeInto unmarshals a raw data payload into dest.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	require.NotNil(t, dest)
	require.NoError(t, json.Unmarshal(raw, dest))
}
