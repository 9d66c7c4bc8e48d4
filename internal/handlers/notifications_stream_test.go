package handlers_test

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/handlers/testutil"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/realtime"
)

func dialStream(t *testing.T, server *httptest.Server, token, streams string) *websocket.Conn {
	t.Helper()

	query := url.Values{}
	query.Set("access_token", token)
	if streams != "" {
		query.Set("streams", streams)
	}
	target := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/notifications/stream?" + query.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNotificationStream_FiltersStreamsBySnapshot(t *testing.T) {
	env := testutil.NewEnv(t)
	server := httptest.NewServer(env.Router)
	t.Cleanup(server.Close)

	operator := env.Token(env.CreateUserWithRole(models.RoleOperatorID).ID)
	dialStream(t, server, operator, realtime.StreamNotifications+","+realtime.StreamExpiry)

	require.Eventually(t, func() bool {
		return env.Hub.Subscribers(realtime.StreamNotifications) == 1 && env.Hub.Subscribers(realtime.StreamExpiry) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotificationStream_DeniesExpiryWithoutDocumentAccess(t *testing.T) {
	env := testutil.NewEnv(t)
	server := httptest.NewServer(env.Router)
	t.Cleanup(server.Close)

	// Notifications only, no certificate or licence access.
	role := models.Role{Name: "Inbox only"}
	require.NoError(t, env.DB.Create(&role).Error)
	require.NoError(t, env.DB.Create(&models.RolePermission{RoleID: role.ID, MenuID: "notifications", CanView: true}).Error)

	token := env.Token(env.CreateUserWithRole(role.ID).ID)
	dialStream(t, server, token, realtime.StreamNotifications+","+realtime.StreamExpiry)

	require.Eventually(t, func() bool {
		return env.Hub.Subscribers(realtime.StreamNotifications) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 0, env.Hub.Subscribers(realtime.StreamExpiry))
}

func TestNotificationStream_RejectsMissingToken(t *testing.T) {
	env := testutil.NewEnv(t)
	server := httptest.NewServer(env.Router)
	t.Cleanup(server.Close)

	target := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/notifications/stream"
	_, resp, err := websocket.DefaultDialer.Dial(target, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 401, resp.StatusCode)
}
