package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/database"
	"github.com/charlesng35/fleetcn/internal/handlers/testutil"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/internal/permissions"
	"github.com/charlesng35/fleetcn/pkg/pagination"
)

func TestVehicleHandler_CRUD(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(env.CreateRootUser().ID)

	resp := env.Request(http.MethodPost, "/api/vehicles", map[string]any{
		"plate": " ab  123 cd ",
		"make":  "Volvo",
		"year":  2021,
	}, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created models.Vehicle
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &created)
	require.Equal(t, "AB 123 CD", created.Plate)
	require.Equal(t, models.VehicleStatusActive, created.Status)

	dup := env.Request(http.MethodPost, "/api/vehicles", map[string]any{"plate": "ab 123 cd"}, token)
	require.Equal(t, http.StatusConflict, dup.Code, dup.Body.String())

	invalid := env.Request(http.MethodPost, "/api/vehicles", map[string]any{"plate": "X1", "status": "sold"}, token)
	require.Equal(t, http.StatusBadRequest, invalid.Code)

	patch := env.Request(http.MethodPatch, "/api/vehicles/"+created.ID, map[string]any{"status": "maintenance", "mileage": 1200}, token)
	require.Equal(t, http.StatusOK, patch.Code, patch.Body.String())
	var updated models.Vehicle
	testutil.DecodeInto(t, testutil.DecodeResponse(t, patch).Data, &updated)
	require.Equal(t, "maintenance", updated.Status)
	require.Equal(t, 1200, updated.Mileage)

	del := env.Request(http.MethodDelete, "/api/vehicles/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, del.Code)

	missing := env.Request(http.MethodGet, "/api/vehicles/"+created.ID, nil, token)
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestVehicleHandler_ListPageWindow(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(env.CreateRootUser().ID)

	for i := 0; i < 12; i++ {
		resp := env.Request(http.MethodPost, "/api/vehicles", map[string]any{"plate": fmt.Sprintf("FL-%02d", i)}, token)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}

	resp := env.Request(http.MethodGet, "/api/vehicles?page=3&per_page=5", nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	payload := testutil.DecodeResponse(t, resp)
	require.NotNil(t, payload.Meta)
	require.Equal(t, 3, payload.Meta.Page)
	require.Equal(t, 5, payload.Meta.PerPage)
	require.Equal(t, 12, payload.Meta.Total)
	require.Equal(t, 3, payload.Meta.TotalPages)
	require.Equal(t, []pagination.Token{pagination.Page(1), pagination.Page(2), pagination.Page(3)}, payload.Meta.Pages)

	var items []models.Vehicle
	testutil.DecodeInto(t, payload.Data, &items)
	require.Len(t, items, 2)

	clamped := testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/vehicles?page=40&per_page=5", nil, token))
	require.Equal(t, 3, clamped.Meta.Page)

	capped := testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/vehicles?per_page=1000", nil, token))
	require.Equal(t, 50, capped.Meta.PerPage)

	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/vehicles?per_page=0", nil, token).Code)
	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/vehicles?page=two", nil, token).Code)

	search := testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/vehicles?q=fl-07", nil, token))
	require.Equal(t, 1, search.Meta.Total)
}

func TestRoutes_EnforceMenuPermissions(t *testing.T) {
	env := testutil.NewEnv(t)
	operator := env.Token(env.CreateUserWithRole(models.RoleOperatorID).ID)
	noRole := env.Token(env.CreateUserWithRole("").ID)
	root := env.Token(env.CreateRootUser().ID)

	resp := env.Request(http.MethodPost, "/api/vehicles", map[string]any{"plate": "OPS-1"}, operator)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var vehicle models.Vehicle
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &vehicle)

	require.Equal(t, http.StatusOK, env.Request(http.MethodGet, "/api/vehicles", nil, operator).Code)
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodDelete, "/api/vehicles/"+vehicle.ID, nil, operator).Code)
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodGet, "/api/users", nil, operator).Code)
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodGet, "/api/permissions/roles", nil, operator).Code)

	require.Equal(t, http.StatusForbidden, env.Request(http.MethodGet, "/api/vehicles", nil, noRole).Code)
	require.Equal(t, http.StatusUnauthorized, env.Request(http.MethodGet, "/api/vehicles", nil, "").Code)
	require.Equal(t, http.StatusUnauthorized, env.Request(http.MethodGet, "/api/vehicles", nil, env.Token("ghost")).Code)

	require.Equal(t, http.StatusOK, env.Request(http.MethodDelete, "/api/vehicles/"+vehicle.ID, nil, root).Code)
}

func TestPermissionHandler_SelfQueries(t *testing.T) {
	env := testutil.NewEnv(t)
	operator := env.Token(env.CreateUserWithRole(models.RoleOperatorID).ID)
	noRole := env.Token(env.CreateUserWithRole("").ID)

	type checkResult struct {
		Resource string `json:"resource"`
		Action   string `json:"action"`
		Allowed  bool   `json:"allowed"`
	}
	check := func(token, resource, action string) checkResult {
		t.Helper()
		resp := env.Request(http.MethodGet, "/api/permissions/check?resource="+resource+"&action="+action, nil, token)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var out checkResult
		testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &out)
		return out
	}

	require.True(t, check(operator, "vehicles", "edit").Allowed)
	require.False(t, check(operator, "vehicles", "delete").Allowed)
	require.False(t, check(operator, "users", "view").Allowed)
	require.False(t, check(operator, "Vehicles", "view").Allowed)
	require.False(t, check(noRole, "vehicles", "view").Allowed)

	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/permissions/check?resource=vehicles&action=approve", nil, operator).Code)
	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/permissions/check?action=view", nil, operator).Code)

	var snapshot []permissions.Record
	testutil.DecodeInto(t, testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/permissions/my", nil, noRole)).Data, &snapshot)
	require.Empty(t, snapshot)

	var menus []permissions.Resource
	testutil.DecodeInto(t, testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/permissions/menus", nil, operator)).Data, &menus)
	ids := make([]string, 0, len(menus))
	for _, m := range menus {
		ids = append(ids, m.ID)
	}
	require.Contains(t, ids, permissions.ResourceVehicles)
	require.Contains(t, ids, permissions.ResourceDashboard)
	require.NotContains(t, ids, permissions.ResourceUsers)
}

func TestPermissionHandler_RoleLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	root := env.Token(env.CreateRootUser().ID)

	resp := env.Request(http.MethodPost, "/api/permissions/roles", map[string]any{"name": "Auditor", "description": "Read-only"}, root)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var role models.Role
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &role)
	require.NotEmpty(t, role.ID)

	put := env.Request(http.MethodPut, "/api/permissions/roles/"+role.ID+"/permissions", map[string]any{
		"permissions": []permissions.Record{
			{ResourceID: permissions.ResourceLicenses, CanView: true},
			{ResourceID: permissions.ResourceServices, CanAll: true},
		},
	}, root)
	require.Equal(t, http.StatusOK, put.Code, put.Body.String())

	var listing []permissions.Record
	testutil.DecodeInto(t, testutil.DecodeResponse(t, put).Data, &listing)
	require.Len(t, listing, len(permissions.List()))

	dup := env.Request(http.MethodPut, "/api/permissions/roles/"+role.ID+"/permissions", map[string]any{
		"permissions": []permissions.Record{
			{ResourceID: permissions.ResourceLicenses, CanView: true},
			{ResourceID: permissions.ResourceLicenses, CanEdit: true},
		},
	}, root)
	require.Equal(t, http.StatusBadRequest, dup.Code)

	unknown := env.Request(http.MethodPut, "/api/permissions/roles/"+role.ID+"/permissions", map[string]any{
		"permissions": []permissions.Record{{ResourceID: "payroll", CanView: true}},
	}, root)
	require.Equal(t, http.StatusBadRequest, unknown.Code)

	auditor := env.CreateUserWithRole("")
	assign := env.Request(http.MethodPut, "/api/users/"+auditor.ID+"/role", map[string]any{"role_id": role.ID}, root)
	require.Equal(t, http.StatusOK, assign.Code, assign.Body.String())

	token := env.Token(auditor.ID)
	require.Equal(t, http.StatusOK, env.Request(http.MethodGet, "/api/licenses", nil, token).Code)
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodPost, "/api/licenses", map[string]any{}, token).Code)
	require.Equal(t, http.StatusOK, env.Request(http.MethodGet, "/api/services", nil, token).Code)
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodGet, "/api/vehicles", nil, token).Code)
}

func TestPageWindowEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(env.CreateUserWithRole("").ID)

	type windowPayload struct {
		Page       int                `json:"page"`
		TotalPages int                `json:"total_pages"`
		Pages      []pagination.Token `json:"pages"`
	}
	get := func(query string) windowPayload {
		t.Helper()
		resp := env.Request(http.MethodGet, "/api/pages?"+query, nil, token)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var out windowPayload
		testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &out)
		return out
	}

	mid := get("total=200&per_page=10&page=10")
	require.Equal(t, 20, mid.TotalPages)
	require.Equal(t, []pagination.Token{
		pagination.Page(1), pagination.Ellipsis,
		pagination.Page(9), pagination.Page(10), pagination.Page(11),
		pagination.Ellipsis, pagination.Page(20),
	}, mid.Pages)

	require.Equal(t, 20, get("total=200&per_page=10&page=19&delta=5").Page)
	require.Equal(t, 1, get("total=200&per_page=10&page=2&delta=-5").Page)
	require.Equal(t, 20, get("total=200&per_page=10&page=99").Page)

	empty := get("total=0&per_page=10")
	require.Empty(t, empty.Pages)
	require.Equal(t, 0, empty.TotalPages)

	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/pages?total=10&per_page=0", nil, token).Code)
	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/pages?total=-1", nil, token).Code)
}

func TestCertificateHandler_Expiring(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(env.CreateRootUser().ID)

	resp := env.Request(http.MethodPost, "/api/employees", map[string]any{"first_name": "Ana", "last_name": "Ruiz"}, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var employee models.Employee
	testutil.DecodeInto(t, testutil.DecodeResponse(t, resp).Data, &employee)

	now := time.Now().UTC()
	soon := now.AddDate(0, 0, 10)
	later := now.AddDate(0, 0, 200)
	for name, expiry := range map[string]time.Time{"Forklift": soon, "First aid": later} {
		create := env.Request(http.MethodPost, "/api/certificates", map[string]any{
			"employee_id": employee.ID,
			"name":        name,
			"issued_at":   now.AddDate(-1, 0, 0),
			"expires_at":  expiry,
		}, token)
		require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	}

	var expiring []models.Certificate
	testutil.DecodeInto(t, testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/certificates/expiring", nil, token)).Data, &expiring)
	require.Len(t, expiring, 1)
	require.Equal(t, "Forklift", expiring[0].Name)

	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/certificates/expiring?days=0", nil, token).Code)

	backwards := env.Request(http.MethodPost, "/api/certificates", map[string]any{
		"employee_id": employee.ID,
		"name":        "Backwards",
		"issued_at":   now,
		"expires_at":  now.AddDate(0, 0, -1),
	}, token)
	require.Equal(t, http.StatusBadRequest, backwards.Code)
}

func TestNotificationRoutes_ListAndUnreadCount(t *testing.T) {
	env := testutil.NewEnv(t)
	root := env.Token(env.CreateRootUser().ID)
	operatorUser := env.CreateUserWithRole(models.RoleOperatorID)
	operator := env.Token(operatorUser.ID)

	for i := 0; i < 3; i++ {
		resp := env.Request(http.MethodPost, "/api/notifications", map[string]any{
			"user_id": operatorUser.ID,
			"type":    "vehicle.service_due",
			"title":   fmt.Sprintf("Service due %d", i),
		}, root)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}
	require.Equal(t, http.StatusForbidden, env.Request(http.MethodPost, "/api/notifications", map[string]any{
		"user_id": operatorUser.ID, "type": "x", "title": "y",
	}, operator).Code)

	list := testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/notifications?per_page=2", nil, operator))
	require.Equal(t, 3, list.Meta.Total)
	require.Equal(t, 2, list.Meta.TotalPages)

	var count map[string]int64
	testutil.DecodeInto(t, testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/notifications/unread-count", nil, operator)).Data, &count)
	require.EqualValues(t, 3, count["unread"])

	require.Equal(t, http.StatusOK, env.Request(http.MethodPost, "/api/notifications/read-all", nil, operator).Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/notifications/unread-count", nil, operator)).Data, &count)
	require.EqualValues(t, 0, count["unread"])

	unread := testutil.DecodeResponse(t, env.Request(http.MethodGet, "/api/notifications?unread=true", nil, operator))
	require.Equal(t, 0, unread.Meta.Total)
}

func TestAuditHandler_ListAndExport(t *testing.T) {
	env := testutil.NewEnv(t)
	rootUser := env.CreateRootUser()
	token := env.Token(rootUser.ID)

	require.Equal(t, http.StatusCreated, env.Request(http.MethodPost, "/api/vehicles", map[string]any{"plate": "AUD-1"}, token).Code)

	resp := env.Request(http.MethodGet, "/api/audit?action=vehicle.create", nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	payload := testutil.DecodeResponse(t, resp)
	require.Equal(t, 1, payload.Meta.Total)

	var logs []models.AuditLog
	testutil.DecodeInto(t, payload.Data, &logs)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].UserID)
	require.Equal(t, rootUser.ID, *logs[0].UserID)

	export := env.Request(http.MethodGet, "/api/audit/export?user_id="+rootUser.ID, nil, token)
	require.Equal(t, http.StatusOK, export.Code)
	require.Contains(t, export.Header().Get("Content-Disposition"), "audit.json")

	require.Equal(t, http.StatusBadRequest, env.Request(http.MethodGet, "/api/audit?since=yesterday", nil, token).Code)
}

func TestPublicEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	health := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, health.Code)
	require.NotContains(t, health.Body.String(), "last_expiry_scan")

	require.NoError(t, database.UpsertSystemSetting(context.Background(), env.DB, database.SettingLastExpiryScan, "2026-10-01T06:00:00Z"))
	health = env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, health.Code)
	require.Contains(t, health.Body.String(), `"last_expiry_scan":"2026-10-01T06:00:00Z"`)

	metrics := env.Request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, metrics.Code)

	missing := env.Request(http.MethodGet, "/nowhere", nil, "")
	require.Equal(t, http.StatusNotFound, missing.Code)
}
