package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/auditctx"
	"github.com/charlesng35/fleetcn/internal/database/testutil"
	"github.com/charlesng35/fleetcn/internal/models"
	"github.com/charlesng35/fleetcn/pkg/crypto"
	"github.com/charlesng35/fleetcn/pkg/pagination"
)

func TestAuditServiceLogListAndExport(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	hashed, err := crypto.HashPassword("Secret@123")
	require.NoError(t, err)

	user := models.User{
		Username: "auditor",
		Email:    "auditor@example.com",
		Password: hashed,
	}
	require.NoError(t, db.Create(&user).Error)

	ctx := context.Background()
	err = svc.Log(ctx, AuditEntry{
		UserID:   &user.ID,
		Username: "auditor",
		Action:   "user.create",
		Resource: "users",
		Result:   "success",
		Metadata: map[string]any{"email": user.Email},
	})
	require.NoError(t, err)

	result, err := svc.List(ctx, AuditListOptions{ListOptions: ListOptions{Page: 1, PerPage: 10}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Window.TotalItems())
	require.Len(t, result.Items, 1)
	require.Equal(t, "user.create", result.Items[0].Action)
	require.NotNil(t, result.Items[0].User)
	require.Equal(t, user.ID, result.Items[0].User.ID)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Items[0].Metadata), &metadata))
	require.Equal(t, user.Email, metadata["email"])

	exported, err := svc.Export(ctx, AuditFilters{Result: "success"})
	require.NoError(t, err)
	require.Len(t, exported, 1)
}

func TestAuditServiceListClampsPageAndSearches(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		action := fmt.Sprintf("vehicle.update.%02d", i)
		if i%5 == 0 {
			action = fmt.Sprintf("license.create.%02d", i)
		}
		require.NoError(t, svc.Log(ctx, AuditEntry{Action: action, Result: "success"}))
	}

	result, err := svc.List(ctx, AuditListOptions{ListOptions: ListOptions{Page: 99, PerPage: 10}})
	require.NoError(t, err)
	require.Equal(t, 3, result.Window.TotalPages())
	require.Equal(t, 3, result.Page)
	require.Len(t, result.Items, 5)

	result, err = svc.List(ctx, AuditListOptions{ListOptions: ListOptions{Page: 1, PerPage: 10, Query: "LICENSE"}})
	require.NoError(t, err)
	require.Equal(t, 5, result.Window.TotalItems())
}

func TestAuditServiceListRejectsInvalidPageSize(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	_, err = svc.List(context.Background(), AuditListOptions{ListOptions: ListOptions{Page: 1, PerPage: 0}})
	require.ErrorIs(t, err, ErrInvalidPagination)
	require.ErrorIs(t, err, pagination.ErrInvalidConfiguration)
}

func TestAuditServiceLogRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "user.create"}))
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	oldLog := models.AuditLog{
		BaseModel: models.BaseModel{
			CreatedAt: time.Now().AddDate(0, 0, -10),
		},
		Action:   "old.action",
		Result:   "success",
		Metadata: "{}",
	}
	require.NoError(t, db.Create(&oldLog).Error)

	ctx := context.Background()
	rows, err := svc.CleanupOlderThan(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)
}

func TestRecordAuditAttributesRequestActor(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	user := models.User{Username: "dispatch", Email: "dispatch@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	ctx := auditctx.WithActor(context.Background(), auditctx.Actor{
		UserID:    user.ID,
		SessionID: "sid-1",
		IPAddress: "10.1.2.3",
		UserAgent: "fleet-ui",
	})
	meta := map[string]any{"plate": "FL-01"}
	recordAudit(svc, ctx, AuditEntry{Action: "vehicle.create", Resource: "v-1", Result: AuditResultSuccess, Metadata: meta})
	require.NotContains(t, meta, "session_id")

	var logged models.AuditLog
	require.NoError(t, db.Where("action = ?", "vehicle.create").First(&logged).Error)
	require.NotNil(t, logged.UserID)
	require.Equal(t, user.ID, *logged.UserID)
	require.Equal(t, "10.1.2.3", logged.IPAddress)
	require.Equal(t, "fleet-ui", logged.UserAgent)

	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(logged.Metadata), &stored))
	require.Equal(t, map[string]any{"plate": "FL-01", "session_id": "sid-1"}, stored)

	// A nil service and a failing write are both tolerated.
	recordAudit(nil, ctx, AuditEntry{Action: "noop"})
	recordAudit(svc, ctx, AuditEntry{Action: "missing.result"})
}
