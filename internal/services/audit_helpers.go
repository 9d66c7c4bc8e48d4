package services

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/charlesng35/fleetcn/internal/auditctx"
	"github.com/charlesng35/fleetcn/pkg/logger"
)

// recordAudit writes entry, attributing it to the request actor where the entry leaves
// caller details blank. A failed write is logged and never fails the calling operation.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if actor, ok := auditctx.FromContext(ctx); ok {
		entry = attribute(entry, actor)
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("audit entry dropped",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err),
		)
	}
}

func attribute(entry AuditEntry, actor auditctx.Actor) AuditEntry {
	if entry.UserID == nil {
		id := actor.UserID
		entry.UserID = &id
	}
	if entry.IPAddress == "" {
		entry.IPAddress = actor.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = actor.UserAgent
	}
	if actor.SessionID != "" {
		meta := maps.Clone(entry.Metadata)
		if meta == nil {
			meta = make(map[string]any, 1)
		}
		meta["session_id"] = actor.SessionID
		entry.Metadata = meta
	}
	return entry
}
