package shared

import (
	"context"
	"log/slog"
)

// Auditor records state changes. Handlers audit after a successful mutation;
// a failed audit write is logged and never fails the request.
type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

func Audit(ctx context.Context, auditor Auditor, actorID, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	if err := auditor.Record(ctx, actorID, action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityType", entityType, "entityId", entityID, "err", err)
	}
}
