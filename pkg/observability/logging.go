package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tabula/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event. Node entries are
// logged at debug level since a single move can walk many nodes.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "node_id", e.NodeID, "kind", e.NodeKind)
		},
		OnSuspend: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, "suspend", "node_id", e.NodeID)
		},
		OnFlowComplete: func(ctx context.Context) {
			logger.InfoContext(ctx, "flow_complete")
		},
		OnMoveAccepted: func(ctx context.Context, e *domain.MoveEvent) {
			logger.InfoContext(ctx, "move_accepted", "action", e.Action, "player", e.Player)
		},
		OnMoveRejected: func(ctx context.Context, e *domain.MoveEvent) {
			logger.InfoContext(ctx, "move_rejected", "action", e.Action, "player", e.Player, "problem", e.Problem)
		},
	}
}
