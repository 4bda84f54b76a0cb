package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter    EventType = "node_enter"
	EventSuspend      EventType = "suspend"
	EventFlowComplete EventType = "flow_complete"
	EventMoveAccepted EventType = "move_accepted"
	EventMoveRejected EventType = "move_rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry into, or suspension on, a flow node.
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeKind string `json:"node_kind"`
}

// MoveEvent represents a processed move.
type MoveEvent struct {
	EventBase
	Action  string `json:"action"`
	Player  int    `json:"player"`
	Problem string `json:"problem,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter    func(context.Context, *NodeEvent)
	OnSuspend      func(context.Context, *NodeEvent)
	OnFlowComplete func(context.Context)
	OnMoveAccepted func(context.Context, *MoveEvent)
	OnMoveRejected func(context.Context, *MoveEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:    chainNode(h.OnNodeEnter, other.OnNodeEnter),
		OnSuspend:      chainNode(h.OnSuspend, other.OnSuspend),
		OnFlowComplete: chainPlain(h.OnFlowComplete, other.OnFlowComplete),
		OnMoveAccepted: chainMove(h.OnMoveAccepted, other.OnMoveAccepted),
		OnMoveRejected: chainMove(h.OnMoveRejected, other.OnMoveRejected),
	}
}

func chainNode(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainMove(a, b func(context.Context, *MoveEvent)) func(context.Context, *MoveEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *MoveEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainPlain(a, b func(context.Context)) func(context.Context) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context) {
		a(ctx)
		b(ctx)
	}
}
