package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors.
type Metrics struct {
	NodeEntries   *prometheus.CounterVec
	Suspensions   *prometheus.CounterVec
	Moves         *prometheus.CounterVec
	GamesFinished prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabula_node_entries_total",
				Help: "Total number of flow node entries, by node kind",
			},
			[]string{"kind"},
		),
		Suspensions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabula_suspensions_total",
				Help: "Total number of times the flow stopped to wait for a player",
			},
			[]string{"node_id"},
		),
		Moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabula_moves_total",
				Help: "Total number of processed moves, by action and result",
			},
			[]string{"action", "result"},
		),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabula_games_finished_total",
			Help: "Total number of games whose flow ran to completion",
		}),
	}
	for _, c := range []prometheus.Collector{m.NodeEntries, m.Suspensions, m.Moves, m.GamesFinished} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeEntries.WithLabelValues(e.NodeKind).Inc()
		},
		OnSuspend: func(_ context.Context, e *domain.NodeEvent) {
			m.Suspensions.WithLabelValues(e.NodeID).Inc()
		},
		OnFlowComplete: func(context.Context) {
			m.GamesFinished.Inc()
		},
		OnMoveAccepted: func(_ context.Context, e *domain.MoveEvent) {
			m.Moves.WithLabelValues(e.Action, "accepted").Inc()
		},
		OnMoveRejected: func(_ context.Context, e *domain.MoveEvent) {
			m.Moves.WithLabelValues(e.Action, "rejected").Inc()
		},
	}
}
