// Package metrics exports order lifecycle metrics to Prometheus.
package metrics

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderflow"

var (
	_ statemachine.Listener     = (*OrderMetrics)(nil)
	_ ports.OrderEventPublisher = (*OrderMetrics)(nil)
)

// OrderMetrics counts the orders loaded into a state machine per state as a
// listener, and committed transitions as an event publisher. Transitions are
// counted from the publish path because listeners run before the commit.
type OrderMetrics struct {
	statemachine.NopListener

	transitions *prometheus.CounterVec
	loaded      *prometheus.CounterVec
}

// NewOrderMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	factory := promauto.With(reg)

	return &OrderMetrics{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "transitions_total",
				Help:      "Committed order state transitions.",
			},
			[]string{"from", "to"},
		),
		loaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "machine_starts_total",
				Help:      "State machine instances started, by the state they were seeded with.",
			},
			[]string{"state"},
		),
	}
}

func (m *OrderMetrics) StateEntered(_ context.Context, _ order.ID, state order.State) {
	m.loaded.WithLabelValues(state.String()).Inc()
}

// PublishStateChanged counts a committed transition. It never fails.
func (m *OrderMetrics) PublishStateChanged(_ context.Context, event order.StateChanged) error {
	m.transitions.WithLabelValues(event.From.String(), event.To.String()).Inc()
	return nil
}
