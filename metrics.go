package pushdown

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metric definitions with appropriate labels.
var (
	// TicksTotal tracks tick counts by machine and outcome.
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pushdown_ticks_total",
		Help: "Total number of ticks by machine and outcome (success or error)",
	}, []string{"machine", "outcome"})

	// TransitionsTotal tracks applied transitions.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pushdown_transitions_total",
		Help: "Total number of applied transitions by machine, from_state, to_state and cause",
	}, []string{"machine", "from_state", "to_state", "cause"})

	// HandlerFaultsTotal tracks faults raised inside state handlers.
	handlerFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pushdown_handler_faults_total",
		Help: "Total number of handler faults by machine, state and handler phase",
	}, []string{"machine", "state", "phase"})

	// TickDuration tracks the duration of one tick.
	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pushdown_tick_duration_seconds",
		Help:    "Duration of one tick by machine and outcome",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"machine", "outcome"})

	// StackDepth tracks the current pushdown stack depth.
	stackDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pushdown_stack_depth",
		Help: "Current pushdown stack depth by machine",
	}, []string{"machine"})
)

// Helper for label sanitization.
func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
