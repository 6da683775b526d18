package pushdown

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMachine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "poller", sanitizeMachine("poller"))
	assert.Equal(t, "unknown", sanitizeMachine(""))
}

// Metrics are process-global, so these tests read label-scoped values and
// deliberately avoid t.Parallel.
func TestTickMetrics(t *testing.T) {
	reg := NewRegistry()
	reg.State("working").OnState(func(_ context.Context, _ *Context) (Outcome, error) {
		return Goto("working"), nil
	})
	reg.State("done")
	reg.State("failed")

	cfg := &Config{
		Name:              "metrics-ticks",
		InitialState:      "working",
		FinalState:        "done",
		DefaultErrorState: "failed",
	}

	m, err := New(reg, cfg)
	require.NoError(t, err)

	before := testutil.ToFloat64(ticksTotal.WithLabelValues("metrics-ticks", outcomeSuccess))

	require.NoError(t, m.Tick(context.Background()))
	require.NoError(t, m.Tick(context.Background()))

	after := testutil.ToFloat64(ticksTotal.WithLabelValues("metrics-ticks", outcomeSuccess))
	assert.InDelta(t, 2, after-before, 0.01)

	transitions := testutil.ToFloat64(transitionsTotal.WithLabelValues(
		"metrics-ticks", "working", "working", CauseNormal.String()))
	assert.InDelta(t, 2, transitions, 0.01)
}

func TestStackDepthMetric(t *testing.T) {
	reg := NewRegistry()
	reg.State("parent").OnState(func(_ context.Context, _ *Context) (Outcome, error) {
		return Push("child"), nil
	})
	reg.State("child")
	reg.State("done")
	reg.State("failed")

	cfg := &Config{
		Name:              "metrics-depth",
		InitialState:      "parent",
		FinalState:        "done",
		DefaultErrorState: "failed",
	}

	m, err := New(reg, cfg)
	require.NoError(t, err)

	depth := testutil.ToFloat64(stackDepth.WithLabelValues("metrics-depth"))
	assert.InDelta(t, 1, depth, 0.01)

	require.NoError(t, m.Tick(context.Background()))

	depth = testutil.ToFloat64(stackDepth.WithLabelValues("metrics-depth"))
	assert.InDelta(t, 2, depth, 0.01)
}

func TestHandlerFaultMetric(t *testing.T) {
	reg := NewRegistry()
	reg.State("working").OnState(func(_ context.Context, _ *Context) (Outcome, error) {
		return Stay(), assert.AnError
	})
	reg.State("done")
	reg.State("failed")

	cfg := &Config{
		Name:              "metrics-faults",
		InitialState:      "working",
		FinalState:        "done",
		DefaultErrorState: "failed",
	}

	m, err := New(reg, cfg)
	require.NoError(t, err)

	require.NoError(t, m.Tick(context.Background()))

	faults := testutil.ToFloat64(handlerFaultsTotal.WithLabelValues(
		"metrics-faults", "working", phaseState))
	assert.InDelta(t, 1, faults, 0.01)
}
