package pushdown_test

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/pushdown"
	"github.com/amp-labs/pushdown/statetest"
)

// The slog-backed logger has no observable output contract beyond not
// interfering with the machine; run a full lifecycle through it against
// the test log.
func TestSlogLogger(t *testing.T) {
	t.Parallel()

	reg := pushdown.NewRegistry()
	sentinels(reg)
	reg.State("working").
		RouteFault(errEngineIO, "recovery").
		OnState(statetest.Script(
			pushdown.Goto("working"),
			pushdown.Stay(),
			pushdown.Finish(),
		))
	reg.Terminal("recovery")

	m, err := pushdown.New(reg, machineConfig("working"),
		pushdown.WithLogger(pushdown.NewSlogLogger(slogt.New(t))))
	require.NoError(t, err)

	for !m.Terminated() {
		require.NoError(t, m.Tick(t.Context()))
		require.Less(t, m.Ticks(), int64(8))
	}
}

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	require.NotNil(t, pushdown.NewDefaultLogger())
}
