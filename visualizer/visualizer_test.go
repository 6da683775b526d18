package visualizer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/pushdown"
	"github.com/amp-labs/pushdown/visualizer"
)

var errDiskFull = errors.New("disk full")

func diagramMachine(t *testing.T) *pushdown.Machine {
	t.Helper()

	reg := pushdown.NewRegistry()
	reg.State("fetching").
		Targets("parsing").
		Timeout(2*time.Second, "stalled").
		RouteFault(errDiskFull, "recovery")
	reg.State("parsing").Targets("done")
	reg.Terminal("stalled")
	reg.Terminal("recovery")
	reg.Terminal("done")
	reg.Terminal("failed")

	cfg := &pushdown.Config{
		Name:              "poller",
		InitialState:      "fetching",
		FinalState:        "done",
		DefaultErrorState: "failed",
	}

	m, err := pushdown.New(reg, cfg)
	require.NoError(t, err)

	return m
}

func TestMermaid(t *testing.T) {
	t.Parallel()

	diagram, err := visualizer.Mermaid(diagramMachine(t))
	require.NoError(t, err)

	assert.Contains(t, diagram, "```mermaid\n")
	assert.Contains(t, diagram, "stateDiagram-TD\n")
	assert.Contains(t, diagram, "[*] --> fetching\n")
	assert.Contains(t, diagram, "fetching --> parsing: declared\n")
	assert.Contains(t, diagram, "fetching --> stalled: timeout: 2s\n")
	assert.Contains(t, diagram, "fetching --> recovery: fault: disk full\n")
	assert.Contains(t, diagram, "class done finalState\n")
	assert.Contains(t, diagram, "class failed errorState\n")
	assert.Contains(t, diagram, "done --> [*]\n")
	assert.Contains(t, diagram, "classDef errorState")
}

func TestMermaidWithOptions(t *testing.T) {
	t.Parallel()

	opts := visualizer.DefaultOptions().
		WithShowLabels(false).
		WithDirection("LR").
		WithHighlightPath([]string{"fetching", "parsing"})

	diagram, err := visualizer.MermaidWithOptions(diagramMachine(t), opts)
	require.NoError(t, err)

	assert.Contains(t, diagram, "stateDiagram-LR\n")
	assert.Contains(t, diagram, "class fetching highlighted\n")
	assert.Contains(t, diagram, "fetching --> parsing\n")
	assert.NotContains(t, diagram, "declared")
}

func TestDOT(t *testing.T) {
	t.Parallel()

	diagram, err := visualizer.DOT(diagramMachine(t))
	require.NoError(t, err)

	assert.Contains(t, diagram, "digraph {\n")
	assert.Contains(t, diagram, "\tcompound=true;\n")
	assert.Contains(t, diagram, "\tnode [shape=Mrecord];\n")
	assert.Contains(t, diagram, "\trankdir=\"TB\";\n")
	assert.Contains(t, diagram, "\tinit [shape=point];\n")
	assert.Contains(t, diagram, "\tinit -> \"fetching\";\n")
	assert.Contains(t, diagram, "\"done\" [label=\"done\", peripheries=2];\n")
	assert.Contains(t, diagram, "\"failed\" [label=\"failed\", color=red];\n")
	assert.Contains(t, diagram, "\"fetching\" -> \"stalled\" [label=\"timeout: 2s\"];\n")
}

func TestDOTWithOptions(t *testing.T) {
	t.Parallel()

	opts := visualizer.DefaultOptions().WithDirection("LR").WithShowLabels(false)

	diagram, err := visualizer.DOTWithOptions(diagramMachine(t), opts)
	require.NoError(t, err)

	assert.Contains(t, diagram, "\trankdir=\"LR\";\n")
	assert.Contains(t, diagram, "\"fetching\" -> \"parsing\";\n")
	assert.NotContains(t, diagram, "label=\"declared\"")
}

func TestNilModel(t *testing.T) {
	t.Parallel()

	_, err := visualizer.Mermaid(nil)
	assert.ErrorIs(t, err, visualizer.ErrNilModel)

	_, err = visualizer.DOT(nil)
	assert.ErrorIs(t, err, visualizer.ErrNilModel)
}
