// Package visualizer renders a machine's static transition graph as a
// Mermaid state diagram or a Graphviz DOT digraph. It reads only the
// declared edge enumeration; run-time state never leaks into a diagram.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/pushdown"
)

// Visualizer errors.
var (
	ErrNilModel       = errors.New("model cannot be nil")
	ErrNoInitialState = errors.New("model must have an initial state")
)

// Model is the read-only graph surface a machine exposes.
type Model interface {
	Edges() []pushdown.Edge
	StateNames() []string
	InitialState() string
	FinalState() string
	DefaultErrorState() string
}

// Mermaid converts a machine's static graph to a Mermaid state diagram.
func Mermaid(model Model) (string, error) {
	return MermaidWithOptions(model, DefaultOptions())
}

// MermaidWithOptions generates a Mermaid diagram with custom options.
func MermaidWithOptions(model Model, opts Options) (string, error) {
	if model == nil {
		return "", ErrNilModel
	}

	if model.InitialState() == "" {
		return "", ErrNoInitialState
	}

	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("stateDiagram-%s\n", opts.Direction))
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", model.InitialState()))

	highlightMap := make(map[string]bool)
	for _, state := range opts.HighlightPath {
		highlightMap[state] = true
	}

	for _, state := range model.StateNames() {
		switch {
		case highlightMap[state]:
			sb.WriteString(fmt.Sprintf("    class %s highlighted\n", state))
		case state == model.FinalState():
			sb.WriteString(fmt.Sprintf("    class %s finalState\n", state))
		case state == model.DefaultErrorState():
			sb.WriteString(fmt.Sprintf("    class %s errorState\n", state))
		}
	}

	for _, edge := range model.Edges() {
		label := ""
		if opts.ShowLabels {
			label = ": " + edgeLabel(edge)
		}

		sb.WriteString(fmt.Sprintf("    %s --> %s%s\n", edge.From, edge.To, label))
	}

	sb.WriteString(fmt.Sprintf("    %s --> [*]\n", model.FinalState()))

	sb.WriteString("\n")
	sb.WriteString("    classDef errorState fill:#ffebee,stroke:#b71c1c,stroke-width:2px\n")
	sb.WriteString("    classDef finalState fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")

	sb.WriteString("```\n")

	return sb.String(), nil
}

// DOT converts a machine's static graph to a Graphviz digraph.
func DOT(model Model) (string, error) {
	return DOTWithOptions(model, DefaultOptions())
}

// DOTWithOptions generates a DOT digraph with custom options.
func DOTWithOptions(model Model, opts Options) (string, error) {
	if model == nil {
		return "", ErrNilModel
	}

	if model.InitialState() == "" {
		return "", ErrNoInitialState
	}

	direction := "TB"
	if opts.Direction == "LR" {
		direction = "LR"
	}

	var sb strings.Builder

	sb.WriteString("digraph {\n")
	sb.WriteString("\tcompound=true;\n")
	sb.WriteString("\tnode [shape=Mrecord];\n")
	sb.WriteString(fmt.Sprintf("\trankdir=%q;\n", direction))
	sb.WriteString("\tinit [shape=point];\n")

	for _, state := range model.StateNames() {
		attrs := ""

		switch state {
		case model.FinalState():
			attrs = ", peripheries=2"
		case model.DefaultErrorState():
			attrs = ", color=red"
		}

		sb.WriteString(fmt.Sprintf("\t%q [label=%q%s];\n", state, state, attrs))
	}

	sb.WriteString(fmt.Sprintf("\tinit -> %q;\n", model.InitialState()))

	for _, edge := range model.Edges() {
		if opts.ShowLabels {
			sb.WriteString(fmt.Sprintf("\t%q -> %q [label=%q];\n", edge.From, edge.To, edgeLabel(edge)))
		} else {
			sb.WriteString(fmt.Sprintf("\t%q -> %q;\n", edge.From, edge.To))
		}
	}

	sb.WriteString("}\n")

	return sb.String(), nil
}

// edgeLabel builds a human-readable label for one edge.
func edgeLabel(edge pushdown.Edge) string {
	if edge.Label == "" {
		return edge.Trigger.String()
	}

	return fmt.Sprintf("%s: %s", edge.Trigger, edge.Label)
}
