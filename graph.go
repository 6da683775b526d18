package pushdown

import (
	"fmt"

	"facette.io/natsort"
)

// Trigger identifies which declared mechanism an exported edge comes from.
type Trigger int

const (
	// TriggerDeclared is an ordinary declared transition target.
	TriggerDeclared Trigger = iota
	// TriggerTimeout is the route taken when the state's timeout expires.
	TriggerTimeout
	// TriggerRetry is the route taken when the retry limit is exceeded.
	TriggerRetry
	// TriggerFault is an exception-map route.
	TriggerFault
)

func (t Trigger) String() string {
	switch t {
	case TriggerDeclared:
		return "declared"
	case TriggerTimeout:
		return "timeout"
	case TriggerRetry:
		return "retry"
	case TriggerFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Edge is one statically declared transition, exported for external
// visualization. Edges are derived from descriptor configuration only;
// they never touch run-time state.
type Edge struct {
	From    string
	To      string
	Trigger Trigger
	Label   string
}

// Edges enumerates the machine's static transition graph: declared
// ordinary targets plus timeout, retry and exception-map routes, with the
// machine's default error state substituted for unset fallback targets.
// States follow registration order.
func (m *Machine) Edges() []Edge {
	edges := make([]Edge, 0, len(m.registry.order)*2)

	for _, name := range m.registry.order {
		d := m.registry.states[name]

		for _, target := range d.targets {
			edges = append(edges, Edge{From: name, To: target, Trigger: TriggerDeclared})
		}

		if d.timeout > 0 {
			target := d.timeoutTarget
			if target == "" {
				target = m.errState
			}

			edges = append(edges, Edge{
				From:    name,
				To:      target,
				Trigger: TriggerTimeout,
				Label:   d.timeout.String(),
			})
		}

		if d.hasRetry {
			target := d.retryTarget
			if target == "" {
				target = m.errState
			}

			edges = append(edges, Edge{
				From:    name,
				To:      target,
				Trigger: TriggerRetry,
				Label:   fmt.Sprintf("retry > %d", d.retryLimit),
			})
		}

		for _, route := range d.faultRoutes {
			edges = append(edges, Edge{
				From:    name,
				To:      route.target,
				Trigger: TriggerFault,
				Label:   route.class.Error(),
			})
		}

		if d.hasWildcard {
			edges = append(edges, Edge{From: name, To: d.wildcard, Trigger: TriggerFault, Label: "any"})
		}
	}

	return edges
}

// StateNames returns all registered state names in natural sort order,
// so "state2" comes before "state10".
func (m *Machine) StateNames() []string {
	names := make([]string, len(m.registry.order))
	copy(names, m.registry.order)
	natsort.Sort(names)

	return names
}
