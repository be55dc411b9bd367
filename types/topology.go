package types

import "fmt"

// Destination is one frame-receiver endpoint a front-end module can send UDP frames to.
type Destination struct {
	// Rank is the global rank of the receiving process. It orders destinations
	// and is not serialized.
	Rank int `json:"-"`

	Name   string `json:"name"`
	MAC    string `json:"mac"`
	IP     string `json:"ipaddr"`
	Port   int    `json:"port"`
	Subnet int    `json:"subnet,omitempty"`
}

// ModuleKey returns the canonical key for a 0-based module index ("module01", "module02", ...).
func ModuleKey(index int) string {
	return fmt.Sprintf("module%02d", index+1)
}

// TopologyTable maps FEM module keys to an ordered list of destinations.
//
// Tables are produced fresh per build and are immutable once produced:
// accessors return copies.
type TopologyTable struct {
	keys    []string
	modules map[string][]Destination
}

// NewTopologyTable builds a table from destination lists in module order.
// Module i is keyed ModuleKey(i). The lists are copied.
func NewTopologyTable(modules [][]Destination) *TopologyTable {
	t := &TopologyTable{
		keys:    make([]string, 0, len(modules)),
		modules: make(map[string][]Destination, len(modules)),
	}
	for i, nodes := range modules {
		key := ModuleKey(i)
		cp := make([]Destination, len(nodes))
		copy(cp, nodes)
		t.keys = append(t.keys, key)
		t.modules[key] = cp
	}

	return t
}

// Keys returns the module keys in module order.
func (t *TopologyTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)

	return out
}

// Len returns the number of modules.
func (t *TopologyTable) Len() int {
	return len(t.keys)
}

// Nodes returns a copy of the destinations for a module key, or nil if the key is unknown.
func (t *TopologyTable) Nodes(key string) []Destination {
	nodes, ok := t.modules[key]
	if !ok {
		return nil
	}
	out := make([]Destination, len(nodes))
	copy(out, nodes)

	return out
}

// TopologyStrategy computes the FEM to frame-receiver fan-out table.
//
// Strategies implement different distribution policies:
//   - RoundRobin: every module sees every receiver, staggered per module
//   - OneToOne: each module is paired with one server's receivers
//
// Strategy implementations should:
//   - Be deterministic (same input → same output)
//   - Fail without producing output when the input cannot be planned
//   - Be stateless (no side effects)
type TopologyStrategy interface {
	// Name returns the policy selector this strategy implements (e.g., "ROUNDROBIN").
	Name() string

	// Plan builds the topology table.
	//
	// Parameters:
	//   - servers: Destinations grouped by server, in server registration order
	//   - modules: Number of FEM modules to plan for
	//
	// Returns:
	//   - *TopologyTable: Fan-out table keyed module01..moduleNN
	//   - error: ErrTopologyMismatch when the input cannot be planned
	Plan(servers [][]Destination, modules int) (*TopologyTable, error)
}
