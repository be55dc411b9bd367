package strategy

import (
	"fmt"

	"github.com/arloliu/odinplan/types"
)

// OneToOne pairs each FEM module with exactly one server's receivers.
type OneToOne struct{}

var _ types.TopologyStrategy = (*OneToOne)(nil)

// NewOneToOne creates a new one-to-one topology strategy.
//
// Module i sends only to the receivers of server i, in server registration
// order. The module count must equal the server count.
func NewOneToOne() *OneToOne {
	return &OneToOne{}
}

// Name returns PolicyOneToOne.
func (o *OneToOne) Name() string {
	return PolicyOneToOne
}

// Plan maps module i to the rank-sorted destinations of server i.
//
// Parameters:
//   - servers: Destinations grouped by server, in registration order
//   - modules: Number of FEM modules; must equal len(servers)
//
// Returns:
//   - *types.TopologyTable: One entry per server
//   - error: types.ErrTopologyMismatch when counts differ; no table is produced
func (o *OneToOne) Plan(servers [][]types.Destination, modules int) (*types.TopologyTable, error) {
	if modules != len(servers) {
		return nil, fmt.Errorf("one-to-one requires module count (%d) == server count (%d): %w",
			modules, len(servers), types.ErrTopologyMismatch)
	}
	if modules == 0 {
		return nil, fmt.Errorf("no servers to pair with modules: %w", types.ErrTopologyMismatch)
	}

	out := make([][]types.Destination, 0, modules)
	for i, nodes := range servers {
		if len(nodes) == 0 {
			return nil, fmt.Errorf("server %d has no destinations: %w", i+1, types.ErrTopologyMismatch)
		}
		out = append(out, sortedByRank(nodes))
	}

	return types.NewTopologyTable(out), nil
}
