package strategy

import (
	"fmt"
	"slices"

	"github.com/arloliu/odinplan/types"
)

// RoundRobin distributes every receiver across every FEM module, staggering
// the first receiver each module sees.
type RoundRobin struct{}

var _ types.TopologyStrategy = (*RoundRobin)(nil)

// NewRoundRobin creates a new round-robin topology strategy.
//
// Every module ends up with the full receiver list, but the lists are
// rotated so each module's preferred (first-listed) receivers differ. This
// spreads load when the FEM favours early destinations.
//
// Returns:
//   - *RoundRobin: Initialized round-robin strategy
//
// Example:
//
//	table, err := strategy.NewRoundRobin().Plan(servers, 2)
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Name returns PolicyRoundRobin.
func (rr *RoundRobin) Name() string {
	return PolicyRoundRobin
}

// Plan calculates the fan-out table using round-robin distribution.
//
// The algorithm:
//  1. Flatten all servers and sort destinations by rank
//  2. Split into `modules` contiguous blocks; sizes differ by at most one,
//     the first len%modules blocks getting the extra element
//  3. For each module, concatenate the blocks in current order, then rotate
//     the block list left by one
//
// Parameters:
//   - servers: Destinations grouped by server
//   - modules: Number of FEM modules
//
// Returns:
//   - *types.TopologyTable: module01..moduleNN, each listing every destination
//   - error: types.ErrTopologyMismatch if modules <= 0 or there are no destinations
func (rr *RoundRobin) Plan(servers [][]types.Destination, modules int) (*types.TopologyTable, error) {
	if modules <= 0 {
		return nil, fmt.Errorf("module count must be positive, got %d: %w", modules, types.ErrTopologyMismatch)
	}

	nodes := sortedByRank(slices.Concat(servers...))
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no destinations for %d modules: %w", modules, types.ErrTopologyMismatch)
	}

	blocks := Partition(nodes, modules)

	out := make([][]types.Destination, 0, modules)
	for range modules {
		out = append(out, slices.Concat(blocks...))
		blocks = append(blocks[1:], blocks[0])
	}

	return types.NewTopologyTable(out), nil
}

// Partition splits nodes into n contiguous blocks of near-equal size.
//
// With q, r = len(nodes)/n, len(nodes)%n, block i holds q elements plus one
// more when i < r. Blocks may be empty when n > len(nodes).
func Partition(nodes []types.Destination, n int) [][]types.Destination {
	if n <= 0 {
		return nil
	}

	q, r := len(nodes)/n, len(nodes)%n
	blocks := make([][]types.Destination, 0, n)
	start := 0
	for i := range n {
		size := q
		if i < r {
			size++
		}
		blocks = append(blocks, nodes[start:start+size])
		start += size
	}

	return blocks
}

func sortedByRank(nodes []types.Destination) []types.Destination {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b types.Destination) int {
		return a.Rank - b.Rank
	})

	return out
}
