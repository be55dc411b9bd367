// Package rank assigns global ranks and host-relative control ports to the
// processes of an ordered set of worker pools.
package rank

import (
	"fmt"

	"github.com/arloliu/odinplan/types"
)

// Host-relative startup-script port layout. Process i (0-based, pool-local)
// listens on FRBase+PortStride*i and FPBase+PortStride*i.
const (
	FRBase     = 5000
	FPBase     = 5004
	PortStride = 10
)

// LocalPortsFor returns the startup-script ports of the i-th (0-based) process on a host.
func LocalPortsFor(i int) types.LocalPorts {
	fr := FRBase + PortStride*i

	return types.LocalPorts{
		FRCtrl:  fr,
		FPCtrl:  FPBase + PortStride*i,
		Ready:   fr + 1,
		Release: fr + 2,
	}
}

// Assign gives every process a unique global rank.
//
// The algorithm interleaves pools round-robin:
//  1. stride = len(pools)
//  2. process i of pool k gets rank k + i*stride
//
// so rank 0 is pool0/process0, rank 1 is pool1/process0, and so on. Pools
// with fewer processes simply stop contributing; resulting ranks are then
// compacted so they cover [0, total) with no gaps.
//
// Assign also fills each process's local ports and its FP/FR endpoints.
//
// Parameters:
//   - pools: Pools in registration order
//
// Returns:
//   - int: Total number of ranked processes
//   - error: types.ErrNoPools when pools is empty
func Assign(pools []*types.WorkerPool) (int, error) {
	if len(pools) == 0 {
		return 0, types.ErrNoPools
	}

	maxCount := 0
	total := 0
	for _, wp := range pools {
		if wp == nil {
			return 0, fmt.Errorf("nil worker pool: %w", types.ErrInvalidConfig)
		}
		total += wp.ProcessCount()
		maxCount = max(maxCount, wp.ProcessCount())
	}

	// Walk k + i*stride in increasing order. With unequal pools some of those
	// slots are empty and the dense rank skips them.
	ordered := make([]*types.WorkerProcess, 0, total)
	for i := range maxCount {
		for _, wp := range pools {
			procs := wp.Processes()
			if i >= len(procs) {
				continue
			}
			ordered = append(ordered, procs[i])
		}
	}

	for r, p := range ordered {
		rank := r
		p.Rank = &rank
	}

	for _, wp := range pools {
		for i, p := range wp.Processes() {
			p.Local = LocalPortsFor(i)
			p.FPEndpoint = wp.Endpoint(p.Local.FPCtrl)
			p.FREndpoint = wp.Endpoint(p.Local.FRCtrl)
		}
	}

	return total, nil
}
