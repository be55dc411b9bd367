package control

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/odinplan/internal/rank"
	"github.com/arloliu/odinplan/types"
)

// DefaultPort is the odin_server HTTP port.
const DefaultPort = 8888

// Aggregate is one control server and the pools registered with it.
type Aggregate struct {
	// IP is the address of the control server.
	IP string

	// Port is the control server port.
	Port int

	pools    []*types.WorkerPool
	total    int
	assigned bool
}

// NewAggregate registers pools with a control server.
//
// Parameters:
//   - ip: Control server address
//   - port: Control server port (0 selects DefaultPort)
//   - pools: Pools in registration order
//
// Returns:
//   - *Aggregate: Aggregate owning the pools
//   - error: types.ErrNoPools or types.ErrDuplicatePool
//
// Example:
//
//	agg, err := control.NewAggregate("10.0.0.10", 8888, server1, server2)
//	if err != nil { /* abort build */ }
//	total, err := agg.Assign()
func NewAggregate(ip string, port int, pools ...*types.WorkerPool) (*Aggregate, error) {
	if len(pools) == 0 {
		return nil, fmt.Errorf("control server %s: %w", ip, types.ErrNoPools)
	}
	if port == 0 {
		port = DefaultPort
	}

	// Check everything before mutating anything.
	seen := make(map[*types.WorkerPool]struct{}, len(pools))
	for i, wp := range pools {
		if wp == nil {
			return nil, fmt.Errorf("control server %s: pool %d is nil: %w", ip, i+1, types.ErrInvalidConfig)
		}
		if wp.Instantiated() {
			return nil, fmt.Errorf("pool %s already registered with a control server: %w", wp.IP, types.ErrDuplicatePool)
		}
		if _, dup := seen[wp]; dup {
			return nil, fmt.Errorf("pool %s given twice to control server %s: %w", wp.IP, ip, types.ErrDuplicatePool)
		}
		seen[wp] = struct{}{}
	}

	for _, wp := range pools {
		wp.MarkInstantiated()
	}

	agg := &Aggregate{IP: ip, Port: port, pools: slices.Clone(pools)}
	for _, wp := range pools {
		agg.total += wp.ProcessCount()
	}

	return agg, nil
}

// Pools returns the registered pools in registration order.
func (a *Aggregate) Pools() []*types.WorkerPool {
	return slices.Clone(a.pools)
}

// TotalProcessCount returns the sum of process counts over all pools.
func (a *Aggregate) TotalProcessCount() int {
	return a.total
}

// Assign computes ranks, local ports and endpoints for every process.
//
// Assign is idempotent: calling it again recomputes the same values.
//
// Returns:
//   - int: Total process count
//   - error: Error from rank assignment
func (a *Aggregate) Assign() (int, error) {
	total, err := rank.Assign(a.pools)
	if err != nil {
		return 0, fmt.Errorf("control server %s: %w", a.IP, err)
	}
	a.assigned = true

	return total, nil
}

// Processes returns every process sorted by rank.
//
// Returns:
//   - []*types.WorkerProcess: Rank-sorted processes
//   - error: types.ErrRankNotAssigned if Assign has not run
func (a *Aggregate) Processes() ([]*types.WorkerProcess, error) {
	if !a.assigned {
		return nil, fmt.Errorf("control server %s: %w", a.IP, types.ErrRankNotAssigned)
	}

	out := make([]*types.WorkerProcess, 0, a.total)
	for _, wp := range a.pools {
		out = append(out, wp.Processes()...)
	}
	slices.SortFunc(out, func(x, y *types.WorkerProcess) int {
		return *x.Rank - *y.Rank
	})

	return out, nil
}

// CheckSensorShapes verifies that every pool feeding the meta listener reports
// the same sensor geometry. Pools without a shape are ignored.
//
// Returns:
//   - types.SensorShape: The common shape (zero if none reported)
//   - error: types.ErrInconsistentSensorSize on disagreement
func (a *Aggregate) CheckSensorShapes() (types.SensorShape, error) {
	var shape types.SensorShape
	var from string
	for _, wp := range a.pools {
		if wp.Shape.IsZero() {
			continue
		}
		if shape.IsZero() {
			shape, from = wp.Shape, wp.IP
			continue
		}
		if wp.Shape != shape {
			return types.SensorShape{}, fmt.Errorf("pool %s reports %s but pool %s reports %s: %w",
				wp.IP, wp.Shape, from, shape, types.ErrInconsistentSensorSize)
		}
	}

	return shape, nil
}

// AdapterStanza renders the [adapter.fp] and [adapter.fr] sections of
// odin_server.cfg with rank-sorted endpoints.
//
// Parameters:
//   - extraFP: Additional "key = value" lines for the fp adapter (e.g., "datasets = data,data2")
//
// Returns:
//   - string: INI text without a trailing newline
//   - error: types.ErrRankNotAssigned if Assign has not run
func (a *Aggregate) AdapterStanza(extraFP ...string) (string, error) {
	procs, err := a.Processes()
	if err != nil {
		return "", err
	}

	fp := make([]string, 0, len(procs))
	fr := make([]string, 0, len(procs))
	for _, p := range procs {
		fp = append(fp, p.FPEndpoint)
		fr = append(fr, p.FREndpoint)
	}

	var b strings.Builder
	b.WriteString("[adapter.fp]\n")
	b.WriteString("module = odin_data.frame_processor_adapter.FrameProcessorAdapter\n")
	fmt.Fprintf(&b, "endpoints = %s\n", strings.Join(fp, ", "))
	b.WriteString("update_interval = 0.2\n")
	for _, line := range extraFP {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\n[adapter.fr]\n")
	b.WriteString("module = odin_data.frame_receiver_adapter.FrameReceiverAdapter\n")
	fmt.Fprintf(&b, "endpoints = %s\n", strings.Join(fr, ", "))
	b.WriteString("update_interval = 0.2")

	return b.String(), nil
}
