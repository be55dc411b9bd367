package pool

import (
	"fmt"

	"github.com/arloliu/odinplan/types"
)

// Spec is the static description of one OdinData server.
type Spec struct {
	// IP is the address of the server hosting the processes.
	IP string

	// ProcessCount is the number of FR/FP pairs to create. Must be positive.
	ProcessCount int

	// SharedMemSize is the shared memory buffer size in bytes.
	SharedMemSize int64

	// IOThreads is the number of FR IPC IO threads (default: 1).
	IOThreads int

	// NUMANodes spreads processes over this many NUMA nodes (0 disables pinning).
	NUMANodes int

	// Sensor names the sensor variant.
	Sensor string

	// Shape is the sensor geometry reported to the meta listener.
	Shape types.SensorShape

	// FEMDest is the data link FEMs send UDP frames to.
	FEMDest types.FEMDestination
}

// ProcessFactory creates one process from the port block reserved for it.
//
// Detector variants use it to attach extra per-process state; the default
// factory only copies the block.
type ProcessFactory func(index int, blk PortBlock) *types.WorkerProcess

// Option configures pool construction.
type Option func(*options)

type options struct {
	ports   *PortCounter
	udp     *UDPPortCounter
	factory ProcessFactory
}

// WithPortCounter injects the control port counter (default: 5000, stride 10).
//
// Parameters:
//   - c: Counter owned by this pool
//
// Returns:
//   - Option: Functional option for New
func WithPortCounter(c *PortCounter) Option {
	return func(o *options) {
		o.ports = c
	}
}

// WithUDPPorts assigns a base UDP receive port to every process.
//
// Example:
//
//	p, err := pool.New(spec, pool.WithUDPPorts(pool.NewUDPPortCounter(61649, 6)))
func WithUDPPorts(c *UDPPortCounter) Option {
	return func(o *options) {
		o.udp = c
	}
}

// WithProcessFactory overrides how processes are created from their port blocks.
func WithProcessFactory(f ProcessFactory) Option {
	return func(o *options) {
		o.factory = f
	}
}

func defaultFactory(index int, blk PortBlock) *types.WorkerProcess {
	return &types.WorkerProcess{
		Index:       index,
		ReadyPort:   blk.Ready,
		ReleasePort: blk.Release,
		MetaPort:    blk.Meta,
	}
}

// New creates a worker pool and eagerly builds its processes.
//
// For each process the factory receives the current port block, then the
// counter advances by its stride before the next call.
//
// Parameters:
//   - spec: Static server description
//   - opts: Optional counters and factory
//
// Returns:
//   - *types.WorkerPool: Pool owning ProcessCount processes
//   - error: types.ErrInvalidProcessCount when ProcessCount <= 0,
//     types.ErrInvalidConfig for a missing IP or a factory returning nil
//
// Example:
//
//	p, err := pool.New(pool.Spec{IP: "10.0.0.1", ProcessCount: 4, SharedMemSize: 1 << 30})
func New(spec Spec, opts ...Option) (*types.WorkerPool, error) {
	if spec.ProcessCount <= 0 {
		return nil, fmt.Errorf("pool %s: got %d: %w", spec.IP, spec.ProcessCount, types.ErrInvalidProcessCount)
	}
	if spec.IP == "" {
		return nil, fmt.Errorf("pool IP is required: %w", types.ErrInvalidConfig)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ports == nil {
		o.ports = NewPortCounter(DefaultPortBase, DefaultPortStride)
	}
	if o.factory == nil {
		o.factory = defaultFactory
	}

	wp := types.NewWorkerPool(spec.IP, spec.SharedMemSize)
	if spec.IOThreads > 0 {
		wp.IOThreads = spec.IOThreads
	}
	wp.NUMANodes = spec.NUMANodes
	wp.Sensor = spec.Sensor
	wp.Shape = spec.Shape
	wp.FEMDest = spec.FEMDest

	for i := range spec.ProcessCount {
		proc := o.factory(i+1, o.ports.Next())
		if proc == nil {
			return nil, fmt.Errorf("pool %s: process factory returned nil for process %d: %w",
				spec.IP, i+1, types.ErrInvalidConfig)
		}
		proc.Index = i + 1
		if o.udp != nil {
			port := o.udp.Next()
			proc.BaseUDPPort = &port
		}
		wp.AddProcess(proc)
	}

	return wp, nil
}
