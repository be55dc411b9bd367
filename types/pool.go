package types

import (
	"fmt"
	"net"
	"strconv"
)

// SensorShape is the pixel geometry a worker pool reports to the meta listener.
type SensorShape struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// IsZero reports whether the shape is unset.
func (s SensorShape) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// String returns the shape as "WIDTHxHEIGHT".
func (s SensorShape) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// FEMDestination describes the data link a front-end module sends UDP frames to.
//
// It is only required by detectors that connect FEMs directly to the
// frame receivers (Excalibur, Tristan, Arc).
type FEMDestination struct {
	// Name is the NIC name of the data link (e.g., "em1").
	Name string `json:"name" yaml:"name"`

	// MAC is the hardware address of the data link.
	MAC string `json:"mac" yaml:"mac"`

	// IP is the address of the data link.
	IP string `json:"ip" yaml:"ip"`

	// Subnet is the prefix length of IP (0 when the detector does not need it).
	Subnet int `json:"subnet,omitempty" yaml:"subnet"`
}

// IsZero reports whether no destination parameters were given.
func (d FEMDestination) IsZero() bool {
	return d.MAC == "" && d.IP == ""
}

// LocalPorts are the host-relative control ports written into a process's
// startup scripts. They depend on the pool-local position only, never on rank.
type LocalPorts struct {
	FRCtrl  int `json:"frCtrl"`
	FPCtrl  int `json:"fpCtrl"`
	Ready   int `json:"ready"`
	Release int `json:"release"`
}

// WorkerProcess is one FrameReceiver/FrameProcessor pair.
//
// A process is owned by exactly one WorkerPool and lives as long as it.
type WorkerProcess struct {
	// Index is the 1-based, pool-local sequence number.
	Index int `json:"index"`

	// Rank is the global rank, nil until the owning aggregate assigns it.
	Rank *int `json:"rank,omitempty"`

	ReadyPort   int `json:"readyPort"`
	ReleasePort int `json:"releasePort"`
	MetaPort    int `json:"metaPort"`

	// BaseUDPPort is the first UDP port the frame receiver listens on,
	// nil for detectors that do not receive UDP directly.
	BaseUDPPort *int `json:"baseUdpPort,omitempty"`

	// Local holds the host-relative startup-script ports.
	Local LocalPorts `json:"local"`

	// FPEndpoint and FREndpoint are "host:port" control endpoints,
	// filled in once ranks are known.
	FPEndpoint string `json:"fpEndpoint,omitempty"`
	FREndpoint string `json:"frEndpoint,omitempty"`

	pool *WorkerPool
}

// Label returns the human-facing "OD{n}" label derived from Index.
func (p *WorkerProcess) Label() string {
	return "OD" + strconv.Itoa(p.Index)
}

// Pool returns the pool owning this process.
func (p *WorkerProcess) Pool() *WorkerPool {
	return p.pool
}

// RankValue returns the assigned rank.
//
// Returns:
//   - int: Assigned global rank (0 when unassigned)
//   - error: ErrRankNotAssigned if the rank has not been assigned yet
func (p *WorkerProcess) RankValue() (int, error) {
	if p.Rank == nil {
		host := "<unpooled>"
		if p.pool != nil {
			host = p.pool.IP
		}

		return 0, fmt.Errorf("process %s on %s: %w", p.Label(), host, ErrRankNotAssigned)
	}

	return *p.Rank, nil
}

// Number returns the 1-based rank used in generated file names
// (stFrameReceiver{n}.sh, fp{n}.json). It returns 0 when unassigned.
func (p *WorkerProcess) Number() int {
	if p.Rank == nil {
		return 0
	}

	return *p.Rank + 1
}

// WorkerPool is one server hosting a fixed number of OdinData processes.
//
// Processes are created eagerly when the pool is built and never change
// afterwards. A pool is consumed by exactly one control aggregate.
type WorkerPool struct {
	// IP is the address of the server hosting the processes.
	IP string `json:"ip"`

	// SharedMemSize is the size of the shared memory buffers in bytes.
	SharedMemSize int64 `json:"sharedMemSize"`

	// IOThreads is the number of frame-receiver IPC IO threads.
	IOThreads int `json:"ioThreads"`

	// NUMANodes is the number of NUMA nodes processes are spread over (0 disables pinning).
	NUMANodes int `json:"numaNodes,omitempty"`

	// Sensor names the detector sensor variant (e.g., "1M", "3M").
	Sensor string `json:"sensor,omitempty"`

	// Shape is the sensor geometry reported to the meta listener.
	Shape SensorShape `json:"shape"`

	// FEMDest is the data link FEMs send to, zero when not used.
	FEMDest FEMDestination `json:"femDest"`

	processes    []*WorkerProcess
	instantiated bool
}

// NewWorkerPool creates an empty pool. Processes are attached with AddProcess
// by the pool builder; the process count is fixed once building finishes.
func NewWorkerPool(ip string, sharedMemSize int64) *WorkerPool {
	return &WorkerPool{IP: ip, SharedMemSize: sharedMemSize, IOThreads: 1}
}

// AddProcess attaches a process to the pool and takes ownership of it.
func (wp *WorkerPool) AddProcess(p *WorkerProcess) {
	p.pool = wp
	wp.processes = append(wp.processes, p)
}

// Processes returns the pool's processes in creation order.
//
// The returned slice is a copy; the processes themselves are shared.
func (wp *WorkerPool) Processes() []*WorkerProcess {
	out := make([]*WorkerProcess, len(wp.processes))
	copy(out, wp.processes)

	return out
}

// ProcessCount returns the number of processes in the pool.
func (wp *WorkerPool) ProcessCount() int {
	return len(wp.processes)
}

// Instantiated reports whether the pool has been consumed by a control aggregate.
func (wp *WorkerPool) Instantiated() bool {
	return wp.instantiated
}

// MarkInstantiated flags the pool as consumed. Callers check Instantiated first.
func (wp *WorkerPool) MarkInstantiated() {
	wp.instantiated = true
}

// Endpoint joins the pool IP and a port as "host:port".
func (wp *WorkerPool) Endpoint(port int) string {
	return net.JoinHostPort(wp.IP, strconv.Itoa(port))
}
