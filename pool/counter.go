package pool

// Defaults for the per-host control port block.
const (
	// DefaultPortBase is the first port of the first block on a host.
	DefaultPortBase = 5000

	// DefaultPortStride is the number of ports reserved per process.
	DefaultPortStride = 10

	readyOffset   = 1
	releaseOffset = 2
	metaOffset    = 8
)

// PortBlock is the set of ports reserved for one process.
type PortBlock struct {
	Ready   int
	Release int
	Meta    int
}

// PortCounter hands out consecutive port blocks for one host.
//
// A counter is owned by a single pool; it is not safe to share between pools.
type PortCounter struct {
	next   int
	stride int
}

// NewPortCounter creates a counter starting at base and advancing by stride.
// A non-positive stride falls back to DefaultPortStride.
func NewPortCounter(base, stride int) *PortCounter {
	if stride <= 0 {
		stride = DefaultPortStride
	}

	return &PortCounter{next: base, stride: stride}
}

// Next returns the current block and advances the counter.
func (c *PortCounter) Next() PortBlock {
	blk := PortBlock{
		Ready:   c.next + readyOffset,
		Release: c.next + releaseOffset,
		Meta:    c.next + metaOffset,
	}
	c.next += c.stride

	return blk
}

// Peek returns the base of the next block without advancing.
func (c *PortCounter) Peek() int {
	return c.next
}

// UDPPortCounter hands out base UDP receive ports for one pool.
type UDPPortCounter struct {
	next int
	step int
}

// NewUDPPortCounter creates a counter starting at base and advancing by step
// (the number of UDP ports each frame receiver listens on).
func NewUDPPortCounter(base, step int) *UDPPortCounter {
	if step <= 0 {
		step = 1
	}

	return &UDPPortCounter{next: base, step: step}
}

// Next returns the current base port and advances the counter.
func (c *UDPPortCounter) Next() int {
	p := c.next
	c.next += c.step

	return p
}
