// Package pool builds worker pools: one OdinData server with a fixed set of
// FrameReceiver/FrameProcessor processes and their port blocks.
//
// Port state is pool-scoped. Every pool owns its own PortCounter and, for
// detectors receiving UDP directly, its own UDPPortCounter, so building pools
// in a different order never changes the ports a pool hands out.
//
// Each process reserves a block of DefaultPortStride ports on the host:
//
//	base+1  ready
//	base+2  release
//	base+8  meta
package pool
