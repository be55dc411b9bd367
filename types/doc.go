// Package types provides core type definitions and interfaces for the odinplan library.
//
// This package contains shared types that are used across multiple packages in the
// odinplan library. By keeping these types in a separate package, we avoid import cycles
// between the main odinplan package and its internal implementations.
//
// Key types:
//   - WorkerPool: One OdinData server hosting a fixed number of worker processes
//   - WorkerProcess: A FrameReceiver/FrameProcessor pair owned by a pool
//   - TopologyTable: FEM module to frame-receiver destination fan-out
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
