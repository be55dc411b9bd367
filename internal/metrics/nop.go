// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/arloliu/odinplan/types"

// NopMetrics implements a no-op metrics collector.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// PlanMetrics implementation

// RecordPools discards the pool count metric.
func (n *NopMetrics) RecordPools(_ /* count */ int) {
	// No-op
}

// RecordProcesses discards the process count metric.
func (n *NopMetrics) RecordProcesses(_ /* count */ int) {
	// No-op
}

// RecordStageDuration discards the stage duration metric.
func (n *NopMetrics) RecordStageDuration(_ /* stage */ string, _ /* duration */ float64) {
	// No-op
}

// RecordPlanResult discards the plan result metric.
func (n *NopMetrics) RecordPlanResult(_ /* reason */ string) {
	// No-op
}

// TopologyMetrics implementation

// RecordTopology discards the topology size metric.
func (n *NopMetrics) RecordTopology(_ /* policy */ string, _ /* modules */, _ /* destinations */ int) {
	// No-op
}

// RecordArtifacts discards the artifact count metric.
func (n *NopMetrics) RecordArtifacts(_ /* count */ int) {
	// No-op
}
