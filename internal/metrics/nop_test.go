package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNopMetrics(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.NotPanics(t, func() {
		metrics.RecordPools(2)
		metrics.RecordProcesses(-1)
		metrics.RecordStageDuration("ranks", 0.5)
		metrics.RecordPlanResult("ok")
		metrics.RecordTopology("ROUNDROBIN", 2, 8)
		metrics.RecordArtifacts(0)
	})
}
