package odinplan

import (
	"errors"

	"github.com/arloliu/odinplan/types"
)

// Sentinel errors returned by the planner. They alias the types package so
// that errors.Is works regardless of which package a caller imports.
var (
	ErrInvalidConfig          = types.ErrInvalidConfig
	ErrUnknownDetector        = types.ErrUnknownDetector
	ErrInvalidProcessCount    = types.ErrInvalidProcessCount
	ErrNoPools                = types.ErrNoPools
	ErrDuplicatePool          = types.ErrDuplicatePool
	ErrRankNotAssigned        = types.ErrRankNotAssigned
	ErrInconsistentSensorSize = types.ErrInconsistentSensorSize
	ErrProcessCountMismatch   = types.ErrProcessCountMismatch
	ErrTopologyMismatch       = types.ErrTopologyMismatch
	ErrInvalidPluginChain     = types.ErrInvalidPluginChain
	ErrManifestMismatch       = types.ErrManifestMismatch
)

// failureReasons maps sentinels to the metric label recorded for a failed plan.
var failureReasons = []struct {
	err    error
	reason string
}{
	{ErrUnknownDetector, "unknown_detector"},
	{ErrInvalidProcessCount, "invalid_process_count"},
	{ErrNoPools, "no_pools"},
	{ErrDuplicatePool, "duplicate_pool"},
	{ErrRankNotAssigned, "rank_not_assigned"},
	{ErrInconsistentSensorSize, "inconsistent_sensor_size"},
	{ErrProcessCountMismatch, "process_count_mismatch"},
	{ErrTopologyMismatch, "topology_mismatch"},
	{ErrInvalidPluginChain, "invalid_plugin_chain"},
	{ErrManifestMismatch, "manifest_mismatch"},
	{ErrInvalidConfig, "invalid_config"},
}

// FailureReason classifies err for metrics and logs. Nil is "ok".
func FailureReason(err error) string {
	if err == nil {
		return "ok"
	}
	for _, fr := range failureReasons {
		if errors.Is(err, fr.err) {
			return fr.reason
		}
	}

	return "internal"
}
