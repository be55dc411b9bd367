package types

// MetricsCollector defines methods for recording build-planning metrics.
//
// A build runs once, so metrics describe the shape of the generated
// deployment rather than rates. Implementations must tolerate being called
// with the same stage more than once (e.g., tests planning repeatedly).
type MetricsCollector interface {
	PlanMetrics
	TopologyMetrics
}

// PlanMetrics defines metrics for pool registration and rank assignment.
type PlanMetrics interface {
	// RecordPools sets the number of worker pools registered with the control aggregate.
	RecordPools(count int)

	// RecordProcesses sets the number of ranked worker processes.
	//
	// Parameters:
	//   - count: Total process count across all pools
	RecordProcesses(count int)

	// RecordStageDuration records the time taken by a planning stage.
	//
	// Parameters:
	//   - stage: Stage name ("pools", "ranks", "plugins", "topology", "render")
	//   - duration: Time taken in seconds
	RecordStageDuration(stage string, duration float64)

	// RecordPlanResult records the outcome of a planning attempt.
	//
	// Parameters:
	//   - reason: "ok" or the failing error class (e.g., "duplicate_pool")
	RecordPlanResult(reason string)
}

// TopologyMetrics defines metrics for the UDP fan-out table.
type TopologyMetrics interface {
	// RecordTopology records the planned topology size.
	//
	// Parameters:
	//   - policy: Strategy name ("ROUNDROBIN", "ONE2ONE")
	//   - modules: Number of FEM modules
	//   - destinations: Number of destinations per module
	RecordTopology(policy string, modules, destinations int)

	// RecordArtifacts sets the number of rendered artifacts.
	RecordArtifacts(count int)
}
