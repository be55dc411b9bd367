package odinplan

import "github.com/arloliu/odinplan/types"

// Re-export the shared data types and interfaces for convenience.
type (
	WorkerPool       = types.WorkerPool
	WorkerProcess    = types.WorkerProcess
	SensorShape      = types.SensorShape
	FEMDestination   = types.FEMDestination
	Destination      = types.Destination
	TopologyTable    = types.TopologyTable
	TopologyStrategy = types.TopologyStrategy
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)
