// Package odinplan plans Odin detector data-acquisition deployments.
//
// Given a control server, one or more OdinData servers (worker pools) and a
// detector family, the planner builds per-pool processes with their port
// blocks, registers the pools with a single control aggregate, assigns global
// ranks, validates the process count and plugin chain, checks sensor shapes
// and plans the FEM to frame-receiver UDP fan-out table. The resulting Plan is
// rendered into startup scripts and JSON/INI configuration files.
//
// # Quick Start
//
//	cfg, err := odinplan.LoadConfig("arc.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	planner, err := odinplan.NewPlanner(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plan, err := planner.Plan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := planner.Write(ctx, plan); err != nil {
//	    log.Fatal(err)
//	}
//
// # Stages
//
// Planning is single-threaded and runs once. Stages run in order and any
// failure aborts the build without a partial Plan:
//
//	pools → aggregate → ranks → nodes → plugins → sensor → topology
//
// Every failure wraps one of the sentinel errors in errors.go.
//
// # Ranks
//
// With P pools, process i of pool k is ranked in round-robin order across
// pools: for equal pool sizes this is rank = k + i*P. Ranks are dense, so an
// uneven split such as 3+1 processes still yields ranks 0..3.
package odinplan
