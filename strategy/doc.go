// Package strategy provides the built-in FEM to frame-receiver topology strategies.
//
// Topology strategies determine how receiver destinations are distributed
// across front-end modules. The package includes two built-in strategies:
//
//   - RoundRobin: every module sees every receiver, rotated per module
//   - OneToOne: each module is paired with exactly one server's receivers
//
// # Strategy Selection Guide
//
// RoundRobin:
//   - Use when any receiver may take frames from any module
//   - Staggers each module's first receiver to spread load
//   - Works for any module and server count
//
// OneToOne:
//   - Use when each server has a dedicated data link per module
//   - Requires module count == server count, fails otherwise
//
// Custom strategies can be implemented by satisfying the types.TopologyStrategy interface.
package strategy
