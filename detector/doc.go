// Package detector holds the per-family parameters the planner runs with.
//
// A Profile replaces per-detector special cases: supported node counts, sensor
// geometries, UDP port allocation, the default plugin chain and the extra
// control-server adapters are all data. Lookup returns the built-in profile
// for a family name.
package detector
