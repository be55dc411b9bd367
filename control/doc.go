// Package control models the Odin control server aggregate: the ordered set
// of worker pools registered with one odin_server process.
//
// Registration order is significant. It defines the stride used by rank
// assignment and the server order used by one-to-one topologies.
//
// A pool can be consumed by exactly one aggregate. NewAggregate checks every
// pool before marking any of them, so a rejected registration leaves all
// pools, and any previously built aggregate, untouched.
package control
