// Package plugin describes frame-processor plugin chains and validates them
// before any per-process configuration is generated.
//
// A Chain is a small directed graph. Nodes are plugins; each edge connects a
// plugin to its source (another plugin or the frame receiver) under a mode.
// The default mode ("") is the chain loaded at startup; named modes are
// alternative wirings stored by the frame processor and selected at runtime:
//
//	chain := plugin.NewChain()
//	chain.Add(arc, plugin.FrameReceiver)
//	chain.Add(hdf, arc.Name)
//	chain.AddMode("no_compression", hdf.Name, arc.Name)
//
// Validate rejects dangling sources, duplicate plugins, declared modes with
// no edges and cycles. Load and connect orders are topological and do not
// depend on insertion order.
package plugin
