// Package render turns a plan into the files consumed by the OdinData
// binaries and odin-control: per-rank startup scripts, frame-receiver and
// frame-processor JSON, odin_server.cfg and the UDP fan-out table.
//
// Rendering is pure; WriteDir is the only function touching the filesystem.
package render
