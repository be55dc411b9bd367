// Package manifest records what a build produced and packs it for transfer.
//
// The manifest lists every artifact with its size and xxh3 fingerprint plus
// an aggregate fingerprint over all of them. Fingerprints depend only on
// content, so two runs over the same configuration agree; the build ID is a
// fresh UUID per run.
package manifest
