package types

import "errors"

// Sentinel errors for the odinplan library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap them with context using fmt.Errorf("%s: %w", msg, err).
//
// Every error is fatal to a build. Planning has no partial-success mode.

// Configuration errors - raised while reading and validating the build description.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownDetector is returned when no detector profile matches the requested name.
	ErrUnknownDetector = errors.New("unknown detector")

	// ErrInvalidProcessCount is returned when a worker pool is created with no processes.
	ErrInvalidProcessCount = errors.New("process count must be positive")
)

// Aggregate errors - raised while registering pools with a control server.
var (
	// ErrNoPools is returned when a control aggregate is created without any pool.
	ErrNoPools = errors.New("no worker pools registered")

	// ErrDuplicatePool is returned when a pool is given to more than one control aggregate,
	// or twice to the same one.
	ErrDuplicatePool = errors.New("worker pool given twice")

	// ErrRankNotAssigned is returned when an operation needs ranks before they were assigned.
	ErrRankNotAssigned = errors.New("rank not assigned")

	// ErrInconsistentSensorSize is returned when pools feeding one meta listener
	// report different sensor dimensions.
	ErrInconsistentSensorSize = errors.New("inconsistent sensor size")
)

// Planning errors - raised by validators and topology strategies.
var (
	// ErrProcessCountMismatch is returned when the total process count is not one of
	// the node counts supported by the detector.
	ErrProcessCountMismatch = errors.New("unsupported process count")

	// ErrTopologyMismatch is returned when a topology cannot be built from the given
	// modules and servers.
	ErrTopologyMismatch = errors.New("topology mismatch")

	// ErrInvalidPluginChain is returned when a plugin chain graph is malformed.
	ErrInvalidPluginChain = errors.New("invalid plugin chain")
)

// Output errors - raised when checking written artifacts.
var (
	// ErrManifestMismatch is returned when artifacts do not match a build manifest.
	ErrManifestMismatch = errors.New("artifacts do not match manifest")
)
