package types

import (
	"context"
	"time"
)

// Hooks defines callbacks for planner events.
//
// All hooks are optional and run synchronously on the planning goroutine.
// Hook errors are logged but never fail a build.
//
// Example:
//
//	hooks := &odinplan.Hooks{
//	    OnStageCompleted: func(ctx context.Context, stage string, took time.Duration) error {
//	        fmt.Printf("%s done in %s\n", stage, took)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStageCompleted is called after each planning stage succeeds.
	OnStageCompleted func(ctx context.Context, stage string, took time.Duration) error

	// OnArtifactWritten is called for every file written to the output directory.
	OnArtifactWritten func(ctx context.Context, path string, size int) error

	// OnError is called when planning or writing fails.
	OnError func(ctx context.Context, err error) error
}
