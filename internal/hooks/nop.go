// Package hooks provides the default planner hooks.
package hooks

import (
	"context"
	"time"

	"github.com/arloliu/odinplan/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// Used when no custom hooks are provided, so callers never check for nil.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, string, time.Duration) error = (*NopHooks)(nil).OnStageCompleted
	_ func(context.Context, string, int) error           = (*NopHooks)(nil).OnArtifactWritten
	_ func(context.Context, error) error                 = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStageCompleted:  h.OnStageCompleted,
		OnArtifactWritten: h.OnArtifactWritten,
		OnError:           h.OnError,
	}
}

// Fill returns h with every nil callback replaced by a no-op.
func Fill(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnStageCompleted != nil {
		out.OnStageCompleted = h.OnStageCompleted
	}
	if h.OnArtifactWritten != nil {
		out.OnArtifactWritten = h.OnArtifactWritten
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnStageCompleted is a no-op implementation.
func (h *NopHooks) OnStageCompleted(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

// OnArtifactWritten is a no-op implementation.
func (h *NopHooks) OnArtifactWritten(_ context.Context, _ string, _ int) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
