package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arloliu/odinplan/types"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	h := NewNop()
	ctx := context.Background()

	require.NoError(t, h.OnStageCompleted(ctx, "ranks", time.Millisecond))
	require.NoError(t, h.OnArtifactWritten(ctx, "fp1.json", 10))
	require.NoError(t, h.OnError(ctx, errors.New("boom")))
}

func TestFill(t *testing.T) {
	t.Run("nil hooks", func(t *testing.T) {
		h := Fill(nil)
		require.NotNil(t, h.OnStageCompleted)
		require.NotNil(t, h.OnArtifactWritten)
		require.NotNil(t, h.OnError)
	})

	t.Run("keeps provided callbacks", func(t *testing.T) {
		var stages []string
		h := Fill(&types.Hooks{
			OnStageCompleted: func(_ context.Context, stage string, _ time.Duration) error {
				stages = append(stages, stage)
				return nil
			},
		})

		require.NoError(t, h.OnStageCompleted(context.Background(), "topology", 0))
		require.NoError(t, h.OnError(context.Background(), errors.New("ignored")))
		require.Equal(t, []string{"topology"}, stages)
	})
}
