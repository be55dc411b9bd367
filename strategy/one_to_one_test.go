package strategy

import (
	"errors"
	"testing"

	"github.com/arloliu/odinplan/types"
	"github.com/stretchr/testify/require"
)

func TestOneToOne_Plan(t *testing.T) {
	t.Run("pairs each module with one server", func(t *testing.T) {
		servers := [][]types.Destination{dests(4, 0, 2), dests(3, 1)}

		table, err := NewOneToOne().Plan(servers, 2)

		require.NoError(t, err)
		require.Equal(t, []int{0, 2, 4}, ranks(table.Nodes("module01")))
		require.Equal(t, []int{1, 3}, ranks(table.Nodes("module02")))
	})

	t.Run("fails on module/server mismatch with no output", func(t *testing.T) {
		servers := [][]types.Destination{dests(0), dests(1), dests(2)}

		table, err := NewOneToOne().Plan(servers, 2)

		require.Nil(t, table)
		require.True(t, errors.Is(err, types.ErrTopologyMismatch))
		require.Contains(t, err.Error(), "(2)")
		require.Contains(t, err.Error(), "(3)")
	})

	t.Run("fails with no servers", func(t *testing.T) {
		_, err := NewOneToOne().Plan(nil, 0)
		require.True(t, errors.Is(err, types.ErrTopologyMismatch))
	})

	t.Run("fails on empty server", func(t *testing.T) {
		_, err := NewOneToOne().Plan([][]types.Destination{dests(0), nil}, 2)
		require.True(t, errors.Is(err, types.ErrTopologyMismatch))
	})
}

func TestForPolicy(t *testing.T) {
	s, err := ForPolicy("roundrobin")
	require.NoError(t, err)
	require.Equal(t, PolicyRoundRobin, s.Name())

	s, err = ForPolicy(PolicyOneToOne)
	require.NoError(t, err)
	require.IsType(t, &OneToOne{}, s)

	_, err = ForPolicy("hash")
	require.True(t, errors.Is(err, ErrUnknownPolicy))
	require.True(t, errors.Is(err, types.ErrInvalidConfig))
}
