package strategy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/arloliu/odinplan/types"
	"github.com/stretchr/testify/require"
)

func dests(ranks ...int) []types.Destination {
	out := make([]types.Destination, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, types.Destination{Rank: r, Name: fmt.Sprintf("dest%d", r+1), Port: 61000 + r})
	}

	return out
}

func ranks(nodes []types.Destination) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Rank)
	}

	return out
}

func TestPartition(t *testing.T) {
	t.Run("distributes remainder to first blocks", func(t *testing.T) {
		blocks := Partition(dests(0, 1, 2, 3, 4, 5, 6, 7, 8, 9), 3)

		require.Len(t, blocks, 3)
		require.Equal(t, []int{0, 1, 2, 3}, ranks(blocks[0]))
		require.Equal(t, []int{4, 5, 6}, ranks(blocks[1]))
		require.Equal(t, []int{7, 8, 9}, ranks(blocks[2]))
	})

	t.Run("sizes differ by at most one", func(t *testing.T) {
		for total := 1; total <= 17; total++ {
			for n := 1; n <= 6; n++ {
				nodes := dests(make([]int, total)...)
				blocks := Partition(nodes, n)
				require.Len(t, blocks, n)

				minSize, maxSize, sum := total, 0, 0
				for _, b := range blocks {
					minSize = min(minSize, len(b))
					maxSize = max(maxSize, len(b))
					sum += len(b)
				}
				require.Equal(t, total, sum)
				require.LessOrEqual(t, maxSize-minSize, 1)
			}
		}
	})

	t.Run("non-positive count", func(t *testing.T) {
		require.Nil(t, Partition(dests(0), 0))
	})
}

func TestRoundRobin_Plan(t *testing.T) {
	t.Run("ten nodes over three modules", func(t *testing.T) {
		table, err := NewRoundRobin().Plan([][]types.Destination{dests(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)}, 3)

		require.NoError(t, err)
		require.Equal(t, []string{"module01", "module02", "module03"}, table.Keys())
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, ranks(table.Nodes("module01")))
		require.Equal(t, []int{4, 5, 6, 7, 8, 9, 0, 1, 2, 3}, ranks(table.Nodes("module02")))
		require.Equal(t, []int{7, 8, 9, 0, 1, 2, 3, 4, 5, 6}, ranks(table.Nodes("module03")))

		for _, key := range table.Keys() {
			require.ElementsMatch(t, ranks(table.Nodes("module01")), ranks(table.Nodes(key)))
		}
	})

	t.Run("sorts interleaved servers by rank", func(t *testing.T) {
		servers := [][]types.Destination{dests(0, 2, 4, 6), dests(1, 3, 5, 7)}

		table, err := NewRoundRobin().Plan(servers, 2)

		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, ranks(table.Nodes("module01")))
		require.Equal(t, []int{4, 5, 6, 7, 0, 1, 2, 3}, ranks(table.Nodes("module02")))
	})

	t.Run("more modules than nodes", func(t *testing.T) {
		table, err := NewRoundRobin().Plan([][]types.Destination{dests(0, 1)}, 3)

		require.NoError(t, err)
		require.Equal(t, []int{0, 1}, ranks(table.Nodes("module01")))
		require.Equal(t, []int{1, 0}, ranks(table.Nodes("module02")))
		require.Equal(t, []int{0, 1}, ranks(table.Nodes("module03")))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := dests(3, 1, 2, 0)
		_, err := NewRoundRobin().Plan([][]types.Destination{in}, 2)
		require.NoError(t, err)
		require.Equal(t, []int{3, 1, 2, 0}, ranks(in))
	})

	t.Run("rejects non-positive module count", func(t *testing.T) {
		table, err := NewRoundRobin().Plan([][]types.Destination{dests(0)}, 0)
		require.Nil(t, table)
		require.True(t, errors.Is(err, types.ErrTopologyMismatch))
	})

	t.Run("rejects empty destinations", func(t *testing.T) {
		_, err := NewRoundRobin().Plan(nil, 2)
		require.True(t, errors.Is(err, types.ErrTopologyMismatch))
	})

	t.Run("deterministic", func(t *testing.T) {
		servers := [][]types.Destination{dests(0, 2, 4), dests(1, 3)}
		a, err := NewRoundRobin().Plan(servers, 2)
		require.NoError(t, err)
		b, err := NewRoundRobin().Plan(servers, 2)
		require.NoError(t, err)
		require.Equal(t, a, b)
	})
}
