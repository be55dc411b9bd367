package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerProcess_Label(t *testing.T) {
	wp := NewWorkerPool("127.0.0.1", 1024)
	wp.AddProcess(&WorkerProcess{Index: 1})
	wp.AddProcess(&WorkerProcess{Index: 2})

	procs := wp.Processes()
	require.Equal(t, "OD1", procs[0].Label())
	require.Equal(t, "OD2", procs[1].Label())
	require.Same(t, wp, procs[1].Pool())
}

func TestWorkerProcess_RankValue(t *testing.T) {
	t.Run("unassigned rank is an error", func(t *testing.T) {
		wp := NewWorkerPool("10.0.0.1", 1024)
		p := &WorkerProcess{Index: 1}
		wp.AddProcess(p)

		_, err := p.RankValue()
		require.True(t, errors.Is(err, ErrRankNotAssigned))
		require.Contains(t, err.Error(), "10.0.0.1")
		require.Equal(t, 0, p.Number())
	})

	t.Run("assigned rank", func(t *testing.T) {
		rank := 3
		p := &WorkerProcess{Index: 1, Rank: &rank}

		got, err := p.RankValue()
		require.NoError(t, err)
		require.Equal(t, 3, got)
		require.Equal(t, 4, p.Number())
	})
}

func TestWorkerPool_ProcessesIsCopy(t *testing.T) {
	wp := NewWorkerPool("127.0.0.1", 1024)
	wp.AddProcess(&WorkerProcess{Index: 1})

	procs := wp.Processes()
	procs[0] = nil

	require.NotNil(t, wp.Processes()[0])
	require.Equal(t, 1, wp.ProcessCount())
}

func TestWorkerPool_Instantiated(t *testing.T) {
	wp := NewWorkerPool("127.0.0.1", 1024)
	require.False(t, wp.Instantiated())

	wp.MarkInstantiated()
	require.True(t, wp.Instantiated())
}

func TestWorkerPool_Endpoint(t *testing.T) {
	wp := NewWorkerPool("192.168.0.5", 1024)
	require.Equal(t, "192.168.0.5:5004", wp.Endpoint(5004))
}

func TestTopologyTable(t *testing.T) {
	a := Destination{Rank: 0, Name: "a", Port: 1}
	b := Destination{Rank: 1, Name: "b", Port: 2}
	table := NewTopologyTable([][]Destination{{a, b}, {b, a}})

	require.Equal(t, 2, table.Len())
	require.Equal(t, []string{"module01", "module02"}, table.Keys())
	require.Equal(t, []Destination{b, a}, table.Nodes("module02"))
	require.Nil(t, table.Nodes("module03"))

	nodes := table.Nodes("module01")
	nodes[0].Name = "mutated"
	require.Equal(t, "a", table.Nodes("module01")[0].Name)
}

func TestModuleKey(t *testing.T) {
	require.Equal(t, "module01", ModuleKey(0))
	require.Equal(t, "module10", ModuleKey(9))
}
