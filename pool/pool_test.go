package pool

import (
	"errors"
	"testing"

	"github.com/arloliu/odinplan/types"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("allocates non-overlapping port blocks", func(t *testing.T) {
		wp, err := New(Spec{IP: "10.0.0.1", ProcessCount: 3, SharedMemSize: 1024})
		require.NoError(t, err)
		require.Equal(t, 3, wp.ProcessCount())

		procs := wp.Processes()
		for i, p := range procs {
			base := DefaultPortBase + i*DefaultPortStride
			require.Equal(t, i+1, p.Index)
			require.Equal(t, base+1, p.ReadyPort)
			require.Equal(t, base+2, p.ReleasePort)
			require.Equal(t, base+8, p.MetaPort)
			require.Nil(t, p.Rank)
			require.Nil(t, p.BaseUDPPort)
		}
	})

	t.Run("counters are pool scoped", func(t *testing.T) {
		first, err := New(Spec{IP: "10.0.0.1", ProcessCount: 2})
		require.NoError(t, err)
		second, err := New(Spec{IP: "10.0.0.2", ProcessCount: 2})
		require.NoError(t, err)

		require.Equal(t, first.Processes()[0].ReadyPort, second.Processes()[0].ReadyPort)
		require.Equal(t, 5011, second.Processes()[1].ReadyPort)
	})

	t.Run("assigns UDP ports per process", func(t *testing.T) {
		wp, err := New(Spec{IP: "10.0.0.1", ProcessCount: 3}, WithUDPPorts(NewUDPPortCounter(61649, 6)))
		require.NoError(t, err)

		var got []int
		for _, p := range wp.Processes() {
			require.NotNil(t, p.BaseUDPPort)
			got = append(got, *p.BaseUDPPort)
		}
		require.Equal(t, []int{61649, 61655, 61661}, got)
	})

	t.Run("custom port counter and factory", func(t *testing.T) {
		var seen []PortBlock
		factory := func(index int, blk PortBlock) *types.WorkerProcess {
			seen = append(seen, blk)
			return &types.WorkerProcess{ReadyPort: blk.Ready}
		}
		wp, err := New(Spec{IP: "10.0.0.1", ProcessCount: 2},
			WithPortCounter(NewPortCounter(10000, 20)),
			WithProcessFactory(factory),
		)
		require.NoError(t, err)
		require.Equal(t, []PortBlock{{10001, 10002, 10008}, {10021, 10022, 10028}}, seen)
		require.Equal(t, 2, wp.Processes()[1].Index)
	})

	t.Run("copies spec attributes", func(t *testing.T) {
		dest := types.FEMDestination{Name: "em1", MAC: "00:11:22:33:44:55", IP: "10.0.2.2", Subnet: 24}
		wp, err := New(Spec{
			IP: "10.0.0.1", ProcessCount: 1, IOThreads: 2, NUMANodes: 2,
			Sensor: "3M", Shape: types.SensorShape{Width: 2048, Height: 1536}, FEMDest: dest,
		})
		require.NoError(t, err)
		require.Equal(t, 2, wp.IOThreads)
		require.Equal(t, 2, wp.NUMANodes)
		require.Equal(t, "3M", wp.Sensor)
		require.Equal(t, dest, wp.FEMDest)
		require.False(t, wp.Instantiated())
	})

	t.Run("defaults IO threads to one", func(t *testing.T) {
		wp, err := New(Spec{IP: "10.0.0.1", ProcessCount: 1})
		require.NoError(t, err)
		require.Equal(t, 1, wp.IOThreads)
	})

	t.Run("rejects non-positive process count", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			wp, err := New(Spec{IP: "10.0.0.1", ProcessCount: n})
			require.Nil(t, wp)
			require.True(t, errors.Is(err, types.ErrInvalidProcessCount))
		}
	})

	t.Run("rejects factory returning nil", func(t *testing.T) {
		calls := 0
		factory := func(index int, _ PortBlock) *types.WorkerProcess {
			calls++
			if index == 2 {
				return nil
			}
			return &types.WorkerProcess{}
		}

		var wp *types.WorkerPool
		var err error
		require.NotPanics(t, func() {
			wp, err = New(Spec{IP: "10.0.0.1", ProcessCount: 3}, WithProcessFactory(factory))
		})
		require.Nil(t, wp)
		require.ErrorIs(t, err, types.ErrInvalidConfig)
		require.Contains(t, err.Error(), "process 2")
		require.Equal(t, 2, calls)
	})

	t.Run("rejects missing IP", func(t *testing.T) {
		_, err := New(Spec{ProcessCount: 1})
		require.True(t, errors.Is(err, types.ErrInvalidConfig))
	})
}

func TestPortCounter(t *testing.T) {
	c := NewPortCounter(5000, 0)
	require.Equal(t, 5000, c.Peek())
	require.Equal(t, PortBlock{Ready: 5001, Release: 5002, Meta: 5008}, c.Next())
	require.Equal(t, 5010, c.Peek())
}

func TestUDPPortCounter(t *testing.T) {
	c := NewUDPPortCounter(61000, 0)
	require.Equal(t, 61000, c.Next())
	require.Equal(t, 61001, c.Next())
}
