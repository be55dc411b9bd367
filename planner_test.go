package odinplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/odinplan/internal/logger"
	"github.com/arloliu/odinplan/strategy"
	"github.com/arloliu/odinplan/types"
)

// excaliburConfig returns a two-server excalibur build with procs processes per server.
func excaliburConfig(procs int) *Config {
	return &Config{
		Detector: "excalibur",
		Sensor:   "3M",
		Control:  ControlConfig{IP: "192.168.0.10"},
		Pools: []PoolConfig{
			{
				IP: "192.168.0.1", Processes: procs, SharedMemSize: 1 << 30,
				FEMDest: FEMDestConfig{Name: "em1", MAC: "aa:bb:cc:dd:ee:01", IP: "10.0.2.1", Subnet: 24},
			},
			{
				IP: "192.168.0.2", Processes: procs, SharedMemSize: 1 << 30,
				FEMDest: FEMDestConfig{Name: "em2", MAC: "aa:bb:cc:dd:ee:02", IP: "10.0.2.2", Subnet: 24},
			},
		},
		Topology: TopologyConfig{Policy: strategy.PolicyRoundRobin, Modules: 2},
	}
}

func planFor(t *testing.T, cfg *Config, opts ...Option) (*Plan, error) {
	t.Helper()

	planner, err := NewPlanner(cfg, opts...)
	require.NoError(t, err)

	return planner.Plan(context.Background())
}

func ranksOf(nodes []types.Destination) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Rank)
	}

	return out
}

// recordingMetrics keeps the values the planner reports.
type recordingMetrics struct {
	pools, processes int
	stages           []string
	results          []string
	policy           string
	modules, dests   int
	artifacts        int
}

var _ MetricsCollector = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{}
}

func (m *recordingMetrics) RecordPools(count int)     { m.pools = count }
func (m *recordingMetrics) RecordProcesses(count int) { m.processes = count }
func (m *recordingMetrics) RecordArtifacts(count int) { m.artifacts = count }

func (m *recordingMetrics) RecordStageDuration(stage string, _ float64) {
	m.stages = append(m.stages, stage)
}

func (m *recordingMetrics) RecordPlanResult(reason string) {
	m.results = append(m.results, reason)
}

func (m *recordingMetrics) RecordTopology(policy string, modules, destinations int) {
	m.policy, m.modules, m.dests = policy, modules, destinations
}

func TestNewPlanner(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewPlanner(nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := excaliburConfig(2)
		cfg.Control.IP = "not-an-ip"

		_, err := NewPlanner(cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("copies and defaults config", func(t *testing.T) {
		cfg := excaliburConfig(2)
		cfg.Topology.Modules = 0

		planner, err := NewPlanner(cfg)
		require.NoError(t, err)

		cfg.Pools[0].IP = "10.9.9.9"
		got := planner.Config()
		require.Equal(t, "192.168.0.1", got.Pools[0].IP)
		require.Equal(t, 2, got.Topology.Modules)
		require.Equal(t, 8888, got.Control.Port)
		require.Zero(t, cfg.Topology.Modules)
	})
}

func TestPlanner_Plan_RoundRobin(t *testing.T) {
	plan, err := planFor(t, excaliburConfig(4))
	require.NoError(t, err)

	require.Equal(t, "excalibur", plan.Profile.Name)
	require.Equal(t, types.SensorShape{Width: 2048, Height: 1536}, plan.Sensor)
	require.Equal(t, "3M", plan.SensorName)
	require.Equal(t, strategy.PolicyRoundRobin, plan.Policy)
	require.Len(t, plan.Processes, 8)

	t.Run("ranks interleave servers", func(t *testing.T) {
		for r, proc := range plan.Processes {
			rank, err := proc.RankValue()
			require.NoError(t, err)
			require.Equal(t, r, rank)

			wantIP := "192.168.0.1"
			if r%2 == 1 {
				wantIP = "192.168.0.2"
			}
			require.Equal(t, wantIP, proc.Pool().IP)
			require.Equal(t, r/2+1, proc.Index)
		}
	})

	t.Run("ports are pool scoped", func(t *testing.T) {
		for _, wp := range plan.Aggregate.Pools() {
			for i, proc := range wp.Processes() {
				require.Equal(t, 5001+10*i, proc.ReadyPort)
				require.Equal(t, 5002+10*i, proc.ReleasePort)
				require.Equal(t, 5008+10*i, proc.MetaPort)
				require.NotNil(t, proc.BaseUDPPort)
				require.Equal(t, 61649+6*i, *proc.BaseUDPPort)
				require.Equal(t, 5000+10*i, proc.Local.FRCtrl)
				require.Equal(t, 5004+10*i, proc.Local.FPCtrl)
			}
		}
	})

	t.Run("topology rotates blocks", func(t *testing.T) {
		require.Equal(t, []string{"module01", "module02"}, plan.Topology.Keys())
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, ranksOf(plan.Topology.Nodes("module01")))
		require.Equal(t, []int{4, 5, 6, 7, 0, 1, 2, 3}, ranksOf(plan.Topology.Nodes("module02")))

		first := plan.Topology.Nodes("module01")[1]
		require.Equal(t, "em2", first.Name)
		require.Equal(t, "aa:bb:cc:dd:ee:02", first.MAC)
		require.Equal(t, "10.0.2.2", first.IP)
		require.Equal(t, 61649, first.Port)
		require.Equal(t, 24, first.Subnet)
	})

	t.Run("chain is validated", func(t *testing.T) {
		order, err := plan.Chain.LoadOrder()
		require.NoError(t, err)
		require.Equal(t, []string{"excalibur", "hdf", "view"}, order)
		require.Empty(t, plan.Mode)
	})
}

func TestPlanner_Plan_OneToOne(t *testing.T) {
	t.Run("module per server", func(t *testing.T) {
		cfg := excaliburConfig(2)
		cfg.Topology.Policy = strategy.PolicyOneToOne

		plan, err := planFor(t, cfg)
		require.NoError(t, err)
		require.Equal(t, strategy.PolicyOneToOne, plan.Policy)
		require.Equal(t, []int{0, 2}, ranksOf(plan.Topology.Nodes("module01")))
		require.Equal(t, []int{1, 3}, ranksOf(plan.Topology.Nodes("module02")))
	})

	t.Run("module count mismatch", func(t *testing.T) {
		cfg := excaliburConfig(2)
		cfg.Topology.Policy = strategy.PolicyOneToOne
		cfg.Topology.Modules = 3

		plan, err := planFor(t, cfg)
		require.ErrorIs(t, err, ErrTopologyMismatch)
		require.Nil(t, plan)
	})
}

func TestPlanner_Plan_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
		stage  string
	}{
		{
			name:   "unknown detector",
			mutate: func(c *Config) { c.Detector = "pilatus" },
			want:   ErrUnknownDetector,
		},
		{
			name:   "zero processes",
			mutate: func(c *Config) { c.Pools[1].Processes = 0 },
			want:   ErrInvalidProcessCount,
			stage:  StagePools,
		},
		{
			name:   "unknown sensor",
			mutate: func(c *Config) { c.Pools[0].Sensor = "5M" },
			want:   ErrInvalidConfig,
			stage:  StagePools,
		},
		{
			name:   "unsupported process count",
			mutate: func(c *Config) { c.Pools[1].Processes = 1 },
			want:   ErrProcessCountMismatch,
			stage:  StageNodes,
		},
		{
			name:   "sensor mismatch",
			mutate: func(c *Config) { c.Pools[1].Sensor = "1M" },
			want:   ErrInconsistentSensorSize,
			stage:  StageSensor,
		},
		{
			name:   "missing fem destination",
			mutate: func(c *Config) { c.Pools[1].FEMDest = FEMDestConfig{} },
			want:   ErrTopologyMismatch,
			stage:  StageTopology,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := excaliburConfig(2)
			tt.mutate(cfg)

			plan, err := planFor(t, cfg)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, plan)
			if tt.stage != "" {
				require.Contains(t, err.Error(), tt.stage+":")
			}
		})
	}

	t.Run("process count error lists supported counts", func(t *testing.T) {
		cfg := excaliburConfig(2)
		cfg.Pools[1].Processes = 1

		_, err := planFor(t, cfg)
		require.ErrorContains(t, err, "[2 4 8]")
	})
}

func TestPlanner_Plan_PluginModes(t *testing.T) {
	arc := func(mode string) *Config {
		return &Config{
			Detector: "arc",
			Sensor:   "1FEM",
			Pools: []PoolConfig{{
				IP: "192.168.0.1", Processes: 2,
				FEMDest: FEMDestConfig{MAC: "aa:bb:cc:dd:ee:01", IP: "10.0.2.1"},
			}},
			Plugins: PluginConfig{Mode: mode},
		}
	}

	t.Run("arc mode selected", func(t *testing.T) {
		plan, err := planFor(t, arc("no_compression"))
		require.NoError(t, err)
		require.Equal(t, "no_compression", plan.Mode)
		require.Equal(t, []string{"compression", "no_compression"}, plan.Chain.Modes())
	})

	t.Run("arc policy defaults to profile", func(t *testing.T) {
		plan, err := planFor(t, arc(""))
		require.NoError(t, err)
		require.Equal(t, strategy.PolicyRoundRobin, plan.Policy)
		require.Equal(t, 1, plan.Topology.Len())
		require.Equal(t, "dest1", plan.Topology.Nodes("module01")[0].Name)
	})

	t.Run("arc unknown mode", func(t *testing.T) {
		_, err := planFor(t, arc("fast"))
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.ErrorContains(t, err, StagePlugins+":")
	})

	t.Run("eiger variant", func(t *testing.T) {
		cfg := &Config{
			Detector: "eiger",
			Sensor:   "4M",
			Pools:    []PoolConfig{{IP: "192.168.0.1", Processes: 2}},
			Plugins:  PluginConfig{Mode: "Kafka", KafkaServers: "broker:9092"},
		}

		plan, err := planFor(t, cfg)
		require.NoError(t, err)
		require.Empty(t, plan.Mode)
		require.Nil(t, plan.Topology)
		require.Empty(t, plan.Policy)

		order, err := plan.Chain.LoadOrder()
		require.NoError(t, err)
		require.Equal(t, []string{"eiger", "hdf", "kafka"}, order)
	})

	t.Run("eiger kafka without servers", func(t *testing.T) {
		cfg := &Config{
			Detector: "eiger",
			Sensor:   "4M",
			Pools:    []PoolConfig{{IP: "192.168.0.1", Processes: 1}},
			Plugins:  PluginConfig{Mode: "Kafka"},
		}

		plan, err := planFor(t, cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.ErrorContains(t, err, StagePlugins+": kafka mode requires kafka servers")
		require.Nil(t, plan)
	})

	t.Run("eiger unknown variant", func(t *testing.T) {
		cfg := &Config{
			Detector: "eiger",
			Sensor:   "4M",
			Pools:    []PoolConfig{{IP: "192.168.0.1", Processes: 1}},
			Plugins:  PluginConfig{Mode: "Streaming"},
		}

		_, err := planFor(t, cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestPlanner_Plan_Observability(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var stages []string
		hooks := &Hooks{
			OnStageCompleted: func(_ context.Context, stage string, took time.Duration) error {
				stages = append(stages, stage)
				require.GreaterOrEqual(t, took, time.Duration(0))

				return errors.New("ignored")
			},
		}
		rec := newRecordingMetrics()
		log := logger.NewTest(t)

		_, err := planFor(t, excaliburConfig(4), WithHooks(hooks), WithMetrics(rec), WithLogger(log))
		require.NoError(t, err)

		want := []string{
			StagePools, StageAggregate, StageRanks, StageNodes,
			StagePlugins, StageSensor, StageTopology,
		}
		require.Equal(t, want, stages)
		require.Equal(t, want, rec.stages)
		require.Equal(t, []string{"ok"}, rec.results)
		require.Equal(t, 2, rec.pools)
		require.Equal(t, 8, rec.processes)
		require.Equal(t, strategy.PolicyRoundRobin, rec.policy)
		require.Equal(t, 2, rec.modules)
		require.Equal(t, 8, rec.dests)

		require.True(t, log.Has("INFO", "plan complete"))
		require.True(t, log.Has("WARN", "stage hook failed"))
	})

	t.Run("failure", func(t *testing.T) {
		var hookErr error
		hooks := &Hooks{
			OnError: func(_ context.Context, err error) error {
				hookErr = err
				return nil
			},
		}
		rec := newRecordingMetrics()
		log := logger.NewTest(t)
		cfg := excaliburConfig(2)
		cfg.Pools[1].Processes = 1

		_, err := planFor(t, cfg, WithHooks(hooks), WithMetrics(rec), WithLogger(log))
		require.ErrorIs(t, err, ErrProcessCountMismatch)
		require.ErrorIs(t, hookErr, ErrProcessCountMismatch)
		require.Equal(t, []string{"process_count_mismatch"}, rec.results)
		require.True(t, log.Has("ERROR", "planning failed"))
	})
}

func TestPlanner_Plan_Cancelled(t *testing.T) {
	planner, err := NewPlanner(excaliburConfig(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := planner.Plan(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, plan)
}

func TestPlanner_Plan_Repeatable(t *testing.T) {
	planner, err := NewPlanner(excaliburConfig(2))
	require.NoError(t, err)

	first, err := planner.Plan(context.Background())
	require.NoError(t, err)
	second, err := planner.Plan(context.Background())
	require.NoError(t, err)

	require.NotSame(t, first.Aggregate, second.Aggregate)
	require.Equal(t, first.Topology.Keys(), second.Topology.Keys())
	require.Equal(t, ranksOf(first.Topology.Nodes("module02")), ranksOf(second.Topology.Nodes("module02")))
}

type fixedStrategy struct{}

func (fixedStrategy) Name() string { return "FIXED" }

func (fixedStrategy) Plan(servers [][]types.Destination, _ int) (*types.TopologyTable, error) {
	return types.NewTopologyTable([][]types.Destination{servers[0]}), nil
}

func TestPlanner_WithTopologyStrategy(t *testing.T) {
	plan, err := planFor(t, excaliburConfig(2), WithTopologyStrategy(fixedStrategy{}))
	require.NoError(t, err)
	require.Equal(t, "FIXED", plan.Policy)
	require.Equal(t, []int{0, 2}, ranksOf(plan.Topology.Nodes("module01")))
}
