package odinplan

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/odinplan/control"
	"github.com/arloliu/odinplan/detector"
	"github.com/arloliu/odinplan/internal/hooks"
	"github.com/arloliu/odinplan/internal/logger"
	"github.com/arloliu/odinplan/internal/metrics"
	"github.com/arloliu/odinplan/plugin"
	"github.com/arloliu/odinplan/pool"
	"github.com/arloliu/odinplan/render"
	"github.com/arloliu/odinplan/strategy"
	"github.com/arloliu/odinplan/types"
)

// Planning stage names, used for logs, metrics and hooks.
const (
	StagePools     = "pools"
	StageAggregate = "aggregate"
	StageRanks     = "ranks"
	StageNodes     = "nodes"
	StagePlugins   = "plugins"
	StageSensor    = "sensor"
	StageTopology  = "topology"
	StageRender    = "render"
	StageWrite     = "write"
)

// Plan is the result of a successful planning run.
type Plan struct {
	// Config is the defaulted configuration the plan was built from.
	Config Config

	// Profile is the detector profile.
	Profile *detector.Profile

	// Aggregate is the control aggregate owning every pool.
	Aggregate *control.Aggregate

	// Processes lists every process in rank order.
	Processes []*types.WorkerProcess

	// Sensor is the sensor shape shared by every pool.
	Sensor types.SensorShape

	// SensorName is the sensor option of the first pool.
	SensorName string

	// Chain is the validated plugin chain.
	Chain *plugin.Chain

	// Mode is the stored chain mode executed at startup, empty for the default wiring.
	Mode string

	// Policy is the topology policy used, empty when the detector has no UDP fan-out.
	Policy string

	// Topology is the FEM fan-out table, nil when the detector has no UDP fan-out.
	Topology *types.TopologyTable
}

// Build converts the plan into renderer input.
func (p *Plan) Build() *render.Build {
	return &render.Build{
		Profile:   p.Profile,
		Control:   p.Aggregate,
		Processes: p.Processes,
		Sensor:    p.Sensor,
		Chain:     p.Chain,
		Mode:      p.Mode,
		Topology:  p.Topology,

		SensorName: p.SensorName,
		Paths: render.Paths{
			OdinData:    p.Config.Paths.OdinData,
			Detector:    p.Config.Paths.Detector,
			HDF5Filters: p.Config.Paths.HDF5Filters,
			LogConfig:   p.Config.Paths.LogConfig,
			OdinServer:  p.Config.Paths.OdinServer,
		},
	}
}

// Planner runs the planning stages for one build description.
//
// A Planner is not safe for concurrent use; each Plan call builds fresh pools.
type Planner struct {
	cfg      Config
	logger   Logger
	metrics  MetricsCollector
	hooks    Hooks
	strategy TopologyStrategy
}

// NewPlanner creates a planner for cfg.
//
// The configuration is copied, defaulted and validated; later changes to cfg
// do not affect the planner.
//
// Parameters:
//   - cfg: Build description
//   - opts: Optional logger, metrics, hooks and topology strategy
//
// Returns:
//   - *Planner: Planner ready to run
//   - error: ErrInvalidConfig for a nil or invalid configuration
func NewPlanner(cfg *Config, opts ...Option) (*Planner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required: %w", ErrInvalidConfig)
	}

	o := plannerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	c := *cfg
	c.Pools = slices.Clone(cfg.Pools)
	SetDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.ValidateWithWarnings(o.logger)

	return &Planner{
		cfg:      c,
		logger:   o.logger,
		metrics:  o.metrics,
		hooks:    hooks.Fill(o.hooks),
		strategy: o.strategy,
	}, nil
}

// Config returns the defaulted configuration.
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan runs every planning stage in order.
//
// Stages:
//  1. pools: build one worker pool per configured server
//  2. aggregate: register every pool with one control aggregate
//  3. ranks: assign global ranks and local ports
//  4. nodes: check the total process count against the detector
//  5. plugins: build and validate the plugin chain
//  6. sensor: check that all pools share one sensor shape
//  7. topology: plan the FEM fan-out table (UDP detectors only)
//
// Parameters:
//   - ctx: Checked between stages
//
// Returns:
//   - *Plan: Complete plan
//   - error: The first stage failure, wrapping a sentinel error; no partial plan is returned
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	plan, err := p.plan(ctx)
	p.metrics.RecordPlanResult(FailureReason(err))
	if err != nil {
		p.logger.Error("planning failed", "detector", p.cfg.Detector, "reason", FailureReason(err), "error", err)
		p.callOnError(ctx, err)

		return nil, err
	}

	p.logger.Info("plan complete",
		"detector", plan.Profile.Name,
		"pools", len(plan.Aggregate.Pools()),
		"processes", len(plan.Processes),
		"policy", plan.Policy,
	)

	return plan, nil
}

func (p *Planner) plan(ctx context.Context) (*Plan, error) {
	profile, err := detector.Lookup(p.cfg.Detector)
	if err != nil {
		return nil, err
	}

	st := &planState{Plan: &Plan{Config: p.cfg, Profile: profile}}

	stages := []struct {
		name string
		run  func(*planState) error
	}{
		{StagePools, p.buildPools},
		{StageAggregate, p.register},
		{StageRanks, p.assignRanks},
		{StageNodes, p.checkNodes},
		{StagePlugins, p.buildChain},
		{StageSensor, p.checkSensor},
		{StageTopology, p.planTopology},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("planning cancelled before %s: %w", stage.name, err)
		}

		start := time.Now()
		if err := stage.run(st); err != nil {
			p.logger.Debug("stage failed", "stage", stage.name, "error", err)
			return nil, fmt.Errorf("%s: %w", stage.name, err)
		}
		took := time.Since(start)

		p.metrics.RecordStageDuration(stage.name, took.Seconds())
		p.logger.Debug("stage complete", "stage", stage.name, "took", took)
		if herr := p.hooks.OnStageCompleted(ctx, stage.name, took); herr != nil {
			p.logger.Warn("stage hook failed", "stage", stage.name, "error", herr)
		}
	}

	return st.Plan, nil
}

// planState carries intermediate results between stages.
type planState struct {
	*Plan
	pools []*types.WorkerPool
}

func (p *Planner) buildPools(st *planState) error {
	profile := st.Profile
	pools := make([]*types.WorkerPool, 0, len(p.cfg.Pools))
	for i, pc := range p.cfg.Pools {
		shape, err := profile.Sensor(pc.Sensor)
		if err != nil {
			return fmt.Errorf("pools[%d]: %w", i, err)
		}

		var opts []pool.Option
		if profile.HasUDP() {
			opts = append(opts, pool.WithUDPPorts(pool.NewUDPPortCounter(profile.UDPBasePort, profile.UDPPortStep)))
		}

		wp, err := pool.New(pool.Spec{
			IP:            pc.IP,
			ProcessCount:  pc.Processes,
			SharedMemSize: pc.SharedMemSize,
			IOThreads:     pc.IOThreads,
			NUMANodes:     pc.NUMANodes,
			Sensor:        pc.Sensor,
			Shape:         shape,
			FEMDest: types.FEMDestination{
				Name:   pc.FEMDest.Name,
				MAC:    pc.FEMDest.MAC,
				IP:     pc.FEMDest.IP,
				Subnet: pc.FEMDest.Subnet,
			},
		}, opts...)
		if err != nil {
			return fmt.Errorf("pools[%d]: %w", i, err)
		}

		p.logger.Debug("pool built", "ip", wp.IP, "processes", wp.ProcessCount(), "sensor", wp.Sensor)
		pools = append(pools, wp)
	}
	st.pools = pools
	p.metrics.RecordPools(len(pools))

	return nil
}

func (p *Planner) register(st *planState) error {
	agg, err := control.NewAggregate(p.cfg.Control.IP, p.cfg.Control.Port, st.pools...)
	if err != nil {
		return err
	}
	st.Aggregate = agg

	return nil
}

func (p *Planner) assignRanks(plan *planState) error {
	total, err := plan.Aggregate.Assign()
	if err != nil {
		return err
	}

	plan.Processes, err = plan.Aggregate.Processes()
	if err != nil {
		return err
	}
	p.metrics.RecordProcesses(total)

	for _, proc := range plan.Processes {
		rank, _ := proc.RankValue()
		p.logger.Debug("rank assigned", "pool", proc.Pool().IP, "process", proc.Label(), "rank", rank)
	}

	return nil
}

func (p *Planner) checkNodes(plan *planState) error {
	return plugin.ValidateProcessCount(len(plan.Processes), plan.Profile.SupportedNodeCounts)
}

func (p *Planner) buildChain(plan *planState) error {
	chain, err := plan.Profile.Chain(plugin.ChainOptions{
		Mode:         p.cfg.Plugins.Mode,
		KafkaServers: p.cfg.Plugins.KafkaServers,
		LibraryPath:  p.cfg.Paths.Detector,
	})
	if err != nil {
		return err
	}
	if err := chain.Validate(); err != nil {
		return err
	}

	modes := chain.Modes()
	if mode := p.cfg.Plugins.Mode; mode != "" && len(modes) > 0 {
		if !slices.Contains(modes, mode) {
			return fmt.Errorf("plugin mode %q not one of %v: %w", mode, modes, ErrInvalidConfig)
		}
		plan.Mode = mode
	}
	plan.Chain = chain

	return nil
}

func (p *Planner) checkSensor(plan *planState) error {
	shape, err := plan.Aggregate.CheckSensorShapes()
	if err != nil {
		return err
	}
	plan.Sensor = shape
	plan.SensorName = plan.pools[0].Sensor

	return nil
}

func (p *Planner) planTopology(plan *planState) error {
	if !plan.Profile.HasUDP() {
		p.logger.Debug("detector has no UDP fan-out, skipping topology", "detector", plan.Profile.Name)
		return nil
	}

	policy := p.cfg.Topology.Policy
	if policy == "" {
		policy = plan.Profile.DefaultPolicy
	}

	s := p.strategy
	if s == nil {
		var err error
		if s, err = strategy.ForPolicy(policy); err != nil {
			return err
		}
	}

	servers, err := destinations(plan.Aggregate.Pools(), plan.Profile.RequiresFEMDest)
	if err != nil {
		return err
	}

	table, err := s.Plan(servers, p.cfg.Topology.Modules)
	if err != nil {
		return err
	}

	plan.Policy = s.Name()
	plan.Topology = table
	perModule := 0
	if keys := table.Keys(); len(keys) > 0 {
		perModule = len(table.Nodes(keys[0]))
	}
	p.metrics.RecordTopology(plan.Policy, table.Len(), perModule)

	return nil
}

// destinations lists each pool's processes as FEM destinations. Unnamed
// links are named dest<rank+1>.
func destinations(pools []*types.WorkerPool, requireFEMDest bool) ([][]types.Destination, error) {
	servers := make([][]types.Destination, 0, len(pools))
	for _, wp := range pools {
		if requireFEMDest && (wp.FEMDest.MAC == "" || wp.FEMDest.IP == "") {
			return nil, fmt.Errorf("pool %s has no FEM destination mac/ip: %w", wp.IP, ErrTopologyMismatch)
		}

		nodes := make([]types.Destination, 0, wp.ProcessCount())
		for _, proc := range wp.Processes() {
			rank, err := proc.RankValue()
			if err != nil {
				return nil, err
			}
			if proc.BaseUDPPort == nil {
				return nil, fmt.Errorf("process %s on %s has no UDP port: %w", proc.Label(), wp.IP, ErrTopologyMismatch)
			}

			name := wp.FEMDest.Name
			if name == "" {
				name = fmt.Sprintf("dest%d", rank+1)
			}
			nodes = append(nodes, types.Destination{
				Rank:   rank,
				Name:   name,
				MAC:    wp.FEMDest.MAC,
				IP:     wp.FEMDest.IP,
				Port:   *proc.BaseUDPPort,
				Subnet: wp.FEMDest.Subnet,
			})
		}
		servers = append(servers, nodes)
	}

	return servers, nil
}

func (p *Planner) callOnError(ctx context.Context, err error) {
	if herr := p.hooks.OnError(ctx, err); herr != nil {
		p.logger.Warn("error hook failed", "error", herr)
	}
}
