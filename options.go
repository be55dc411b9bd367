package odinplan

// Option configures a Planner with optional dependencies.
type Option func(*plannerOptions)

// plannerOptions holds optional Planner configuration.
type plannerOptions struct {
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	strategy TopologyStrategy
}

// WithHooks sets planner event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewPlanner
//
// Example:
//
//	hooks := &odinplan.Hooks{
//	    OnArtifactWritten: func(ctx context.Context, path string, size int) error {
//	        fmt.Println("wrote", path)
//	        return nil
//	    },
//	}
//	planner, err := odinplan.NewPlanner(cfg, odinplan.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *plannerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewPlanner
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *plannerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (slog- or zap-style sugared logger)
//
// Returns:
//   - Option: Functional option for NewPlanner
//
// Example:
//
//	logger, _ := logging.NewText(os.Stderr, "info")
//	planner, err := odinplan.NewPlanner(cfg, odinplan.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *plannerOptions) {
		o.logger = logger
	}
}

// WithTopologyStrategy overrides the strategy selected from the configured policy.
//
// Parameters:
//   - s: TopologyStrategy implementation
//
// Returns:
//   - Option: Functional option for NewPlanner
func WithTopologyStrategy(s TopologyStrategy) Option {
	return func(o *plannerOptions) {
		o.strategy = s
	}
}
