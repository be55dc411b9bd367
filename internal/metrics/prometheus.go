package metrics

import (
	"fmt"
	"sync"

	"github.com/arloliu/odinplan/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on the first Record call.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once
	regErr    error

	pools         prometheus.Gauge
	processes     prometheus.Gauge
	stageDuration *prometheus.GaugeVec
	planResults   *prometheus.CounterVec
	modules       *prometheus.GaugeVec
	destinations  *prometheus.GaugeVec
	artifacts     prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "odinplan" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "odinplan"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

// Err returns the registration error, if any collector failed to register.
func (p *PrometheusCollector) Err() error {
	p.ensureRegistered()
	return p.regErr
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.pools = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "plan",
			Name:      "pools",
			Help:      "Number of OdinData worker pools in the build.",
		})
		p.processes = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "plan",
			Name:      "processes",
			Help:      "Number of ranked OdinData processes in the build.",
		})
		p.stageDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "plan",
			Name:      "stage_duration_seconds",
			Help:      "Duration of the last run of each planning stage.",
		}, []string{"stage"})
		p.planResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "plan",
			Name:      "results_total",
			Help:      "Planning attempts by result (ok or failure class).",
		}, []string{"result"})
		p.modules = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "topology",
			Name:      "modules",
			Help:      "Number of FEM modules in the UDP fan-out table.",
		}, []string{"policy"})
		p.destinations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "topology",
			Name:      "destinations_per_module",
			Help:      "Number of frame-receiver destinations per FEM module.",
		}, []string{"policy"})
		p.artifacts = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "render",
			Name:      "artifacts",
			Help:      "Number of rendered build artifacts.",
		})

		for _, c := range []prometheus.Collector{
			p.pools, p.processes, p.stageDuration, p.planResults,
			p.modules, p.destinations, p.artifacts,
		} {
			if err := p.reg.Register(c); err != nil {
				p.regErr = fmt.Errorf("register metrics collector: %w", err)
				return
			}
		}
	})
}

// RecordPools sets the pool gauge.
func (p *PrometheusCollector) RecordPools(count int) {
	p.ensureRegistered()
	p.pools.Set(float64(count))
}

// RecordProcesses sets the process gauge.
func (p *PrometheusCollector) RecordProcesses(count int) {
	p.ensureRegistered()
	p.processes.Set(float64(count))
}

// RecordStageDuration sets the stage duration gauge.
func (p *PrometheusCollector) RecordStageDuration(stage string, duration float64) {
	p.ensureRegistered()
	p.stageDuration.WithLabelValues(stage).Set(duration)
}

// RecordPlanResult increments the result counter.
func (p *PrometheusCollector) RecordPlanResult(reason string) {
	p.ensureRegistered()
	p.planResults.WithLabelValues(reason).Inc()
}

// RecordTopology sets the module and destination gauges for a policy.
func (p *PrometheusCollector) RecordTopology(policy string, modules, destinations int) {
	p.ensureRegistered()
	p.modules.WithLabelValues(policy).Set(float64(modules))
	p.destinations.WithLabelValues(policy).Set(float64(destinations))
}

// RecordArtifacts sets the artifact gauge.
func (p *PrometheusCollector) RecordArtifacts(count int) {
	p.ensureRegistered()
	p.artifacts.Set(float64(count))
}
