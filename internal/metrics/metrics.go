// Package metrics exposes satpg's run counters and gauges through
// github.com/prometheus/client_golang/prometheus, grounded on
// etalazz-vsa/internal/ratelimiter/telemetry/churn's counter/gauge set and
// jhkimqd-chaos-utils's direct client_golang import. Unlike churn's global
// package-level metrics (registered once via init/MustRegister against the
// default registry), Registry here is an explicit per-Session instance
// bound to its own prometheus.Registry, since spec.md 9's AtpgMgr-removal
// guidance rules out a process-wide singleton for any session-scoped state,
// metrics included.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds every counter/gauge one satpg session reports, plus the
// prometheus.Registry they are registered against.
type Registry struct {
	reg *prometheus.Registry

	DecisionsTotal    prometheus.Counter
	BacktracksTotal   prometheus.Counter
	DetectedTotal     prometheus.Counter
	UntestableTotal   prometheus.Counter
	UndeterminedTotal prometheus.Counter
	PatternsTotal     prometheus.Counter
	WSAGauge          prometheus.Gauge
	CoverageGauge     prometheus.Gauge
}

// New builds a Registry under namespace, registering every metric against
// a fresh prometheus.Registry (never the global default, so multiple
// sessions in one process never collide on duplicate registration).
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		DecisionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sat_decisions_total",
			Help:      "Total SAT branching decisions made across all DTPG solves.",
		}),
		BacktracksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sat_backtracks_total",
			Help:      "Total DPLL backtracking steps across all DTPG solves.",
		}),
		DetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_detected_total",
			Help:      "Total faults marked detected.",
		}),
		UntestableTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_untestable_total",
			Help:      "Total faults marked untestable (SAT solver returned UNSAT).",
		}),
		UndeterminedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_undetermined_total",
			Help:      "Total faults left undetermined by a solver timeout or abort.",
		}),
		PatternsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_generated_total",
			Help:      "Total test vectors retained across RTPG and DTPG.",
		}),
		WSAGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wsa_last",
			Help:      "Weighted switching activity of the most recently evaluated pattern.",
		}),
		CoverageGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fault_coverage_ratio",
			Help:      "Fraction of representative faults resolved (detected+untestable)/total.",
		}),
	}
	reg.MustRegister(
		r.DecisionsTotal, r.BacktracksTotal, r.DetectedTotal, r.UntestableTotal,
		r.UndeterminedTotal, r.PatternsTotal, r.WSAGauge, r.CoverageGauge,
	)
	return r
}

// Gatherer exposes the underlying prometheus.Registry for an HTTP
// /metrics handler (promhttp.HandlerFor), matching churn's promhttp wiring
// without satpg itself depending on net/http.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
