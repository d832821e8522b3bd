// Package metrics exposes Prometheus collectors for planning runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a planning run
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeInfeasible = "infeasible"
)

// Collector records planning runs
type Collector struct {
	runs    *prometheus.CounterVec
	repairs prometheus.Histogram
	steps   prometheus.Histogram
}

// New registers the planning collectors on reg, or on the default registerer when nil.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "roster"
	}

	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "runs_total",
			Help:      "Planning runs by outcome.",
		}, []string{"outcome"}),
		repairs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "repairs",
			Help:      "Repair detours per successful run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		steps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "steps",
			Help:      "Day visits per successful run.",
			Buckets:   prometheus.ExponentialBuckets(28, 2, 8),
		}),
	}
	reg.MustRegister(c.runs, c.repairs, c.steps)
	return c
}

// Run counts a run with the given outcome
func (c *Collector) Run(outcome string) {
	c.runs.WithLabelValues(outcome).Inc()
}

// Completed records a successful run
func (c *Collector) Completed(steps, repairs int) {
	c.Run(OutcomeOK)
	c.steps.Observe(float64(steps))
	c.repairs.Observe(float64(repairs))
}
