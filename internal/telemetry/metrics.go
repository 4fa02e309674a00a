package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the scheduler's prometheus counters. A fresh Metrics is
// registered into its own Registry per call to NewMetrics so that
// multiple concurrent or repeated RunGraph invocations (including
// nested ones) never collide on a shared default registry.
type Metrics struct {
	Registry  *prometheus.Registry
	Dispatched prometheus.Counter
	Completed  prometheus.Counter
	Failed     prometheus.Counter
	Skipped    prometheus.Counter
}

// NewMetrics builds and registers a fresh set of counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_tasks_dispatched_total",
			Help: "Number of tasks transitioned from Pending to Running.",
		}),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_tasks_completed_total",
			Help: "Number of tasks that finished their body successfully.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_tasks_failed_total",
			Help: "Number of tasks whose body returned an error.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_tasks_skipped_total",
			Help: "Number of tasks elided by the analyzer thanks to an existing checkpoint.",
		}),
	}

	reg.MustRegister(m.Dispatched, m.Completed, m.Failed, m.Skipped)
	return m
}
