// Package metrics exposes prometheus counters for engine actions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the services report to.
type Recorder interface {
	RecordAction(action, outcome string, duration time.Duration)
	RecordChangeDropped()
}

// Collector is the prometheus backed Recorder.
type Collector struct {
	actions        *prometheus.CounterVec
	actionLatency  *prometheus.HistogramVec
	changesDropped prometheus.Counter
}

// NewCollector registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibeapps_engine_actions_total",
			Help: "Engine actions by action and outcome (ok or error kind).",
		}, []string{"action", "outcome"}),
		actionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vibeapps_engine_action_duration_seconds",
			Help:    "Latency of engine actions including the storage transaction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		changesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vibeapps_changefeed_dropped_total",
			Help: "Change notifications dropped because the queue or a subscriber was full.",
		}),
	}

	reg.MustRegister(c.actions, c.actionLatency, c.changesDropped)
	return c
}

func (c *Collector) RecordAction(action, outcome string, duration time.Duration) {
	c.actions.WithLabelValues(action, outcome).Inc()
	c.actionLatency.WithLabelValues(action).Observe(duration.Seconds())
}

func (c *Collector) RecordChangeDropped() {
	c.changesDropped.Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAction(string, string, time.Duration) {}
func (Nop) RecordChangeDropped()                       {}
