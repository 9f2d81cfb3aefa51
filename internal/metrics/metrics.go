// Package metrics wires the orchestrator's event bus to Prometheus,
// following the same promauto.With(registry) factory pattern the teacher
// framework uses for its own event/session metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reactcheck/reactcheck/internal/bus"
	"github.com/reactcheck/reactcheck/internal/model"
)

// Collector holds the Prometheus instruments exposed per session.
type Collector struct {
	rendersTotal    *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	chainsTotal     prometheus.Counter
	chainDepth      prometheus.Histogram
	droppedTotal    prometheus.Counter
	probeErrors     prometheus.Counter
	severityGauge   *prometheus.GaugeVec
	componentsGauge prometheus.Gauge
}

// Options configures the metrics namespace/registry, mirroring the
// teacher's MetricsConfig/MetricsOption pair.
type Options struct {
	Namespace string
	Registry  prometheus.Registerer
}

func defaultOptions() Options {
	return Options{Namespace: "reactcheck", Registry: prometheus.DefaultRegisterer}
}

// New creates a Collector and registers its instruments on opts.Registry
// (default prometheus.DefaultRegisterer).
func New(opts Options) *Collector {
	o := defaultOptions()
	if opts.Namespace != "" {
		o.Namespace = opts.Namespace
	}
	if opts.Registry != nil {
		o.Registry = opts.Registry
	}
	factory := promauto.With(o.Registry)

	return &Collector{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "renders_total",
			Help:      "Total number of render events ingested, by necessity.",
		}, []string{"necessary"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.Namespace,
			Name:      "render_duration_milliseconds",
			Help:      "Observed render durations in milliseconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128},
		}),

		chainsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "chains_closed_total",
			Help:      "Total number of render chains (windows) closed.",
		}),

		chainDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.Namespace,
			Name:      "chain_depth",
			Help:      "Depth of each closed render chain.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),

		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of events coalesced away under back-pressure.",
		}),

		probeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: o.Namespace,
			Name:      "probe_errors_total",
			Help:      "Total number of error messages reported by the probe.",
		}),

		severityGauge: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: o.Namespace,
			Name:      "components_by_severity",
			Help:      "Current number of components at each severity level.",
		}, []string{"severity"}),

		componentsGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: o.Namespace,
			Name:      "unique_components",
			Help:      "Current number of distinct components observed.",
		}),
	}
}

// Attach subscribes the collector to b, updating instruments as the
// orchestrator's event bus publishes. Call once per session.
func (c *Collector) Attach(b *bus.Bus) {
	b.Subscribe(bus.TopicRender, func(payload any) {
		ev, ok := payload.(model.RenderEvent)
		if !ok {
			return
		}
		necessary := "true"
		if !ev.Necessary {
			necessary = "false"
		}
		c.rendersTotal.WithLabelValues(necessary).Inc()
		c.renderDuration.Observe(ev.RenderTime)
	})

	b.Subscribe(bus.TopicChain, func(payload any) {
		rc, ok := payload.(model.RenderChain)
		if !ok {
			return
		}
		c.chainsTotal.Inc()
		c.chainDepth.Observe(float64(rc.Depth))
	})

	b.Subscribe(bus.TopicError, func(payload any) {
		c.probeErrors.Inc()
	})
}

// SetSnapshot refreshes the point-in-time gauges from a stats.Collector
// snapshot. Call periodically or at report assembly time; unlike the
// counters above it is not bus-driven since severity counts are a
// function of current state, not an event stream.
func (c *Collector) SetSnapshot(snapshot []*model.ComponentStats) {
	c.componentsGauge.Set(float64(len(snapshot)))

	counts := map[model.Severity]int{}
	for _, st := range snapshot {
		counts[st.Severity]++
	}
	for _, sev := range []model.Severity{model.SeverityHealthy, model.SeverityInfo, model.SeverityWarning, model.SeverityCritical} {
		c.severityGauge.WithLabelValues(sev.String()).Set(float64(counts[sev]))
	}
}

// RecordDrop increments the dropped-events counter; the orchestrator's
// back-pressure queue calls this alongside stats.Collector.RecordDrop.
func (c *Collector) RecordDrop() {
	c.droppedTotal.Inc()
}
