package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reactcheck/reactcheck/internal/bus"
	"github.com/reactcheck/reactcheck/internal/model"
)

func TestAttachCountsRendersByNecessity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Options{Namespace: "test", Registry: reg})
	b := bus.New()
	c.Attach(b)

	b.Publish(bus.TopicRender, model.RenderEvent{Necessary: true, RenderTime: 1})
	b.Publish(bus.TopicRender, model.RenderEvent{Necessary: false, RenderTime: 2})
	b.Publish(bus.TopicRender, model.RenderEvent{Necessary: false, RenderTime: 3})

	if got := testutil.ToFloat64(c.rendersTotal.WithLabelValues("true")); got != 1 {
		t.Errorf("necessary renders = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.rendersTotal.WithLabelValues("false")); got != 2 {
		t.Errorf("unnecessary renders = %v, want 2", got)
	}
}

func TestAttachCountsChains(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Options{Namespace: "test", Registry: reg})
	b := bus.New()
	c.Attach(b)

	b.Publish(bus.TopicChain, model.RenderChain{Depth: 3})
	b.Publish(bus.TopicChain, model.RenderChain{Depth: 1})

	if got := testutil.ToFloat64(c.chainsTotal); got != 2 {
		t.Errorf("chainsTotal = %v, want 2", got)
	}
}

func TestSetSnapshotUpdatesSeverityGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Options{Namespace: "test", Registry: reg})

	snapshot := []*model.ComponentStats{
		{ComponentName: "A", Severity: model.SeverityCritical},
		{ComponentName: "B", Severity: model.SeverityWarning},
		{ComponentName: "C", Severity: model.SeverityWarning},
	}
	c.SetSnapshot(snapshot)

	if got := testutil.ToFloat64(c.severityGauge.WithLabelValues("critical")); got != 1 {
		t.Errorf("critical gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.severityGauge.WithLabelValues("warning")); got != 2 {
		t.Errorf("warning gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.componentsGauge); got != 3 {
		t.Errorf("componentsGauge = %v, want 3", got)
	}
}

func TestRecordDrop(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Options{Namespace: "test", Registry: reg})

	c.RecordDrop()
	c.RecordDrop()

	if got := testutil.ToFloat64(c.droppedTotal); got != 2 {
		t.Errorf("droppedTotal = %v, want 2", got)
	}
}
