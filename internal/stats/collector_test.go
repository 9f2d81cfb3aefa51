package stats

import (
	"testing"

	"github.com/reactcheck/reactcheck/internal/bus"
	"github.com/reactcheck/reactcheck/internal/model"
)

func ev(component string, ts int64, necessary bool, renderTime float64) model.RenderEvent {
	return model.RenderEvent{
		ComponentName: component,
		Phase:         model.PhaseUpdate,
		RenderTime:    renderTime,
		Necessary:     necessary,
		Timestamp:     ts,
	}
}

func TestCollectorIngestInvariants(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, true, nil)

	for i := int64(0); i < 25; i++ {
		c.Ingest(ev("Button", i, false, 1))
	}

	st := c.Get("Button")
	if st == nil {
		t.Fatal("expected Button stats to exist")
	}
	if st.Renders != 25 {
		t.Errorf("renders = %d, want 25", st.Renders)
	}
	if st.Unnecessary != 25 {
		t.Errorf("unnecessary = %d, want 25", st.Unnecessary)
	}
	if st.TotalRenderTime != 25 {
		t.Errorf("total = %v, want 25", st.TotalRenderTime)
	}
	if st.AvgRenderTime != 1 {
		t.Errorf("avg = %v, want 1", st.AvgRenderTime)
	}
	if st.FirstRenderTimestamp != 0 || st.LastRenderTimestamp != 24 {
		t.Errorf("first/last = %d/%d, want 0/24", st.FirstRenderTimestamp, st.LastRenderTimestamp)
	}
	if st.Severity != model.SeverityWarning {
		t.Errorf("severity = %v, want warning", st.Severity)
	}
}

func TestCollectorSeverityBoundaries(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, true, nil)

	for i := int64(0); i < 19; i++ {
		c.Ingest(ev("X", i, true, 1))
	}
	if got := c.Get("X").Severity; got != model.SeverityHealthy {
		t.Fatalf("at 19 renders, severity = %v, want healthy", got)
	}
	c.Ingest(ev("X", 19, true, 1))
	if got := c.Get("X").Severity; got != model.SeverityWarning {
		t.Fatalf("at 20 renders, severity = %v, want warning", got)
	}
	for i := int64(20); i < 49; i++ {
		c.Ingest(ev("X", i, true, 1))
	}
	if got := c.Get("X").Severity; got != model.SeverityWarning {
		t.Fatalf("at 49 renders, severity = %v, want warning", got)
	}
	c.Ingest(ev("X", 49, true, 1))
	if got := c.Get("X").Severity; got != model.SeverityCritical {
		t.Fatalf("at 50 renders, severity = %v, want critical", got)
	}
}

func TestCollectorDuplicateCommitIsIdempotent(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, true, nil)
	c.Ingest(ev("Button", 5, true, 3))
	c.Ingest(ev("Button", 5, true, 3))

	st := c.Get("Button")
	if st.Renders != 1 {
		t.Errorf("renders = %d, want 1 (duplicate commit must be idempotent)", st.Renders)
	}
}

func TestCollectorWarningCriticalEmitExactlyOnce(t *testing.T) {
	b := bus.New()
	var warnings, criticals []string
	b.Subscribe(bus.TopicWarning, func(p any) { warnings = append(warnings, p.(string)) })
	b.Subscribe(bus.TopicCritical, func(p any) { criticals = append(criticals, p.(string)) })

	c := New(Thresholds{Critical: 50, Warning: 20}, true, b)
	for i := int64(0); i < 60; i++ {
		changedProps := []string{"x"}
		changedState := []string{}
		if i%2 == 1 {
			changedProps, changedState = nil, []string{"y"}
		}
		e := ev("Header", i, true, 1)
		e.ChangedProps = changedProps
		e.ChangedState = changedState
		c.Ingest(e)
	}

	if len(warnings) != 1 {
		t.Errorf("warning emitted %d times, want exactly 1", len(warnings))
	}
	if len(criticals) != 1 {
		t.Errorf("critical emitted %d times, want exactly 1", len(criticals))
	}
}

func TestCollectorAccumulatesChangeCounts(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, true, nil)
	for i := int64(0); i < 6; i++ {
		e := ev("Header", i, true, 1)
		if i%2 == 0 {
			e.ChangedProps = []string{"x"}
		} else {
			e.ChangedState = []string{"y"}
		}
		c.Ingest(e)
	}

	st := c.Get("Header")
	if st.PropChangeCount != 3 || st.StateChangeCount != 3 {
		t.Errorf("change counts = %d/%d, want 3/3", st.PropChangeCount, st.StateChangeCount)
	}
	// The flags themselves track the most recent event only.
	if st.PropsChanged || !st.StateChanged {
		t.Errorf("flags = %v/%v, want false/true after a state-driven final event", st.PropsChanged, st.StateChanged)
	}
}

func TestCollectorSetThresholdsWalksAllComponents(t *testing.T) {
	b := bus.New()
	var changes []SeverityChange
	b.Subscribe(bus.TopicSeverityChange, func(p any) { changes = append(changes, p.(SeverityChange)) })

	c := New(Thresholds{Critical: 50, Warning: 20}, true, b)
	for i := int64(0); i < 25; i++ {
		c.Ingest(ev("Button", i, true, 1))
	}
	if got := c.Get("Button").Severity; got != model.SeverityWarning {
		t.Fatalf("severity before threshold change = %v, want warning", got)
	}

	changes = nil
	c.SetThresholds(Thresholds{Critical: 60, Warning: 30})

	if len(changes) != 1 {
		t.Fatalf("expected exactly one severity_change, got %d", len(changes))
	}
	if changes[0].From != model.SeverityWarning || changes[0].To != model.SeverityHealthy {
		t.Errorf("transition = %v -> %v, want warning -> healthy", changes[0].From, changes[0].To)
	}
	if got := c.Get("Button").Severity; got != model.SeverityHealthy {
		t.Errorf("severity after threshold change = %v, want healthy", got)
	}
}

func TestCollectorSnapshotSortOrder(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, true, nil)
	for i := int64(0); i < 10; i++ {
		c.Ingest(ev("Healthy", i, true, 1))
	}
	for i := int64(0); i < 25; i++ {
		c.Ingest(ev("AWarning", i, true, 1))
	}
	for i := int64(0); i < 25; i++ {
		c.Ingest(ev("BWarning", i, true, 1))
	}
	for i := int64(0); i < 55; i++ {
		c.Ingest(ev("Critical", i, true, 1))
	}

	snap := c.Snapshot()
	want := []string{"Critical", "AWarning", "BWarning", "Healthy"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(want))
	}
	for i, name := range want {
		if snap[i].ComponentName != name {
			t.Errorf("snapshot[%d] = %s, want %s", i, snap[i].ComponentName, name)
		}
	}
}

func TestCollectorReset(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, true, nil)
	c.Ingest(ev("Button", 0, true, 1))
	c.Reset()
	if c.Get("Button") != nil {
		t.Error("expected Get to return nil after Reset")
	}
	if len(c.Snapshot()) != 0 {
		t.Error("expected empty snapshot after Reset")
	}
}

func TestCollectorTrackUnnecessaryDisabled(t *testing.T) {
	c := New(Thresholds{Critical: 50, Warning: 20}, false, nil)
	c.Ingest(ev("Button", 0, false, 1))
	if got := c.Get("Button").Unnecessary; got != 0 {
		t.Errorf("unnecessary = %d, want 0 when tracking disabled", got)
	}
}

func TestThresholdsClassifyInclusiveBoundaries(t *testing.T) {
	th := Thresholds{Critical: 50, Warning: 20}
	cases := []struct {
		renders int
		want    model.Severity
	}{
		{19, model.SeverityHealthy},
		{20, model.SeverityWarning},
		{49, model.SeverityWarning},
		{50, model.SeverityCritical},
	}
	for _, tc := range cases {
		if got := th.Classify(tc.renders); got != tc.want {
			t.Errorf("Classify(%d) = %v, want %v", tc.renders, got, tc.want)
		}
	}
}
