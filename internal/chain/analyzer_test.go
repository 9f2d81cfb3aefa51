package chain

import (
	"testing"
	"time"

	"github.com/reactcheck/reactcheck/internal/bus"
	"github.com/reactcheck/reactcheck/internal/model"
)

func render(component string, ts int64, state, props bool) model.RenderEvent {
	e := model.RenderEvent{ComponentName: component, Phase: model.PhaseUpdate, Timestamp: ts}
	if state {
		e.ChangedState = []string{"s"}
	}
	if props {
		e.ChangedProps = []string{"p"}
	}
	return e
}

func collectChains(t *testing.T, setup func(a *Analyzer)) []model.RenderChain {
	t.Helper()
	b := bus.New()
	var chains []model.RenderChain
	b.Subscribe(bus.TopicChain, func(p any) { chains = append(chains, p.(model.RenderChain)) })
	a := New(16*time.Millisecond, 3, b)
	setup(a)
	return chains
}

func TestAnalyzerSingleEventChain(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.Ingest(render("Solo", 0, true, false))
		a.Flush()
	})
	if len(chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(chains))
	}
	c := chains[0]
	if c.Depth != 1 {
		t.Errorf("depth = %d, want 1", c.Depth)
	}
	if c.RootCause != "Solo" {
		t.Errorf("root cause = %q, want Solo", c.RootCause)
	}
}

func TestAnalyzerWindowBoundary(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.Ingest(render("A", 0, true, false))
		a.Ingest(render("B", 17, true, false))
		a.Flush()
	})
	if len(chains) != 2 {
		t.Fatalf("got %d chains, want 2 (events 17ms apart with a 16ms window)", len(chains))
	}
	for _, c := range chains {
		if c.TotalRenders != 1 {
			t.Errorf("chain %+v totalRenders = %d, want 1", c, c.TotalRenders)
		}
	}
}

func TestAnalyzerContextTriggered(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.Ingest(render("Provider", 0, true, false))
		a.Ingest(render("ConsumerA", 2, false, true))
		a.Ingest(render("ConsumerB", 4, false, true))
		a.Ingest(render("ConsumerC", 6, false, true))
		a.Flush()
	})
	if len(chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(chains))
	}
	c := chains[0]
	if c.RootCause != "Provider" {
		t.Errorf("root cause = %q, want Provider", c.RootCause)
	}
	if c.Depth < 2 {
		t.Errorf("depth = %d, want >= 2", c.Depth)
	}
	if !c.IsContextTriggered {
		t.Errorf("expected context-triggered chain")
	}
}

func TestAnalyzerRootCauseUniqueStateChange(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.SetParent("Child", "Parent")
		a.Ingest(render("Parent", 0, false, false))
		a.Ingest(render("Child", 1, true, false))
		a.Flush()
	})
	c := chains[0]
	if c.RootCause != "Child" {
		t.Errorf("root cause = %q, want Child (the unique state-changer with no ancestor state change)", c.RootCause)
	}
}

func TestAnalyzerRootCauseAncestorStateChangeExcludesDescendant(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.SetParent("Child", "Parent")
		a.Ingest(render("Parent", 0, true, false))
		a.Ingest(render("Child", 1, true, false))
		a.Flush()
	})
	c := chains[0]
	if c.RootCause != "Parent" {
		t.Errorf("root cause = %q, want Parent (earliest state-changer since Child's ancestor also changed state)", c.RootCause)
	}
}

func TestAnalyzerNoStateChangeFallsBackToEarliestEvent(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.Ingest(render("First", 0, false, true))
		a.Ingest(render("Second", 1, false, true))
		a.Flush()
	})
	c := chains[0]
	if c.RootCause != "First" {
		t.Errorf("root cause = %q, want First", c.RootCause)
	}
}

func TestAnalyzerOrderingNonDecreasing(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.Ingest(render("A", 0, true, false))
		a.Flush()
		a.Ingest(render("B", 100, true, false))
		a.Flush()
		a.Ingest(render("C", 200, true, false))
		a.Flush()
	})
	if len(chains) != 3 {
		t.Fatalf("got %d chains, want 3", len(chains))
	}
	for i := 1; i < len(chains); i++ {
		if chains[i].Timestamp < chains[i-1].Timestamp {
			t.Errorf("chain %d timestamp %d < previous %d", i, chains[i].Timestamp, chains[i-1].Timestamp)
		}
	}
}

func TestAnalyzerDuplicateCommitIdempotent(t *testing.T) {
	chains := collectChains(t, func(a *Analyzer) {
		a.Ingest(render("A", 0, true, false))
		a.Ingest(render("A", 0, true, false))
		a.Flush()
	})
	if len(chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(chains))
	}
	if chains[0].TotalRenders != 1 {
		t.Errorf("totalRenders = %d, want 1 (duplicate commit ignored)", chains[0].TotalRenders)
	}
}

func TestAnalyzerParentEdgeNotMutatedOnSecondCall(t *testing.T) {
	a := New(16*time.Millisecond, 3, nil)
	a.SetParent("Child", "ParentA")
	a.SetParent("Child", "ParentB")
	if a.parent["Child"] != "ParentA" {
		t.Errorf("parent edge = %q, want ParentA (edges persisted, never mutated)", a.parent["Child"])
	}
}
