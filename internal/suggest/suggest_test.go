package suggest

import (
	"strings"
	"testing"

	"github.com/reactcheck/reactcheck/internal/model"
)

func newStats(name string, renders int, severity model.Severity) *model.ComponentStats {
	st := model.NewComponentStats(name)
	st.Renders = renders
	st.Severity = severity
	return st
}

func baseCtx() Context {
	return Context{
		Stats:              map[string]*model.ComponentStats{},
		WarningThreshold:   20,
		CriticalThreshold:  50,
		AvgTimeThresholdMs: 2.0,
	}
}

func TestFireMemo(t *testing.T) {
	st := newStats("Button", 25, model.SeverityWarning)
	st.PropsChanged = false

	suggestions := For(baseCtx(), st)
	if !hasKind(suggestions, model.FixMemo) {
		t.Errorf("expected memo suggestion, got %+v", suggestions)
	}
}

func TestFireMemoDoesNotFireBelowThreshold(t *testing.T) {
	st := newStats("Button", 10, model.SeverityHealthy)
	st.PropsChanged = false

	suggestions := For(baseCtx(), st)
	if hasKind(suggestions, model.FixMemo) {
		t.Errorf("memo should not fire below the warning threshold, got %+v", suggestions)
	}
}

func TestFireUseMemo(t *testing.T) {
	st := newStats("Expensive", 25, model.SeverityWarning)
	st.AvgRenderTime = 5.0

	suggestions := For(baseCtx(), st)
	s, ok := find(suggestions, model.FixUseMemo)
	if !ok {
		t.Fatalf("expected useMemo suggestion, got %+v", suggestions)
	}
	if s.Severity.Rank() < model.SeverityWarning.Rank() {
		t.Errorf("useMemo severity = %v, want at least warning", s.Severity)
	}
}

func TestFireComponentExtraction(t *testing.T) {
	// Alternating prop- and state-driven renders: half the renders carried
	// each kind of change, the last event only one of them.
	st := newStats("Header", 60, model.SeverityCritical)
	st.PropChangeCount = 30
	st.StateChangeCount = 30
	st.PropsChanged = false
	st.StateChanged = true

	suggestions := For(baseCtx(), st)
	s, ok := find(suggestions, model.FixComponentExtraction)
	if !ok {
		t.Fatalf("expected component-extraction suggestion, got %+v", suggestions)
	}
	if s.Severity != model.SeverityCritical {
		t.Errorf("severity = %v, want critical", s.Severity)
	}
}

func TestFireComponentExtractionNeedsBothKindsOfChurn(t *testing.T) {
	st := newStats("Header", 60, model.SeverityCritical)
	st.PropChangeCount = 60

	suggestions := For(baseCtx(), st)
	if hasKind(suggestions, model.FixComponentExtraction) {
		t.Errorf("extraction must not fire without state churn, got %+v", suggestions)
	}
}

func TestFireContextSplit(t *testing.T) {
	st := newStats("ConsumerA", 10, model.SeverityHealthy)
	ctx := baseCtx()
	ctx.Chains = []model.RenderChain{
		{
			Components:         []string{"Provider", "ConsumerA", "ConsumerB"},
			Depth:              3,
			IsContextTriggered: true,
		},
	}

	suggestions := For(ctx, st)
	if !hasKind(suggestions, model.FixContextSplit) {
		t.Errorf("expected context-split suggestion, got %+v", suggestions)
	}
}

func TestFireStateColocation(t *testing.T) {
	st := newStats("Deep", 5, model.SeverityHealthy)
	st.StateChanged = true
	st.ChainPath = []string{"Deep", "Middle", "Leaf"}

	suggestions := For(baseCtx(), st)
	s, ok := find(suggestions, model.FixStateColocation)
	if !ok {
		t.Fatalf("expected state-colocation suggestion, got %+v", suggestions)
	}
	if s.Severity != model.SeverityInfo {
		t.Errorf("severity = %v, want info", s.Severity)
	}
}

func TestFireUseCallback(t *testing.T) {
	parent := newStats("Parent", 5, model.SeverityHealthy)
	child := newStats("Child", 5, model.SeverityHealthy)
	child.ParentID = "Parent"
	child.PropsChanged = true

	ctx := baseCtx()
	ctx.Stats = map[string]*model.ComponentStats{"Parent": parent, "Child": child}
	ctx.Chains = []model.RenderChain{{Components: []string{"Parent", "Child"}}}

	suggestions := For(ctx, parent)
	if !hasKind(suggestions, model.FixUseCallback) {
		t.Errorf("expected useCallback suggestion, got %+v", suggestions)
	}
}

func TestSuggestionFieldsAreNonEmpty(t *testing.T) {
	st := newStats("Button", 25, model.SeverityWarning)
	st.PropsChanged = false

	for _, s := range For(baseCtx(), st) {
		if strings.TrimSpace(s.CodeBefore) == "" {
			t.Errorf("%s: empty CodeBefore", s.Kind)
		}
		if strings.TrimSpace(s.CodeAfter) == "" {
			t.Errorf("%s: empty CodeAfter", s.Kind)
		}
		if strings.TrimSpace(s.Explanation) == "" {
			t.Errorf("%s: empty Explanation", s.Kind)
		}
		if strings.TrimSpace(s.IssueSummary) == "" {
			t.Errorf("%s: empty IssueSummary", s.Kind)
		}
	}
}

func hasKind(suggestions []model.FixSuggestion, kind model.FixKind) bool {
	_, ok := find(suggestions, kind)
	return ok
}

func find(suggestions []model.FixSuggestion, kind model.FixKind) (model.FixSuggestion, bool) {
	for _, s := range suggestions {
		if s.Kind == kind {
			return s, true
		}
	}
	return model.FixSuggestion{}, false
}
