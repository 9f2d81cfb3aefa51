// Package suggest implements the rule-based fix suggester (spec §4.4): a
// fixed-order rule set that independently inspects a component's stats
// (and, for chain-aware rules, the session's detected chains) and emits
// zero or more typed FixSuggestions.
package suggest

import (
	"fmt"

	"github.com/reactcheck/reactcheck/internal/model"
)

// Context bundles the inputs a rule may consult: the target component,
// the full component map (for parent/child lookups), and the chains
// detected so far in the session.
type Context struct {
	Stats  map[string]*model.ComponentStats
	Chains []model.RenderChain

	WarningThreshold  int
	CriticalThreshold int
	AvgTimeThresholdMs float64
}

// rule is one entry of the fixed-order rule table in spec §4.4.
type rule struct {
	kind   model.FixKind
	fires  func(Context, *model.ComponentStats) bool
	severity func(Context, *model.ComponentStats) model.Severity
}

var rules = []rule{
	{
		kind:  model.FixMemo,
		fires: fireMemo,
		severity: func(_ Context, st *model.ComponentStats) model.Severity {
			return st.Severity
		},
	},
	{
		kind:  model.FixUseMemo,
		fires: fireUseMemo,
		severity: func(_ Context, st *model.ComponentStats) model.Severity {
			return atLeast(st.Severity, model.SeverityWarning)
		},
	},
	{
		kind:  model.FixUseCallback,
		fires: fireUseCallback,
		severity: func(_ Context, st *model.ComponentStats) model.Severity {
			return atLeast(st.Severity, model.SeverityWarning)
		},
	},
	{
		kind:  model.FixContextSplit,
		fires: fireContextSplit,
		severity: func(_ Context, _ *model.ComponentStats) model.Severity {
			return model.SeverityWarning
		},
	},
	{
		kind:  model.FixStateColocation,
		fires: fireStateColocation,
		severity: func(_ Context, _ *model.ComponentStats) model.Severity {
			return model.SeverityInfo
		},
	},
	{
		kind:  model.FixComponentExtraction,
		fires: fireComponentExtraction,
		severity: func(_ Context, _ *model.ComponentStats) model.Severity {
			return model.SeverityCritical
		},
	},
}

func atLeast(s, floor model.Severity) model.Severity {
	if s.Rank() < floor.Rank() {
		return floor
	}
	return s
}

// For enumerates suggestions for a single component by running every rule
// in fixed order; each rule decides independently whether to fire.
func For(ctx Context, st *model.ComponentStats) []model.FixSuggestion {
	var out []model.FixSuggestion
	for _, r := range rules {
		if !r.fires(ctx, st) {
			continue
		}
		out = append(out, build(r.kind, st, r.severity(ctx, st)))
	}
	return out
}

func build(kind model.FixKind, st *model.ComponentStats, severity model.Severity) model.FixSuggestion {
	t := templates[kind]
	name := st.ComponentName
	return model.FixSuggestion{
		ComponentName: name,
		Severity:      severity,
		Kind:          kind,
		IssueSummary:  fmt.Sprintf("%s %s", name, t.issue),
		Cause:         t.cause,
		CodeBefore:    sprintfTemplate(t.before, name),
		CodeAfter:     sprintfTemplate(t.after, name),
		Explanation:   t.explanation,
	}
}

func sprintfTemplate(tmpl, name string) string {
	// Templates use up to two %s verbs (component name repeated for the
	// memo-wrapped declaration); Sprintf ignores surplus args safely via
	// the variadic call below only when counts match, so count verbs.
	n := countVerbs(tmpl)
	args := make([]any, n)
	for i := range args {
		args[i] = name
	}
	return fmt.Sprintf(tmpl, args...)
}

func countVerbs(tmpl string) int {
	n := 0
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] == '%' && tmpl[i+1] == 's' {
			n++
		}
	}
	return n
}

// fireMemo: renders >= W and propsChanged=false on the most recently
// observed render (the only per-event signal ComponentStats retains; the
// spec permits approximating "majority of recent events" this way).
func fireMemo(ctx Context, st *model.ComponentStats) bool {
	return st.Renders >= ctx.WarningThreshold && !st.PropsChanged
}

// fireUseMemo: renders >= W and average render time suggests an expensive
// dependent computation.
func fireUseMemo(ctx Context, st *model.ComponentStats) bool {
	return st.Renders >= ctx.WarningThreshold && st.AvgRenderTime >= ctx.AvgTimeThresholdMs
}

// fireUseCallback: this component is the recorded parent of a child that
// keeps re-rendering with changed props while participating in a detected
// chain — approximating "memoized child still re-renders via a
// function-named prop" with the flags ComponentStats actually retains.
func fireUseCallback(ctx Context, st *model.ComponentStats) bool {
	for _, child := range ctx.Stats {
		if child.ParentID != st.ComponentName {
			continue
		}
		if !child.PropsChanged {
			continue
		}
		if onAnyChain(ctx.Chains, child.ComponentName) {
			return true
		}
	}
	return false
}

func onAnyChain(chains []model.RenderChain, component string) bool {
	for _, c := range chains {
		for _, name := range c.Components {
			if name == component {
				return true
			}
		}
	}
	return false
}

// fireContextSplit: component sits on a chain flagged context-triggered
// with depth >= 3.
func fireContextSplit(ctx Context, st *model.ComponentStats) bool {
	for _, c := range ctx.Chains {
		if !c.IsContextTriggered || c.Depth < 3 {
			continue
		}
		if onAnyChain([]model.RenderChain{c}, st.ComponentName) {
			return true
		}
	}
	return false
}

// fireStateColocation: component's state changed but it is not the leaf
// (last hop) of its own recorded chain path.
func fireStateColocation(_ Context, st *model.ComponentStats) bool {
	if !st.StateChanged {
		return false
	}
	if len(st.ChainPath) == 0 {
		return false
	}
	return st.ChainPath[len(st.ChainPath)-1] != st.ComponentName
}

// fireComponentExtraction: renders >= C and the component shows both
// frequent prop and state churn. "Frequent" means at least a quarter of
// the component's renders carried that kind of change, judged over the
// whole session rather than the most recent event alone, so a component
// alternating prop-driven and state-driven renders qualifies.
func fireComponentExtraction(ctx Context, st *model.ComponentStats) bool {
	if st.Renders < ctx.CriticalThreshold {
		return false
	}
	return st.PropChangeCount*4 >= st.Renders && st.StateChangeCount*4 >= st.Renders
}
