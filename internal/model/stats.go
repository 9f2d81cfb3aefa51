package model

// ComponentStats is the per-component aggregate maintained by the stats
// collector. All invariants below hold at every point after Ingest:
//
//	Renders == Unnecessary + necessary-count
//	Unnecessary <= Renders
//	Total == sum of every ingested duration
//	Avg == Total / Renders (when Renders > 0)
//	First <= Last
type ComponentStats struct {
	ComponentName string `json:"componentName"`

	Renders    int `json:"renders"`
	Unnecessary int `json:"unnecessaryRenders"`

	// MinRenderTime is sentinel-valued ("none") until the first render is
	// observed; MinSet distinguishes the sentinel from a genuine zero.
	// It serializes as 0 while unset, per the report wire format.
	MinRenderTime float64 `json:"minRenderTime"`
	MinSet        bool    `json:"-"`
	AvgRenderTime float64 `json:"avgRenderTime"`
	MaxRenderTime float64 `json:"maxRenderTime"`
	TotalRenderTime float64 `json:"totalRenderTime"`

	FirstRenderTimestamp int64 `json:"firstRenderTimestamp"`
	LastRenderTimestamp  int64 `json:"lastRenderTimestamp"`

	// ExpectedRenders is an informative-only heuristic baseline; no
	// behavior in the collector, chain analyzer, or suggester depends on
	// it.
	ExpectedRenders int `json:"expectedRenders"`

	// PropsChanged and StateChanged capture the most recent event's
	// changed-props/changed-state flags; PropChangeCount and
	// StateChangeCount accumulate how many renders carried each kind of
	// change across the whole session.
	PropsChanged     bool `json:"propsChanged"`
	StateChanged     bool `json:"stateChanged"`
	PropChangeCount  int  `json:"propChangeCount"`
	StateChangeCount int  `json:"stateChangeCount"`

	Severity Severity `json:"severity"`

	ParentID string `json:"parentId,omitempty"`

	// ChainPath is the most recently observed cascade path this component
	// appeared on, as recorded by the chain analyzer via SetChain.
	ChainPath []string `json:"chainPath,omitempty"`

	Suggestions []FixSuggestion `json:"suggestions,omitempty"`

	// DroppedEvents counts events for this component coalesced away by
	// the orchestrator's back-pressure policy (see Configuration and the
	// session summary's Dropped field).
	DroppedEvents int `json:"droppedEvents,omitempty"`

	// distinctChanges tracks distinct (changedProps ∪ changedState) hashes
	// observed, feeding the ExpectedRenders heuristic. Unexported: it is
	// bookkeeping, not reported state.
	distinctChanges map[string]struct{}
	mounts          int
}

// NewComponentStats returns a freshly initialized ComponentStats for the
// given component, with MinRenderTime in its "none" sentinel state.
func NewComponentStats(componentName string) *ComponentStats {
	return &ComponentStats{
		ComponentName:   componentName,
		distinctChanges: make(map[string]struct{}),
	}
}

// RecordDistinctChange folds a changed-props/changed-state fingerprint
// into the expected-renders heuristic and returns the updated estimate.
// It approximates "a baseline proportional to distinct prop-or-state
// change events observed" with mounts + distinct-change-count, as the
// spec permits implementers to do.
func (c *ComponentStats) RecordDistinctChange(fingerprint string, mount bool) {
	if c.distinctChanges == nil {
		c.distinctChanges = make(map[string]struct{})
	}
	if mount {
		c.mounts++
	}
	if fingerprint != "" {
		c.distinctChanges[fingerprint] = struct{}{}
	}
	c.ExpectedRenders = c.mounts + len(c.distinctChanges)
}
