package model

import "time"

// ReportFormatVersion is the current SessionReport wire format version.
const ReportFormatVersion = "1.0"

// SessionDescriptor identifies the analyzed session.
type SessionDescriptor struct {
	TargetURL string        `json:"targetUrl"`
	SessionID string        `json:"sessionId"`
	StartedAt int64         `json:"startedAt"`
	Duration  time.Duration `json:"-"`
	// DurationMs mirrors Duration in the wire format, rounded to the
	// millisecond, since time.Duration does not marshal as a plain number.
	DurationMs int64 `json:"durationMs"`
}

// ReportSummary aggregates counts across the whole session.
type ReportSummary struct {
	UniqueComponents int `json:"uniqueComponents"`
	TotalRenders     int `json:"totalRenders"`

	HealthyCount  int `json:"healthyCount"`
	InfoCount     int `json:"infoCount"`
	WarningCount  int `json:"warningCount"`
	CriticalCount int `json:"criticalCount"`

	AverageFPS float64 `json:"averageFps"`
	MinFPS     float64 `json:"minFps"`

	UnnecessaryRenders int `json:"unnecessaryRenders"`

	// Dropped is the number of events coalesced away under back-pressure
	// (§5 of the spec); additive to, not a replacement for, the counts
	// above.
	Dropped int `json:"dropped"`

	// ProbeErrors counts malformed-JSON frames discarded by the router.
	ProbeErrors int `json:"probeErrors"`
}

// FrameworkDescriptor is an opaque descriptor supplied by an external
// framework-detection collaborator; ReactCheck's core never inspects its
// fields, only carries it through to the report.
type FrameworkDescriptor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SessionReport is the assembled output of a finished (or flushed) session.
type SessionReport struct {
	Version     string `json:"version"`
	GeneratedAt int64  `json:"generated"`

	Session SessionDescriptor `json:"session"`
	Summary ReportSummary     `json:"summary"`

	Components []*ComponentStats `json:"components"`
	Chains     []RenderChain     `json:"chains"`
	Suggestions []FixSuggestion  `json:"suggestions"`

	Framework *FrameworkDescriptor `json:"framework,omitempty"`

	// Timeline is reserved for a future ordered event timeline; it is
	// always present (possibly empty) so the report schema is stable.
	Timeline []any `json:"timeline"`
}
