package stats

import "github.com/reactcheck/reactcheck/internal/model"

// Thresholds holds the two render-count floors the severity classifier
// compares against. Both comparisons are inclusive (renders == threshold
// transitions).
type Thresholds struct {
	Critical int
	Warning  int
}

// Classify implements the severity classifier from the spec: critical if
// renders >= Critical; else warning if renders >= Warning; else healthy.
// Info is reserved for rule-based escalations performed by the suggester
// and is never returned here.
func (t Thresholds) Classify(renders int) model.Severity {
	switch {
	case renders >= t.Critical:
		return model.SeverityCritical
	case renders >= t.Warning:
		return model.SeverityWarning
	default:
		return model.SeverityHealthy
	}
}
