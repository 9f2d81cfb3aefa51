// Package report implements the SessionReport wire format from spec §6.2:
// JSON marshaling with the rounding and sentinel rules the format
// requires, and a structural validator a receiver can run on an
// arbitrary JSON document before trusting it as a report.
package report

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/reactcheck/reactcheck/internal/errs"
	"github.com/reactcheck/reactcheck/internal/model"
)

// round2 rounds a float64 to two decimal places, the precision spec §6.2
// mandates for every float field in the serialized report.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// componentStatsView is the wire shape of model.ComponentStats: the same
// fields, with every duration field rounded to two decimals. MinRenderTime
// serializes as 0 while unset (toView forces 0 whenever MinSet is false).
// The wire format has no separate "unset" marker, so an unset minimum and a
// genuine zero-millisecond minimum serialize identically; fromView treats
// any 0 as unset. A receiver can tell the two apart only by checking
// renders == 0.
type componentStatsView struct {
	ComponentName        string                `json:"componentName"`
	Renders              int                   `json:"renders"`
	Unnecessary          int                   `json:"unnecessaryRenders"`
	MinRenderTime        float64               `json:"minRenderTime"`
	AvgRenderTime        float64               `json:"avgRenderTime"`
	MaxRenderTime        float64               `json:"maxRenderTime"`
	TotalRenderTime       float64              `json:"totalRenderTime"`
	FirstRenderTimestamp int64                 `json:"firstRenderTimestamp"`
	LastRenderTimestamp  int64                 `json:"lastRenderTimestamp"`
	ExpectedRenders      int                   `json:"expectedRenders"`
	PropsChanged         bool                  `json:"propsChanged"`
	StateChanged         bool                  `json:"stateChanged"`
	PropChangeCount      int                   `json:"propChangeCount"`
	StateChangeCount     int                   `json:"stateChangeCount"`
	Severity             model.Severity        `json:"severity"`
	ParentID             string                `json:"parentId,omitempty"`
	ChainPath            []string              `json:"chainPath,omitempty"`
	Suggestions          []model.FixSuggestion `json:"suggestions,omitempty"`
	DroppedEvents        int                   `json:"droppedEvents,omitempty"`
}

func toView(st *model.ComponentStats) componentStatsView {
	min := st.MinRenderTime
	if !st.MinSet {
		min = 0
	}
	return componentStatsView{
		ComponentName:        st.ComponentName,
		Renders:              st.Renders,
		Unnecessary:          st.Unnecessary,
		MinRenderTime:        round2(min),
		AvgRenderTime:        round2(st.AvgRenderTime),
		MaxRenderTime:        round2(st.MaxRenderTime),
		TotalRenderTime:      round2(st.TotalRenderTime),
		FirstRenderTimestamp: st.FirstRenderTimestamp,
		LastRenderTimestamp:  st.LastRenderTimestamp,
		ExpectedRenders:      st.ExpectedRenders,
		PropsChanged:         st.PropsChanged,
		StateChanged:         st.StateChanged,
		PropChangeCount:      st.PropChangeCount,
		StateChangeCount:     st.StateChangeCount,
		Severity:             st.Severity,
		ParentID:             st.ParentID,
		ChainPath:            st.ChainPath,
		Suggestions:          st.Suggestions,
		DroppedEvents:        st.DroppedEvents,
	}
}

func fromView(v componentStatsView) *model.ComponentStats {
	st := model.NewComponentStats(v.ComponentName)
	st.Renders = v.Renders
	st.Unnecessary = v.Unnecessary
	st.MinRenderTime = v.MinRenderTime
	st.MinSet = v.MinRenderTime != 0
	st.AvgRenderTime = v.AvgRenderTime
	st.MaxRenderTime = v.MaxRenderTime
	st.TotalRenderTime = v.TotalRenderTime
	st.FirstRenderTimestamp = v.FirstRenderTimestamp
	st.LastRenderTimestamp = v.LastRenderTimestamp
	st.ExpectedRenders = v.ExpectedRenders
	st.PropsChanged = v.PropsChanged
	st.StateChanged = v.StateChanged
	st.PropChangeCount = v.PropChangeCount
	st.StateChangeCount = v.StateChangeCount
	st.Severity = v.Severity
	st.ParentID = v.ParentID
	st.ChainPath = v.ChainPath
	st.Suggestions = v.Suggestions
	st.DroppedEvents = v.DroppedEvents
	return st
}

// wireReport mirrors model.SessionReport field-for-field, substituting
// componentStatsView for *model.ComponentStats so marshaling applies the
// rounding rule without adding a MarshalJSON method to the hot-path
// model type itself.
type wireReport struct {
	Version     string                 `json:"version"`
	GeneratedAt int64                  `json:"generated"`
	Session     model.SessionDescriptor `json:"session"`
	Summary     summaryView            `json:"summary"`
	Components  []componentStatsView   `json:"components"`
	Chains      []model.RenderChain    `json:"chains"`
	Suggestions []model.FixSuggestion  `json:"suggestions"`
	Framework   *model.FrameworkDescriptor `json:"framework,omitempty"`
	Timeline    []any                  `json:"timeline"`
}

type summaryView struct {
	UniqueComponents   int     `json:"uniqueComponents"`
	TotalRenders       int     `json:"totalRenders"`
	HealthyCount       int     `json:"healthyCount"`
	InfoCount          int     `json:"infoCount"`
	WarningCount       int     `json:"warningCount"`
	CriticalCount      int     `json:"criticalCount"`
	AverageFPS         float64 `json:"averageFps"`
	MinFPS             float64 `json:"minFps"`
	UnnecessaryRenders int     `json:"unnecessaryRenders"`
	Dropped            int     `json:"dropped"`
	ProbeErrors        int     `json:"probeErrors"`
}

func toSummaryView(s model.ReportSummary) summaryView {
	return summaryView{
		UniqueComponents:   s.UniqueComponents,
		TotalRenders:       s.TotalRenders,
		HealthyCount:       s.HealthyCount,
		InfoCount:          s.InfoCount,
		WarningCount:       s.WarningCount,
		CriticalCount:      s.CriticalCount,
		AverageFPS:         round2(s.AverageFPS),
		MinFPS:             round2(s.MinFPS),
		UnnecessaryRenders: s.UnnecessaryRenders,
		Dropped:            s.Dropped,
		ProbeErrors:        s.ProbeErrors,
	}
}

func fromSummaryView(v summaryView) model.ReportSummary {
	return model.ReportSummary{
		UniqueComponents:   v.UniqueComponents,
		TotalRenders:       v.TotalRenders,
		HealthyCount:       v.HealthyCount,
		InfoCount:          v.InfoCount,
		WarningCount:       v.WarningCount,
		CriticalCount:      v.CriticalCount,
		AverageFPS:         v.AverageFPS,
		MinFPS:             v.MinFPS,
		UnnecessaryRenders: v.UnnecessaryRenders,
		Dropped:            v.Dropped,
		ProbeErrors:        v.ProbeErrors,
	}
}

// Marshal serializes a SessionReport per spec §6.2.
func Marshal(r model.SessionReport) ([]byte, error) {
	views := make([]componentStatsView, len(r.Components))
	for i, st := range r.Components {
		views[i] = toView(st)
	}
	wr := wireReport{
		Version:     r.Version,
		GeneratedAt: r.GeneratedAt,
		Session:     r.Session,
		Summary:     toSummaryView(r.Summary),
		Components:  views,
		Chains:      r.Chains,
		Suggestions: r.Suggestions,
		Framework:   r.Framework,
		Timeline:    r.Timeline,
	}
	if wr.Chains == nil {
		wr.Chains = []model.RenderChain{}
	}
	if wr.Timeline == nil {
		wr.Timeline = []any{}
	}
	data, err := json.Marshal(wr)
	if err != nil {
		return nil, errs.Wrap(errs.ReportWriteFailed, "report.Marshal", err)
	}
	return data, nil
}

// Unmarshal parses a report previously produced by Marshal.
func Unmarshal(data []byte) (model.SessionReport, error) {
	var wr wireReport
	if err := json.Unmarshal(data, &wr); err != nil {
		return model.SessionReport{}, fmt.Errorf("report: malformed document: %w", err)
	}
	components := make([]*model.ComponentStats, len(wr.Components))
	for i, v := range wr.Components {
		components[i] = fromView(v)
	}
	return model.SessionReport{
		Version:     wr.Version,
		GeneratedAt: wr.GeneratedAt,
		Session:     wr.Session,
		Summary:     fromSummaryView(wr.Summary),
		Components:  components,
		Chains:      wr.Chains,
		Suggestions: wr.Suggestions,
		Framework:   wr.Framework,
		Timeline:    wr.Timeline,
	}, nil
}

// Validate checks that data is a structurally valid report document per
// spec §6.2: an object root with the required fields present, numeric
// summary counts, and an array-typed components field. It does not
// validate semantic invariants (those are the responsibility of the
// packages that produce a report); it validates that a receiver can
// safely treat the document as a report at all.
func Validate(data []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("report: not a JSON object: %w", err)
	}

	required := []string{"version", "generated", "session", "summary", "components"}
	for _, field := range required {
		if _, ok := root[field]; !ok {
			return fmt.Errorf("report: missing required field %q", field)
		}
	}

	var components []json.RawMessage
	if err := json.Unmarshal(root["components"], &components); err != nil {
		return fmt.Errorf("report: %q is not an array: %w", "components", err)
	}

	var summary map[string]json.RawMessage
	if err := json.Unmarshal(root["summary"], &summary); err != nil {
		return fmt.Errorf("report: %q is not an object: %w", "summary", err)
	}
	numericSummaryFields := []string{
		"uniqueComponents", "totalRenders", "healthyCount", "infoCount",
		"warningCount", "criticalCount", "averageFps", "minFps",
		"unnecessaryRenders", "dropped", "probeErrors",
	}
	for _, field := range numericSummaryFields {
		raw, ok := summary[field]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("report: summary.%s is not numeric: %w", field, err)
		}
	}
	return nil
}
