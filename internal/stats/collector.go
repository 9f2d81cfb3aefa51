// Package stats implements the streaming per-component statistics
// collector (spec §4.2): a mapping from component identifier to running
// ComponentStats, updated synchronously as each RenderEvent is ingested.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/reactcheck/reactcheck/internal/bus"
	"github.com/reactcheck/reactcheck/internal/model"
)

type dedupeKey struct {
	component string
	timestamp int64
}

// Collector maintains per-component ComponentStats and classifies severity
// with the hysteresis rule from the spec: severity transitions are
// recomputed on every ingest and whenever thresholds change, and a
// "warning"/"critical" event fires only the first time a component crosses
// into that level.
type Collector struct {
	mu sync.Mutex

	components map[string]*model.ComponentStats
	thresholds Thresholds

	everWarning  map[string]bool
	everCritical map[string]bool

	trackUnnecessary bool

	seen map[dedupeKey]struct{}

	bus *bus.Bus
}

// New creates a Collector publishing update/severity_change/warning/
// critical events on b (which may be nil if no subscriber cares).
func New(thresholds Thresholds, trackUnnecessary bool, b *bus.Bus) *Collector {
	return &Collector{
		components:       make(map[string]*model.ComponentStats),
		thresholds:       thresholds,
		everWarning:      make(map[string]bool),
		everCritical:     make(map[string]bool),
		trackUnnecessary: trackUnnecessary,
		seen:             make(map[dedupeKey]struct{}),
		bus:              b,
	}
}

// Ingest applies one RenderEvent to the relevant ComponentStats, following
// the seven-step algorithm in spec §4.2. Duplicate commits (same component
// and timestamp) are idempotent: the second delivery is a no-op, per the
// spec's resolution of the dual-hook Open Question.
func (c *Collector) Ingest(ev model.RenderEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := dedupeKey{ev.ComponentName, ev.Timestamp}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}

	st, ok := c.components[ev.ComponentName]
	if !ok {
		st = model.NewComponentStats(ev.ComponentName)
		c.components[ev.ComponentName] = st
	}

	st.Renders++
	if !ev.Necessary && c.trackUnnecessary {
		st.Unnecessary++
	}

	st.TotalRenderTime += ev.RenderTime
	if ev.RenderTime > st.MaxRenderTime {
		st.MaxRenderTime = ev.RenderTime
	}
	if !st.MinSet || ev.RenderTime < st.MinRenderTime {
		st.MinRenderTime = ev.RenderTime
		st.MinSet = true
	}
	st.AvgRenderTime = st.TotalRenderTime / float64(st.Renders)

	if st.FirstRenderTimestamp == 0 && st.LastRenderTimestamp == 0 && st.Renders == 1 {
		st.FirstRenderTimestamp = ev.Timestamp
	}
	st.LastRenderTimestamp = ev.Timestamp

	st.PropsChanged = ev.HasPropsChanged()
	st.StateChanged = ev.HasStateChanged()
	if st.PropsChanged {
		st.PropChangeCount++
	}
	if st.StateChanged {
		st.StateChangeCount++
	}
	st.RecordDistinctChange(changeFingerprint(ev), ev.Phase == model.PhaseMount)

	prev := st.Severity
	next := c.thresholds.Classify(st.Renders)
	st.Severity = next

	if c.bus != nil {
		c.bus.Publish(bus.TopicRender, ev)
		c.bus.Publish(bus.TopicUpdate, st)
	}
	c.emitTransition(ev.ComponentName, prev, next)
}

func changeFingerprint(ev model.RenderEvent) string {
	if len(ev.ChangedProps) == 0 && len(ev.ChangedState) == 0 {
		return ""
	}
	return strings.Join(ev.ChangedProps, ",") + "|" + strings.Join(ev.ChangedState, ",")
}

func (c *Collector) emitTransition(component string, prev, next model.Severity) {
	if c.bus == nil {
		return
	}
	if next != prev {
		c.bus.Publish(bus.TopicSeverityChange, SeverityChange{
			Component: component,
			From:      prev,
			To:        next,
		})
	}
	if next == model.SeverityWarning && !c.everWarning[component] {
		c.everWarning[component] = true
		c.bus.Publish(bus.TopicWarning, component)
	}
	if next == model.SeverityCritical && !c.everCritical[component] {
		c.everCritical[component] = true
		c.bus.Publish(bus.TopicCritical, component)
	}
}

// SeverityChange is published on bus.TopicSeverityChange.
type SeverityChange struct {
	Component string
	From, To  model.Severity
}

// SetThresholds updates the severity thresholds and walks every component,
// emitting severity_change for every level transition this causes — per
// spec §4.2's "Re-evaluation on threshold change MUST walk all components".
func (c *Collector) SetThresholds(t Thresholds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thresholds = t

	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		st := c.components[name]
		prev := st.Severity
		next := c.thresholds.Classify(st.Renders)
		if next == prev {
			continue
		}
		st.Severity = next
		if next.Rank() < model.SeverityWarning.Rank() {
			// Falling back below warning clears the "ever warned" latch
			// so a later re-crossing emits `warning` again, matching the
			// scenario in spec §8 #5 ("no outstanding warning flag").
			if prev == model.SeverityWarning || prev == model.SeverityCritical {
				c.everWarning[name] = false
			}
		}
		if next != model.SeverityCritical && prev == model.SeverityCritical {
			c.everCritical[name] = false
		}
		c.emitTransition(name, prev, next)
	}
}

// SetParent records the direct-enclosing-component annotation for child,
// used by the chain analyzer's ancestry walk and surfaced on the
// component's stats.
func (c *Collector) SetParent(child, parent string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.getOrCreate(child)
	st.ParentID = parent
}

// SetChain records the most recently observed cascade path a component
// appeared on.
func (c *Collector) SetChain(child string, path []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.getOrCreate(child)
	st.ChainPath = append([]string(nil), path...)
}

// RecordDrop increments a component's dropped-event counter under
// back-pressure coalescing (spec §5).
func (c *Collector) RecordDrop(component string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.getOrCreate(component)
	st.DroppedEvents++
}

func (c *Collector) getOrCreate(component string) *model.ComponentStats {
	st, ok := c.components[component]
	if !ok {
		st = model.NewComponentStats(component)
		c.components[component] = st
	}
	return st
}

// Snapshot returns every component's stats sorted by severity descending,
// ties broken by render count descending, then identifier ascending.
func (c *Collector) Snapshot() []*model.ComponentStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*model.ComponentStats, 0, len(c.components))
	for _, st := range c.components {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Renders != b.Renders {
			return a.Renders > b.Renders
		}
		return a.ComponentName < b.ComponentName
	})
	return out
}

// BySeverity returns every component currently at the given severity
// level, in Snapshot order.
func (c *Collector) BySeverity(level model.Severity) []*model.ComponentStats {
	all := c.Snapshot()
	out := make([]*model.ComponentStats, 0, len(all))
	for _, st := range all {
		if st.Severity == level {
			out = append(out, st)
		}
	}
	return out
}

// Summary computes the aggregate counts the report's ReportSummary needs.
func (c *Collector) Summary() model.ReportSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s model.ReportSummary
	s.UniqueComponents = len(c.components)
	for _, st := range c.components {
		s.TotalRenders += st.Renders
		s.UnnecessaryRenders += st.Unnecessary
		s.Dropped += st.DroppedEvents
		switch st.Severity {
		case model.SeverityCritical:
			s.CriticalCount++
		case model.SeverityWarning:
			s.WarningCount++
		case model.SeverityInfo:
			s.InfoCount++
		default:
			s.HealthyCount++
		}
	}
	return s
}

// Reset clears all component state, thresholds unchanged.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components = make(map[string]*model.ComponentStats)
	c.everWarning = make(map[string]bool)
	c.everCritical = make(map[string]bool)
	c.seen = make(map[dedupeKey]struct{})
}

// Get returns a single component's stats, or nil if unknown. Intended for
// the suggester and tests; callers must not mutate the returned value.
func (c *Collector) Get(component string) *model.ComponentStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.components[component]
}

func (c *Collector) String() string {
	return fmt.Sprintf("stats.Collector{components=%d}", len(c.components))
}
