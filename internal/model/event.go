// Package model defines the data types shared across the ReactCheck
// analysis pipeline: render events ingested from the probe, the running
// per-component statistics derived from them, detected render chains,
// suggested fixes, and the assembled session report.
package model

// Phase identifies whether a render event was a first mount or a
// subsequent update of an already-mounted component.
type Phase string

const (
	PhaseMount  Phase = "mount"
	PhaseUpdate Phase = "update"
)

// RenderEvent is the atomic unit of input to the analysis pipeline. It is
// produced by the probe and is immutable once received; nothing downstream
// mutates a RenderEvent in place.
type RenderEvent struct {
	// ComponentName is the component identifier, stable within a session.
	ComponentName string `json:"componentName"`

	// InstanceID optionally identifies a specific component instance,
	// stable across that instance's mount/unmount lifecycle.
	InstanceID string `json:"instanceId,omitempty"`

	Phase Phase `json:"phase"`

	// RenderTime is the render duration in milliseconds. Non-negative.
	RenderTime float64 `json:"renderTime"`

	// Necessary is false when the render produced no observable output
	// change (an "unnecessary" render).
	Necessary bool `json:"necessary"`

	// Timestamp is milliseconds since session start. Monotonic and
	// non-decreasing per sending probe.
	Timestamp int64 `json:"timestamp"`

	// ChangedProps and ChangedState name the props/state keys that changed
	// in the commit that produced this render, when known.
	ChangedProps []string `json:"changedProps,omitempty"`
	ChangedState []string `json:"changedState,omitempty"`
}

// Key returns the identity used for duplicate-commit detection: the spec
// treats two events with the same component and timestamp as the same
// commit observed twice (e.g. once from an installed hook and once from a
// wrapped pre-existing hook) rather than two distinct renders.
func (e RenderEvent) Key() (string, int64) {
	return e.ComponentName, e.Timestamp
}

// HasPropsChanged reports whether this event carries any changed prop name.
func (e RenderEvent) HasPropsChanged() bool {
	return len(e.ChangedProps) > 0
}

// HasStateChanged reports whether this event carries any changed state key.
func (e RenderEvent) HasStateChanged() bool {
	return len(e.ChangedState) > 0
}
