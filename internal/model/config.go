package model

import "time"

// Configuration is the single struct consumed by the orchestrator. It is
// produced by an external loader (see internal/config); the orchestrator
// only ever accepts an already-validated Configuration value.
type Configuration struct {
	// CriticalThreshold ("critical") is the render-count floor at or
	// above which a component is classified critical.
	// Default: 50.
	CriticalThreshold int

	// WarningThreshold ("warning") is the render-count floor at or above
	// which a component is classified warning (when below
	// CriticalThreshold).
	// Default: 20.
	WarningThreshold int

	// FPSThreshold is a render-rate floor reserved for future hysteresis;
	// it is accepted and carried but does not currently gate severity.
	// Default: 30.
	FPSThreshold float64

	// Include and Exclude are glob patterns (`*` matches any run, `?`
	// matches one character) applied to component names by the
	// orchestrator before events reach the stats collector or chain
	// analyzer. A name excluded by a pattern never appears in output.
	Include []string
	Exclude []string

	// TrackUnnecessary enables unnecessary-render counting in the stats
	// collector. Default: true.
	TrackUnnecessary bool

	// ChainWindow is the frame-window duration used by the chain analyzer
	// to group causally-related renders.
	// Default: 16ms (one frame at 60Hz).
	ChainWindow time.Duration

	// ContextTriggerMinConsumers (K) is the minimum distinct-consumer
	// count the chain analyzer requires before classifying a window as
	// context-triggered.
	// Default: 3.
	ContextTriggerMinConsumers int

	// UsefulComputationThresholdMs (T_avg) is the average-render-time
	// floor the useMemo rule uses to suspect an expensive dependent
	// computation.
	// Default: 2.0ms.
	UsefulComputationThresholdMs float64

	// MaxQueuedEvents bounds the inbound event queue between the router
	// and the orchestrator before back-pressure coalescing kicks in.
	// Default: 10000.
	MaxQueuedEvents int
}

// DefaultConfiguration returns a Configuration populated with the spec's
// documented defaults.
func DefaultConfiguration() Configuration {
	return Configuration{
		CriticalThreshold:            50,
		WarningThreshold:             20,
		FPSThreshold:                 30,
		TrackUnnecessary:             true,
		ChainWindow:                  16 * time.Millisecond,
		ContextTriggerMinConsumers:   3,
		UsefulComputationThresholdMs: 2.0,
		MaxQueuedEvents:              10000,
	}
}
