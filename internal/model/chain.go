package model

// RenderChain is one detected cascade: a set of render events clustered
// within a single display frame and attributed to one originating cause.
// A RenderChain is never mutated after the chain analyzer emits it.
type RenderChain struct {
	// Trigger is a human-readable description, e.g. "state change in
	// Provider" or "context update near Provider".
	Trigger string `json:"trigger"`

	// Components is the cascade order: the chain path derived by walking
	// from the root cause outward along recorded parent edges.
	Components []string `json:"components"`

	// Depth is len(Components).
	Depth int `json:"depth"`

	// TotalRenders is the count of events attributed to this window.
	TotalRenders int `json:"totalRenders"`

	RootCause string `json:"rootCause"`

	// Timestamp is the window's open time.
	Timestamp int64 `json:"timestamp"`

	IsContextTriggered bool `json:"isContextTriggered"`
}
