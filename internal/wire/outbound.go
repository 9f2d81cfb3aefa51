package wire

import (
	"encoding/json"

	"github.com/reactcheck/reactcheck/internal/model"
)

// OutboundType enumerates the host → probe message tags.
type OutboundType string

const (
	OutboundStart     OutboundType = "start"
	OutboundStop      OutboundType = "stop"
	OutboundReset     OutboundType = "reset"
	OutboundConfig    OutboundType = "config"
	OutboundHighlight OutboundType = "highlight"
)

// ScannerConfig is the subset of Configuration forwarded to the probe so
// it can adjust what it instruments client-side.
type ScannerConfig struct {
	TrackUnnecessary bool     `json:"trackUnnecessary"`
	Include          []string `json:"include,omitempty"`
	Exclude          []string `json:"exclude,omitempty"`
}

// HighlightPayload is the payload of an outbound "highlight" message.
type HighlightPayload struct {
	Component string `json:"component"`
	Enabled   bool   `json:"enabled"`
}

type outboundEnvelope struct {
	Type    OutboundType `json:"type"`
	Payload any          `json:"payload,omitempty"`
}

// EncodeControl encodes a bare control message (start/stop/reset) with no
// payload.
func EncodeControl(t OutboundType) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Type: t})
}

// EncodeConfig encodes an outbound "config" message from a Configuration.
func EncodeConfig(cfg model.Configuration) ([]byte, error) {
	return json.Marshal(outboundEnvelope{
		Type: OutboundConfig,
		Payload: ScannerConfig{
			TrackUnnecessary: cfg.TrackUnnecessary,
			Include:          cfg.Include,
			Exclude:          cfg.Exclude,
		},
	})
}

// EncodeHighlight encodes an outbound "highlight" message.
func EncodeHighlight(component string, enabled bool) ([]byte, error) {
	return json.Marshal(outboundEnvelope{
		Type:    OutboundHighlight,
		Payload: HighlightPayload{Component: component, Enabled: enabled},
	})
}
