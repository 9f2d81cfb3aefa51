// Package wire implements the JSON message schema exchanged with the
// probe (spec §6.1): a tagged union decoded by `type`, with an unknown tag
// silently ignored per the forward-compatibility rule.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/reactcheck/reactcheck/internal/model"
)

// InboundType enumerates the probe → host message tags.
type InboundType string

const (
	InboundRender        InboundType = "render"
	InboundChain         InboundType = "chain"
	InboundFPS           InboundType = "fps"
	InboundComponentTree InboundType = "component-tree"
	InboundReady         InboundType = "ready"
	InboundError         InboundType = "error"
)

// envelope is the common shape of every inbound message: a type tag plus
// an opaque payload decoded according to that tag.
type envelope struct {
	Type    InboundType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RenderPayload is the payload of an inbound "render" message.
type RenderPayload struct {
	ComponentName string       `json:"componentName"`
	RenderCount   int          `json:"renderCount"`
	RenderTime    float64      `json:"renderTime"`
	Phase         model.Phase  `json:"phase"`
	Necessary     bool         `json:"necessary"`
	Timestamp     int64        `json:"timestamp"`
	InstanceID    string       `json:"instanceId,omitempty"`
	ChangedProps  []string     `json:"changedProps,omitempty"`
	ChangedState  []string     `json:"changedState,omitempty"`
}

// ToEvent converts a RenderPayload into the internal RenderEvent model.
func (p RenderPayload) ToEvent() model.RenderEvent {
	return model.RenderEvent{
		ComponentName: p.ComponentName,
		InstanceID:    p.InstanceID,
		Phase:         p.Phase,
		RenderTime:    p.RenderTime,
		Necessary:     p.Necessary,
		Timestamp:     p.Timestamp,
		ChangedProps:  p.ChangedProps,
		ChangedState:  p.ChangedState,
	}
}

// ComponentNode is one entry of an inbound "component-tree" message.
type ComponentNode struct {
	Name     string          `json:"name"`
	Parent   string          `json:"parent,omitempty"`
	Children []ComponentNode `json:"children,omitempty"`
}

// ReadyPayload is the payload of an inbound "ready" message.
type ReadyPayload struct {
	ReactVersion string `json:"reactVersion"`
}

// ErrorPayload is the payload of an inbound "error" message.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Inbound is the decoded result of one inbound frame: exactly one of the
// typed fields is populated, selected by Type. An unrecognized Type yields
// Inbound{Type: Type, Unknown: true} rather than an error, per spec §6.1's
// forward-compatibility rule.
type Inbound struct {
	Type InboundType

	Render        *RenderPayload
	Chain         *model.RenderChain
	FPS           *float64
	ComponentTree []ComponentNode
	Ready         *ReadyPayload
	Error         *ErrorPayload

	Unknown bool
}

// Decode parses one JSON text-frame payload into an Inbound message. A
// malformed envelope (bad JSON at the outer level), or a payload that does
// not decode into the shape its known type tag requires, returns an error;
// an unknown type tag does not. Callers should discard an erroring frame and
// increment a counter rather than drop the connection, per spec §4.1's
// failure semantics.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("wire: malformed message: %w", err)
	}

	msg := Inbound{Type: env.Type}

	switch env.Type {
	case InboundRender:
		var p RenderPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return Inbound{}, fmt.Errorf("wire: malformed render payload: %w", err)
		}
		msg.Render = &p

	case InboundChain:
		var c model.RenderChain
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return Inbound{}, fmt.Errorf("wire: malformed chain payload: %w", err)
		}
		msg.Chain = &c

	case InboundFPS:
		var f float64
		if err := json.Unmarshal(env.Payload, &f); err != nil {
			return Inbound{}, fmt.Errorf("wire: malformed fps payload: %w", err)
		}
		msg.FPS = &f

	case InboundComponentTree:
		var nodes []ComponentNode
		if err := json.Unmarshal(env.Payload, &nodes); err != nil {
			return Inbound{}, fmt.Errorf("wire: malformed component-tree payload: %w", err)
		}
		msg.ComponentTree = nodes

	case InboundReady:
		var r ReadyPayload
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			return Inbound{}, fmt.Errorf("wire: malformed ready payload: %w", err)
		}
		msg.Ready = &r

	case InboundError:
		var e ErrorPayload
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return Inbound{}, fmt.Errorf("wire: malformed error payload: %w", err)
		}
		msg.Error = &e

	default:
		msg.Unknown = true
	}

	return msg, nil
}
