package wire

import (
	"testing"

	"github.com/reactcheck/reactcheck/internal/model"
)

func TestDecodeRender(t *testing.T) {
	raw := []byte(`{"type":"render","payload":{"componentName":"Button","renderTime":1.5,"phase":"update","necessary":false,"timestamp":10,"changedProps":["label"]}}`)

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if msg.Type != InboundRender {
		t.Fatalf("type = %v, want render", msg.Type)
	}
	if msg.Render == nil {
		t.Fatal("expected Render payload")
	}
	if msg.Render.ComponentName != "Button" || msg.Render.RenderTime != 1.5 {
		t.Errorf("unexpected payload: %+v", msg.Render)
	}
	ev := msg.Render.ToEvent()
	if ev.Phase != model.PhaseUpdate || ev.Necessary {
		t.Errorf("ToEvent mismatch: %+v", ev)
	}
}

func TestDecodeUnknownTypeIsBenign(t *testing.T) {
	raw := []byte(`{"type":"future-message","payload":{"anything":1}}`)
	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("unknown type should decode without error, got %v", err)
	}
	if !msg.Unknown {
		t.Error("expected Unknown=true for an unrecognized type")
	}
}

func TestDecodeMalformedJSONErrors(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestDecodeComponentTree(t *testing.T) {
	raw := []byte(`{"type":"component-tree","payload":[{"name":"App","children":[{"name":"Header"}]}]}`)
	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(msg.ComponentTree) != 1 || msg.ComponentTree[0].Name != "App" {
		t.Fatalf("unexpected component tree: %+v", msg.ComponentTree)
	}
	if len(msg.ComponentTree[0].Children) != 1 || msg.ComponentTree[0].Children[0].Name != "Header" {
		t.Fatalf("unexpected children: %+v", msg.ComponentTree[0].Children)
	}
}

func TestDecodeReadyAndError(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"ready","payload":{"reactVersion":"18.2.0"}}`))
	if err != nil || msg.Ready == nil || msg.Ready.ReactVersion != "18.2.0" {
		t.Fatalf("unexpected ready decode: %+v err=%v", msg, err)
	}

	msg, err = Decode([]byte(`{"type":"error","payload":{"message":"boom","code":"E1"}}`))
	if err != nil || msg.Error == nil || msg.Error.Message != "boom" {
		t.Fatalf("unexpected error decode: %+v err=%v", msg, err)
	}
}

func TestDecodeFPS(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"fps","payload":58.5}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if msg.FPS == nil || *msg.FPS != 58.5 {
		t.Fatalf("unexpected fps: %+v", msg.FPS)
	}
}

func TestEncodeControl(t *testing.T) {
	data, err := EncodeControl(OutboundStart)
	if err != nil {
		t.Fatalf("EncodeControl error: %v", err)
	}
	if string(data) != `{"type":"start"}` {
		t.Errorf("got %s, want a bare start envelope", data)
	}
}

func TestEncodeConfig(t *testing.T) {
	cfg := model.Configuration{TrackUnnecessary: true, Include: []string{"App*"}}
	data, err := EncodeConfig(cfg)
	if err != nil {
		t.Fatalf("EncodeConfig error: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty encoded config")
	}
}

func TestEncodeHighlight(t *testing.T) {
	data, err := EncodeHighlight("Button", true)
	if err != nil {
		t.Fatalf("EncodeHighlight error: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty encoded highlight message")
	}
}
