package websocket

import (
	"errors"
	"testing"

	"github.com/satriahrh/scorelink/domain/entities"
)

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent([]byte(`{"event":"sensor","data":{"ax":0.1,"tags":["a"]}}`))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if !event.IsSensor() {
		t.Errorf("Expected sensor event, got %q", event.Name)
	}
	if string(event.Payload) != `{"ax":0.1,"tags":["a"]}` {
		t.Errorf("Payload not kept raw: %s", event.Payload)
	}
}

func TestDecodeEvent_Errors(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"data":1}`)); !errors.Is(err, ErrMissingEvent) {
		t.Errorf("Expected ErrMissingEvent, got %v", err)
	}
	if _, err := DecodeEvent([]byte(`{"event":`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestEncodeEvent(t *testing.T) {
	frame, err := EncodeEvent(entities.SensorEvent{
		Name:    entities.SensorEventName,
		Payload: []byte(`{"x":1}`),
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if string(frame) != `{"event":"sensor","data":{"x":1}}` {
		t.Errorf("Unexpected frame %s", frame)
	}

	frame, err = EncodeEvent(entities.SensorEvent{Name: entities.SensorEventName})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if string(frame) != `{"event":"sensor"}` {
		t.Errorf("Unexpected frame without payload %s", frame)
	}
}
