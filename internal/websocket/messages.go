package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/satriahrh/scorelink/domain/entities"
)

// ErrMissingEvent is returned for frames without an event name
var ErrMissingEvent = errors.New("message missing event field")

// DecodeEvent parses one inbound text frame. Only the envelope is checked; the
// payload is kept as raw JSON.
func DecodeEvent(frame []byte) (entities.SensorEvent, error) {
	var event entities.SensorEvent
	if err := json.Unmarshal(frame, &event); err != nil {
		return entities.SensorEvent{}, fmt.Errorf("invalid JSON format: %w", err)
	}
	if event.Name == "" {
		return entities.SensorEvent{}, ErrMissingEvent
	}
	return event, nil
}

// EncodeEvent renders an event as an outbound text frame
func EncodeEvent(event entities.SensorEvent) ([]byte, error) {
	frame, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Name, err)
	}
	return frame, nil
}
