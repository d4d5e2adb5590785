package entities

import (
	"encoding/json"
	"strings"
)

// SensorEventName is the only event the relay rebroadcasts
const SensorEventName = "sensor"

// GenerationRequest is the input of one score generation
type GenerationRequest struct {
	SongName string `json:"songName"`
}

// Score is an ordered list of notation lines
type Score []string

// Text joins the score lines with a newline separator
func (s Score) Text() string {
	return strings.Join(s, "\n")
}

// SensorEvent is a named real-time event with an opaque payload.
// The payload is never inspected, only forwarded.
type SensorEvent struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"data,omitempty"`
}

// IsSensor reports whether the event should be relayed
func (e SensorEvent) IsSensor() bool {
	return e.Name == SensorEventName
}
