package api

import "encoding/json"

// GenerateScoreRequest represents the request payload for score generation.
// SongName is kept raw so that non-string values are substituted as written.
type GenerateScoreRequest struct {
	SongName json.RawMessage `json:"songName"`
}

// GenerateScoreResponse represents a generated score
type GenerateScoreResponse struct {
	Text string `json:"text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Connections int    `json:"connections"`
}

// songName renders the requested name: strings verbatim, missing or null as
// empty, anything else as its JSON text
func (r GenerateScoreRequest) songName() string {
	if len(r.SongName) == 0 || string(r.SongName) == "null" {
		return ""
	}
	var name string
	if err := json.Unmarshal(r.SongName, &name); err == nil {
		return name
	}
	return string(r.SongName)
}
