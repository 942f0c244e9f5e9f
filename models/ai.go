package models

// ModelInfo describes a text-generation model known to the remote provider.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name,omitempty"`
	Description      string   `json:"description,omitempty"`
	InputTokenLimit  int32    `json:"input_token_limit,omitempty"`
	OutputTokenLimit int32    `json:"output_token_limit,omitempty"`
	Methods          []string `json:"methods,omitempty"`
}

// ChatRequest is one inbound message handed over by the transport.
type ChatRequest struct {
	Sender    string   `json:"sender"`
	Message   string   `json:"message"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Fast      bool     `json:"fast,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

// HasCoords reports whether the message carries a location share.
func (r ChatRequest) HasCoords() bool {
	return r.Lat != nil && r.Lng != nil
}

// ChatResponse carries the single reply produced for a ChatRequest.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}
