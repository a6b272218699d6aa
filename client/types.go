package client

import (
	"bytes"
	"encoding/json"
	"strings"
)

// HealthResponse from GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AgentRequest for POST /api/chat/agent.
type AgentRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// AgentResponse from POST /api/chat/agent.
type AgentResponse struct {
	Response  string   `json:"response"`
	Agent     string   `json:"agent"`
	SessionID string   `json:"session_id"`
	Schemes   []Scheme `json:"schemes"`
}

// MessageRequest is the body shared by /api/chat/schemes and /api/test-ai.
type MessageRequest struct {
	Message string `json:"message"`
}

// TestAIResponse from POST /api/test-ai.
type TestAIResponse struct {
	Response string `json:"response"`
}

// Scheme is a government support program as returned by the backend.
// The client never interprets it beyond decoding.
type Scheme struct {
	ID             FlexString `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Benefits       StringList `json:"benefits"`
	Category       string     `json:"category"`
	Link           string     `json:"link"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"`
	Explanation    string     `json:"explanation,omitempty"`
	KeyBenefit     string     `json:"key_benefit,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

// HistoryRecord is one stored message from GET /api/history/{session_id}.
type HistoryRecord struct {
	ID        FlexString `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp string     `json:"timestamp"`
	Agent     string     `json:"agent,omitempty"`
	Schemes   []Scheme   `json:"schemes,omitempty"`
}

// ErrorResponse covers both FastAPI ({"detail": ...}) and generic
// ({"error": ..., "details": ...}) error bodies.
type ErrorResponse struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details string          `json:"details,omitempty"`
}

// FlexString decodes a JSON string or number into a string. Scheme and
// message ids come back as either depending on the backing table.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// StringList decodes either a JSON array of strings or a single string.
// A single string containing newlines is split into one entry per line.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-•* "))
		if line != "" {
			out = append(out, line)
		}
	}
	*l = out
	return nil
}

// detailText flattens a FastAPI detail payload into a display string.
// Validation errors arrive as a list of objects with a "msg" field.
func (e ErrorResponse) detailText() string {
	if len(e.Detail) > 0 {
		var s string
		if json.Unmarshal(e.Detail, &s) == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(e.Detail, &items) == nil {
			var msgs []string
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
		return string(e.Detail)
	}
	if e.Error != "" && e.Details != "" {
		return e.Error + ": " + e.Details
	}
	return e.Error
}
