// Package chat holds the conversation controller: the message model, the
// send/cancel/select state machine, the session directory loader and the
// cosmetic thinking-status narrator. It performs no rendering.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maya-advisor/maya-tui/client"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind selects how a message is rendered.
type Kind string

const (
	KindText       Kind = "text"
	KindSchemeList Kind = "scheme-list"
)

// Message is a single transcript entry. Messages are values; the
// conversation appends them and never edits one in place.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	Kind      Kind
	Schemes   []client.Scheme
	Agent     string
}

// HasSchemes reports whether the message carries scheme cards.
func (m Message) HasSchemes() bool {
	return m.Kind == KindSchemeList && len(m.Schemes) > 0
}

func newID() string {
	// UUIDv7 sorts by creation time.
	return uuid.Must(uuid.NewV7()).String()
}

func newUserMessage(text string) Message {
	return Message{
		ID:        newID(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: time.Now(),
		Kind:      KindText,
	}
}

func newAssistantMessage(content, agent string, schemes []client.Scheme) Message {
	return Message{
		ID:        newID(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Kind:      kindFor(schemes),
		Schemes:   schemes,
		Agent:     agent,
	}
}

func kindFor(schemes []client.Scheme) Kind {
	if len(schemes) > 0 {
		return KindSchemeList
	}
	return KindText
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func normalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human":
		return RoleUser
	default:
		return RoleAssistant
	}
}

// normalizeHistory converts stored records into transcript messages,
// keeping the backend's oldest-first order.
func normalizeHistory(records []client.HistoryRecord) []Message {
	out := make([]Message, 0, len(records))
	for _, r := range records {
		id := r.ID.String()
		if id == "" {
			id = newID()
		}
		out = append(out, Message{
			ID:        id,
			Role:      normalizeRole(r.Role),
			Content:   r.Content,
			Timestamp: parseTimestamp(r.Timestamp),
			Kind:      kindFor(r.Schemes),
			Schemes:   r.Schemes,
			Agent:     r.Agent,
		})
	}
	return out
}
