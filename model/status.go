package model

import (
	"fmt"
	"strings"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/style"
)

// StatusModel renders the bottom status line:
//
//	session 3f2a91c0 · scheme_navigator · 6 messages · idle
//
// It is driven entirely by setter calls.
type StatusModel struct {
	sessionID string
	agent     string
	count     int
	state     chat.State
	loading   bool
	width     int
}

// NewStatus returns a zero-value StatusModel.
func NewStatus() StatusModel {
	return StatusModel{}
}

// Sync copies the displayable state out of c.
func (m *StatusModel) Sync(c *chat.Conversation) {
	m.sessionID = c.SessionID()
	m.agent = c.LastAgent()
	m.count = c.Len()
	m.state = c.State()
	m.loading = c.LoadingHistory()
}

// SetWidth sets the terminal width used to truncate the line.
func (m *StatusModel) SetWidth(w int) {
	m.width = w
}

// View renders the status line.
func (m StatusModel) View() string {
	session := "new chat"
	if m.sessionID != "" {
		session = "session " + shortID(m.sessionID)
	}

	parts := []string{style.StatusSession.Render(session)}
	if m.agent != "" {
		parts = append(parts, m.agent)
	}
	parts = append(parts, pluralize(m.count, "message"))

	switch {
	case m.loading:
		parts = append(parts, "loading")
	default:
		parts = append(parts, m.state.String())
	}

	line := strings.Join(parts, " · ")
	if m.width > 0 {
		line = truncate(line, m.width-2)
	}
	return style.StatusBar.Render(line)
}

// shortID returns the first 8 runes of a session id.
func shortID(id string) string {
	r := []rune(id)
	if len(r) > 8 {
		return string(r[:8])
	}
	return id
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
