package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/msg"
	"github.com/maya-advisor/maya-tui/style"
)

// SidebarWidth is the fixed outer width of the session sidebar.
const SidebarWidth = 34

// SidebarBlur is emitted when the user leaves the sidebar with Esc or Tab.
type SidebarBlur struct{}

// SidebarModel lists stored sessions with a "New Chat" entry on top. The
// cursor index 0 is that entry; session i lives at cursor i+1.
type SidebarModel struct {
	items    []chat.Summary
	activeID string
	cursor   int
	offset   int
	focused  bool
	loading  bool
	err      error
	height   int
}

// NewSidebar returns an empty sidebar in the loading state.
func NewSidebar() SidebarModel {
	return SidebarModel{loading: true}
}

// SetLoading marks the directory as being (re)loaded.
func (m *SidebarModel) SetLoading() {
	m.loading = true
}

// SetDirectory installs a loaded directory, keeping the cursor on the same
// session when it is still listed.
func (m *SidebarModel) SetDirectory(items []chat.Summary, err error) {
	m.loading = false
	m.err = err
	if err != nil {
		return
	}
	prev := m.selectedID()
	m.items = items
	m.cursor = 0
	for i, it := range items {
		if it.ID == prev {
			m.cursor = i + 1
			break
		}
	}
	m.clampOffset()
}

// SetActive highlights the session currently shown in the chat pane.
func (m *SidebarModel) SetActive(id string) {
	m.activeID = id
}

// Focus gives the sidebar keyboard focus.
func (m *SidebarModel) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *SidebarModel) Blur() { m.focused = false }

// Focused reports whether the sidebar has keyboard focus.
func (m SidebarModel) Focused() bool { return m.focused }

// Len returns the number of listed sessions.
func (m SidebarModel) Len() int { return len(m.items) }

// SetHeight sets the available rows, border included.
func (m *SidebarModel) SetHeight(h int) {
	m.height = h
	m.clampOffset()
}

func (m SidebarModel) pageSize() int {
	// border (2) + title (2) + footer (2)
	n := m.height - 6
	if n < 3 {
		n = 3
	}
	return n
}

func (m SidebarModel) selectedID() string {
	if m.cursor <= 0 || m.cursor > len(m.items) {
		return ""
	}
	return m.items[m.cursor-1].ID
}

func (m *SidebarModel) clampOffset() {
	total := len(m.items) + 1
	if m.cursor >= total {
		m.cursor = total - 1
	}
	page := m.pageSize() - 1
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Update handles keyboard input while the sidebar is focused.
func (m SidebarModel) Update(teaMsg tea.Msg) (SidebarModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := teaMsg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	total := len(m.items) + 1

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = total - 1
		}
	case "down", "j":
		if m.cursor < total-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case "enter":
		if m.cursor == 0 {
			return m, func() tea.Msg { return msg.NewChat{} }
		}
		id := m.selectedID()
		return m, func() tea.Msg { return msg.SelectSession{ID: id} }
	case "esc", "tab":
		m.focused = false
		return m, func() tea.Msg { return SidebarBlur{} }
	}
	m.clampOffset()
	return m, nil
}

// View renders the sidebar panel.
func (m SidebarModel) View() string {
	inner := SidebarWidth - 4
	var sb strings.Builder

	title := style.PanelTitle.Render("◈ Sessions")
	if m.focused {
		title += style.Hint.Render("  ↑↓ enter")
	}
	sb.WriteString(title + "\n\n")

	sb.WriteString(m.renderRow(0, "+ New Chat", m.activeID == "", inner))
	sb.WriteByte('\n')

	switch {
	case m.loading && len(m.items) == 0:
		sb.WriteString(style.Faint.Render("  Loading sessions…"))
	case m.err != nil:
		sb.WriteString(style.ErrorText.Render("  Could not load sessions"))
	case len(m.items) == 0:
		sb.WriteString(style.Faint.Render("  No saved chats yet"))
	default:
		page := m.pageSize() - 1
		start := m.offset
		if start > 0 {
			start--
		}
		end := start + page
		if end > len(m.items) {
			end = len(m.items)
		}
		if start > 0 {
			sb.WriteString(style.Faint.Render("  ↑ more") + "\n")
		}
		for i := start; i < end; i++ {
			it := m.items[i]
			sb.WriteString(m.renderRow(i+1, it.Title, it.ID == m.activeID, inner))
			sb.WriteByte('\n')
		}
		if end < len(m.items) {
			sb.WriteString(style.Faint.Render("  ↓ more") + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(style.Faint.Render(fmt.Sprintf("  %s", pluralize(len(m.items), "chat"))))

	box := style.PanelBorder.Width(SidebarWidth - 2)
	if m.focused {
		box = box.BorderForeground(style.Primary)
	}
	if m.height > 2 {
		box = box.Height(m.height - 2)
	}
	return box.Render(sb.String())
}

func (m SidebarModel) renderRow(idx int, label string, active bool, width int) string {
	cursor := "  "
	if m.focused && idx == m.cursor {
		cursor = style.ItemSelected.Render("> ")
	}
	marker := lipgloss.NewStyle().Foreground(style.Muted).Render("○ ")
	if active {
		marker = lipgloss.NewStyle().Foreground(style.Success).Render("● ")
	}
	text := truncate(label, width-4)
	if m.focused && idx == m.cursor {
		text = style.Bold.Render(text)
	}
	return cursor + marker + text
}
