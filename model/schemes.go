package model

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maya-advisor/maya-tui/client"
	"github.com/maya-advisor/maya-tui/style"
)

// SchemesClosed is emitted when the user leaves the scheme browser.
type SchemesClosed struct{}

// SchemesModel browses the scheme cards of one reply. It has a list view and
// a details view for the card under the cursor.
type SchemesModel struct {
	schemes []client.Scheme
	cursor  int
	details bool
	active  bool
	width   int
	height  int
}

// NewSchemes returns an inactive browser.
func NewSchemes() SchemesModel {
	return SchemesModel{}
}

// Open activates the browser on schemes.
func (m *SchemesModel) Open(schemes []client.Scheme) {
	m.schemes = schemes
	m.cursor = 0
	m.details = false
	m.active = true
}

// Clear deactivates the browser.
func (m *SchemesModel) Clear() {
	m.active = false
	m.schemes = nil
	m.cursor = 0
	m.details = false
}

// IsActive reports whether the browser is visible.
func (m SchemesModel) IsActive() bool { return m.active }

// InDetails reports whether the details view is showing.
func (m SchemesModel) InDetails() bool { return m.details }

// Selected returns the scheme under the cursor.
func (m SchemesModel) Selected() (client.Scheme, bool) {
	if m.cursor < 0 || m.cursor >= len(m.schemes) {
		return client.Scheme{}, false
	}
	return m.schemes[m.cursor], true
}

// SetSize constrains the browser to the given area.
func (m *SchemesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles keyboard input when the browser is active.
func (m SchemesModel) Update(msg tea.Msg) (SchemesModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if !m.details && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if !m.details && m.cursor < len(m.schemes)-1 {
			m.cursor++
		}
	case "enter", "right", "l":
		m.details = true
	case "left", "h", "backspace":
		m.details = false
	case "esc", "q":
		if m.details {
			m.details = false
			return m, nil
		}
		m.Clear()
		return m, func() tea.Msg { return SchemesClosed{} }
	}
	return m, nil
}

// View renders the browser. Returns "" when inactive.
func (m SchemesModel) View() string {
	if !m.active {
		return ""
	}
	inner := m.width - 6
	if inner < 30 {
		inner = 70
	}

	var body string
	if s, ok := m.Selected(); ok && m.details {
		body = renderSchemeDetails(s, inner)
	} else {
		body = m.renderList(inner)
	}

	box := style.PanelBorder.Padding(1, 2)
	if m.width > 0 {
		box = box.Width(m.width - 2)
	}
	return box.Render(body)
}

func (m SchemesModel) renderList(width int) string {
	var sb strings.Builder
	sb.WriteString(style.PanelTitle.Render(fmt.Sprintf("◈ Schemes (%d)", len(m.schemes))))
	sb.WriteString(style.Hint.Render("  ↑↓ navigate · enter details · esc close"))
	sb.WriteString("\n\n")

	if len(m.schemes) == 0 {
		sb.WriteString(style.Faint.Render("  No schemes in this reply"))
		return sb.String()
	}

	for i, s := range m.schemes {
		cursor := "  "
		name := style.ItemUnselected.Render(s.Name)
		if i == m.cursor {
			cursor = style.ItemSelected.Render("> ")
			name = style.ItemSelected.Render(s.Name)
		}
		line := cursor + name
		if s.Category != "" {
			line += style.CardCategory.Render("  " + s.Category)
		}
		if s.RelevanceScore != nil {
			line += "  " + style.ScoreBar(*s.RelevanceScore, 6)
		}
		sb.WriteString(truncate(line, width))
		if s.KeyBenefit != "" {
			sb.WriteString("\n    ")
			sb.WriteString(style.Faint.Render(truncate(s.KeyBenefit, width-4)))
		}
		if i < len(m.schemes)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func renderSchemeDetails(s client.Scheme, width int) string {
	var sb strings.Builder
	sb.WriteString(style.CardTitle.Render(s.Name))
	if s.Category != "" {
		sb.WriteString(style.CardCategory.Render("  " + s.Category))
	}
	sb.WriteString("\n")

	if s.RelevanceScore != nil {
		sb.WriteString(style.ScoreBar(*s.RelevanceScore, 10))
		sb.WriteString(style.CardScore.Render(fmt.Sprintf(" %d%% match", int(math.Round(style.ScorePercent(*s.RelevanceScore))))))
		sb.WriteString("\n")
	}
	if s.Description != "" {
		sb.WriteString("\n" + wrap(s.Description, width) + "\n")
	}
	if s.KeyBenefit != "" {
		sb.WriteString("\n" + style.Bold.Render("Key benefit") + "\n")
		sb.WriteString(wrap(s.KeyBenefit, width) + "\n")
	}
	if s.Explanation != "" {
		sb.WriteString("\n" + style.Bold.Render("Why it fits") + "\n")
		sb.WriteString(wrap(s.Explanation, width) + "\n")
	}
	if len(s.Benefits) > 0 {
		sb.WriteString("\n" + style.Bold.Render("Benefits") + "\n")
		for _, b := range s.Benefits {
			sb.WriteString(wrap("• "+b, width) + "\n")
		}
	}
	if len(s.Tags) > 0 {
		sb.WriteString("\n" + style.Faint.Render("#"+strings.Join(s.Tags, " #")) + "\n")
	}
	if s.Link != "" {
		sb.WriteString("\n" + style.CardLink.Render(s.Link) + "\n")
	}
	sb.WriteString("\n" + style.Hint.Render("← back · esc close"))
	return sb.String()
}
