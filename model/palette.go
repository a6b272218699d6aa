package model

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/style"
)

// PaletteExecuteMsg is sent when the user picks an entry.
type PaletteExecuteMsg struct {
	Item PaletteItem
}

// PaletteDismissMsg is sent when the user closes the palette.
type PaletteDismissMsg struct{}

// PaletteItem is one palette entry. Quick actions carry a Prompt that is
// placed in the input; commands carry a slash Command.
type PaletteItem struct {
	Name        string
	Description string
	Category    string // "quick action" or "command"
	Prompt      string
	Command     string
}

// QuickActions are the canned openers also advertised on the welcome screen.
var QuickActions = []PaletteItem{
	{
		Name:        "Find Schemes",
		Description: "Discover government schemes for your business",
		Category:    "quick action",
		Prompt:      "What government schemes are available for my business?",
	},
	{
		Name:        "Brand Ideas",
		Description: "Get creative branding suggestions",
		Category:    "quick action",
		Prompt:      "Help me come up with brand name and logo ideas for my business",
	},
	{
		Name:        "Market Research",
		Description: "Analyze market trends and competitors",
		Category:    "quick action",
		Prompt:      "What are the current market trends and competitors in my industry?",
	},
}

var paletteKeys = struct {
	up, down, pick, close key.Binding
}{
	up:    key.NewBinding(key.WithKeys("up", "ctrl+k")),
	down:  key.NewBinding(key.WithKeys("down", "ctrl+j")),
	pick:  key.NewBinding(key.WithKeys("enter")),
	close: key.NewBinding(key.WithKeys("esc", "ctrl+c", "ctrl+p")),
}

const paletteRows = 10

// PaletteModel is a filterable overlay over quick actions and commands.
// Entries whose name starts with the query rank above plain substring hits.
type PaletteModel struct {
	active bool
	query  textinput.Model
	all    []PaletteItem
	shown  []PaletteItem
	cursor int
	width  int
	height int
}

func NewPalette() PaletteModel {
	q := textinput.New()
	q.Prompt = "› "
	q.Placeholder = "search actions and commands"
	return PaletteModel{query: q}
}

// Open shows the palette over a width x height screen.
func (m *PaletteModel) Open(items []PaletteItem, width, height int) tea.Cmd {
	m.active = true
	m.all = items
	m.width, m.height = width, height
	m.cursor = 0
	m.query.SetValue("")
	m.query.Width = max(width/2-8, 10)
	m.query.PromptStyle = style.PromptChar
	m.refilter()
	return m.query.Focus()
}

func (m PaletteModel) IsActive() bool { return m.active }

func (m PaletteModel) Update(teaMsg tea.Msg) (PaletteModel, tea.Cmd) {
	if k, ok := teaMsg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, paletteKeys.close):
			m.active = false
			m.query.Blur()
			return m, func() tea.Msg { return PaletteDismissMsg{} }
		case key.Matches(k, paletteKeys.pick):
			if len(m.shown) == 0 {
				return m, nil
			}
			item := m.shown[m.cursor]
			m.active = false
			m.query.Blur()
			return m, func() tea.Msg { return PaletteExecuteMsg{Item: item} }
		case key.Matches(k, paletteKeys.up):
			m.cursor = max(m.cursor-1, 0)
			return m, nil
		case key.Matches(k, paletteKeys.down):
			m.cursor = min(m.cursor+1, max(len(m.shown)-1, 0))
			return m, nil
		}
	}

	before := m.query.Value()
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(teaMsg)
	if m.query.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *PaletteModel) refilter() {
	m.cursor = 0
	q := strings.ToLower(strings.TrimSpace(m.query.Value()))
	if q == "" {
		m.shown = m.all
		return
	}
	type hit struct {
		item PaletteItem
		rank int
	}
	var hits []hit
	for _, it := range m.all {
		name := strings.ToLower(strings.TrimPrefix(it.Name, "/"))
		switch {
		case strings.HasPrefix(name, q):
			hits = append(hits, hit{it, 0})
		case strings.Contains(strings.ToLower(it.Name+" "+it.Description+" "+it.Category), q):
			hits = append(hits, hit{it, 1})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	m.shown = make([]PaletteItem, len(hits))
	for i, h := range hits {
		m.shown[i] = h.item
	}
}

func (m PaletteModel) View() string {
	if !m.active {
		return ""
	}
	boxWidth := min(max(m.width/2, 50), m.width-4)
	inner := boxWidth - 6

	var sb strings.Builder
	sb.WriteString(style.PanelTitle.Render("◈ Quick actions"))
	sb.WriteString(style.Hint.Render("  ↑↓ enter esc"))
	sb.WriteString("\n" + m.query.View() + "\n\n")

	if len(m.shown) == 0 {
		sb.WriteString(style.Faint.Render("No matches"))
	}

	start := 0
	if m.cursor >= paletteRows {
		start = m.cursor - paletteRows + 1
	}
	end := min(start+paletteRows, len(m.shown))
	lastCategory := ""
	for i := start; i < end; i++ {
		it := m.shown[i]
		if it.Category != lastCategory {
			if lastCategory != "" {
				sb.WriteByte('\n')
			}
			sb.WriteString(style.Faint.Render(strings.ToUpper(it.Category)) + "\n")
			lastCategory = it.Category
		}
		sb.WriteString(m.renderItem(it, i == m.cursor, inner))
		sb.WriteByte('\n')
	}
	if end < len(m.shown) {
		sb.WriteString(style.Hint.Render("…keep typing to narrow"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.TrimRight(sb.String(), "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m PaletteModel) renderItem(it PaletteItem, selected bool, width int) string {
	label := it.Name
	name := style.ItemUnselected.Render(label)
	marker := "  "
	if selected {
		marker = style.ItemSelected.Render("▸ ")
		name = style.ItemSelected.Render(label)
	}
	desc := truncate(it.Description, max(width-lipgloss.Width(label)-4, 0))
	return marker + name + "  " + style.Faint.Render(desc)
}
