package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/client"
	"github.com/maya-advisor/maya-tui/markdown"
	"github.com/maya-advisor/maya-tui/style"
)

// maxInlineSchemes is how many scheme cards a reply shows before pointing at
// the scheme browser.
const maxInlineSchemes = 3

// Welcome is the placeholder shown for an empty conversation. It is a view
// concern only and never part of the transcript.
const Welcome = "Hello! I'm MAYA, your business advisor. Ask me about government schemes, market research, or branding for your business."

// ChatModel is a scrollable viewport that displays the transcript.
type ChatModel struct {
	vp       viewport.Model
	messages []chat.Message
	notice   string
	loading  bool
	width    int
	height   int
}

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) ChatModel {
	vp := viewport.New(width, height)
	m := ChatModel{vp: vp, width: width, height: height}
	m.refresh()
	return m
}

// Refresh re-renders the transcript, e.g. after a theme change.
func (m *ChatModel) Refresh() {
	m.refresh()
}

// SetMessages replaces the rendered transcript and scrolls to the bottom.
func (m *ChatModel) SetMessages(msgs []chat.Message) {
	m.messages = msgs
	m.refresh()
}

// SetNotice shows a transient system block under the transcript, e.g. help
// text. It is never part of the conversation. An empty string clears it.
func (m *ChatModel) SetNotice(text string) {
	m.notice = text
	m.refresh()
}

// SetLoadingHistory toggles the "loading session" placeholder.
func (m *ChatModel) SetLoadingHistory(v bool) {
	if m.loading == v {
		return
	}
	m.loading = v
	m.refresh()
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

// Len returns the number of rendered messages.
func (m ChatModel) Len() int { return len(m.messages) }

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update forwards keyboard and mouse events to the viewport.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

func (m *ChatModel) refresh() {
	m.vp.SetContent(m.renderAll())
	m.vp.GotoBottom()
}

func (m *ChatModel) renderAll() string {
	if m.loading {
		return style.Faint.Render("  Loading conversation…")
	}

	var sb strings.Builder
	if len(m.messages) == 0 {
		sb.WriteString(renderWelcome(m.width))
	}
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(renderMessage(msg, m.width))
	}
	if m.notice != "" {
		sb.WriteString("\n\n")
		sb.WriteString(style.Faint.Render(m.notice))
	}
	return sb.String()
}

func renderWelcome(width int) string {
	var sb strings.Builder
	sb.WriteString(style.WelcomeTitle.Render("◈ MAYA"))
	sb.WriteByte('\n')
	sb.WriteString(wrap(Welcome, width))
	sb.WriteString("\n\n")
	sb.WriteString(style.WelcomeTip.Render("ctrl+p quick actions · tab sessions · /help commands"))
	return sb.String()
}

// renderMessage converts a single transcript message to a display string.
func renderMessage(msg chat.Message, width int) string {
	ts := ""
	if !msg.Timestamp.IsZero() {
		ts = style.MsgMeta.Render(" " + msg.Timestamp.Local().Format("15:04"))
	}

	if msg.Role == chat.RoleUser {
		body := style.MsgUser.Render(wrap(msg.Content, contentWidth(width)-2))
		return style.UserLabel.Render("❯ You") + ts + "\n" + body
	}

	label := style.AgentLabel.Render("◈ MAYA")
	if msg.Agent != "" {
		label += style.AgentBadge.Render(" [" + agentLabel(msg.Agent) + "]")
	}
	gutter := style.MsgAgent
	if msg.Agent == "" && msg.Content == chat.Apology {
		gutter = style.MsgError
	}
	body := markdown.Render(msg.Content, style.GlamourStyle(), contentWidth(width)-2)
	out := label + ts + "\n" + gutter.Render(body)
	if msg.HasSchemes() {
		out += "\n" + renderSchemeCards(msg.Schemes, width)
	}
	return out
}

// agentLabel turns a backend agent id such as "scheme_navigator" into
// "Scheme Navigator".
func agentLabel(agent string) string {
	words := strings.FieldsFunc(agent, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func renderSchemeCards(schemes []client.Scheme, width int) string {
	n := len(schemes)
	shown := schemes
	if n > maxInlineSchemes {
		shown = schemes[:maxInlineSchemes]
	}
	cards := make([]string, 0, len(shown)+1)
	for _, s := range shown {
		cards = append(cards, style.Card.Width(cardWidth(width)).Render(schemeCardBody(s, cardWidth(width)-2)))
	}
	if n > maxInlineSchemes {
		cards = append(cards, style.Hint.Render(fmt.Sprintf("  +%d more (ctrl+s to browse schemes)", n-maxInlineSchemes)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func schemeCardBody(s client.Scheme, width int) string {
	var sb strings.Builder
	sb.WriteString(style.CardTitle.Render(s.Name))
	if s.Category != "" {
		sb.WriteString(style.CardCategory.Render("  " + s.Category))
	}
	if s.RelevanceScore != nil {
		sb.WriteString("\n")
		sb.WriteString(style.ScoreBar(*s.RelevanceScore, 10))
		sb.WriteString(style.CardScore.Render(fmt.Sprintf(" %d%% match", int(math.Round(style.ScorePercent(*s.RelevanceScore))))))
	}
	if s.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(wrap(s.Description, width))
	}
	benefits := s.Benefits
	if len(benefits) > 2 {
		benefits = benefits[:2]
	}
	for _, b := range benefits {
		sb.WriteString("\n")
		sb.WriteString(style.CardBenefit.Render(wrap("• "+b, width)))
	}
	if extra := len(s.Benefits) - len(benefits); extra > 0 {
		sb.WriteString("\n")
		sb.WriteString(style.Faint.Render(fmt.Sprintf("+%d more benefits", extra)))
	}
	if s.Link != "" {
		sb.WriteString("\n")
		sb.WriteString(style.CardLink.Render(truncate(s.Link, width)))
	}
	return sb.String()
}

func contentWidth(width int) int {
	if width <= 4 {
		return markdown.DefaultWidth
	}
	return width - 2
}

func cardWidth(width int) int {
	w := width - 4
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}
