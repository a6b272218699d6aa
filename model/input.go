package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maya-advisor/maya-tui/style"
)

const (
	inputPlaceholder   = "Ask MAYA about schemes, markets or branding…"
	pendingPlaceholder = "MAYA is answering… (esc to cancel)"
	inputCharLimit     = 2000
	maxInputHistory    = 100
)

// InputModel is the composer line. Up and Down recall earlier questions,
// keeping whatever was typed before browsing as a draft. Tab completes slash
// commands when the buffer starts with "/".
type InputModel struct {
	ti textinput.Model

	recall  []string
	pos     int // len(recall) while not browsing
	draft   string
	pending bool

	commands []string
	matches  []string
	match    int
}

func NewInput() InputModel {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = inputCharLimit
	return InputModel{ti: ti, match: -1}
}

// SetCommands sets the slash commands offered by Tab.
func (m *InputModel) SetCommands(cmds []string) { m.commands = cmds }

func (m *InputModel) Focus() tea.Cmd { return m.ti.Focus() }

func (m *InputModel) Blur() { m.ti.Blur() }

func (m InputModel) Value() string { return m.ti.Value() }

// Reset empties the buffer and leaves history browsing.
func (m *InputModel) Reset() {
	m.setBuffer("")
	m.pos = len(m.recall)
	m.draft = ""
}

// SetValue replaces the buffer, e.g. with a quick-action prompt.
func (m *InputModel) SetValue(text string) {
	m.setBuffer(text)
}

// SetDisabled marks a reply as pending. Typing stays possible; whether a
// submit is admitted is up to the conversation.
func (m *InputModel) SetDisabled(v bool) {
	m.pending = v
	if v {
		m.ti.Placeholder = pendingPlaceholder
	} else {
		m.ti.Placeholder = inputPlaceholder
	}
}

// Submit records text for recall and clears the buffer. A repeat of the
// previous entry is not recorded twice.
func (m *InputModel) Submit(text string) {
	if text != "" && (len(m.recall) == 0 || m.recall[len(m.recall)-1] != text) {
		m.recall = append(m.recall, text)
		if len(m.recall) > maxInputHistory {
			m.recall = m.recall[len(m.recall)-maxInputHistory:]
		}
	}
	m.Reset()
}

func (m InputModel) Update(teaMsg tea.Msg) (InputModel, tea.Cmd) {
	if k, ok := teaMsg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			m.browse(-1)
			return m, nil
		case tea.KeyDown:
			m.browse(1)
			return m, nil
		case tea.KeyTab:
			m.complete()
			return m, nil
		}
		m.matches, m.match = nil, -1
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(teaMsg)
	return m, cmd
}

func (m InputModel) View() string {
	prompt := style.PromptChar.Render("❯ ")
	if m.pending {
		prompt = style.Faint.Render("❯ ")
	}
	return prompt + m.ti.View()
}

func (m *InputModel) setBuffer(text string) {
	m.ti.SetValue(text)
	m.ti.CursorEnd()
	m.matches, m.match = nil, -1
}

// browse moves through recall by delta. Leaving the present saves the
// draft; coming back restores it.
func (m *InputModel) browse(delta int) {
	if len(m.recall) == 0 {
		return
	}
	next := min(max(m.pos+delta, 0), len(m.recall))
	if next == m.pos {
		return
	}
	if m.pos == len(m.recall) {
		m.draft = m.ti.Value()
	}
	m.pos = next
	if next == len(m.recall) {
		m.setBuffer(m.draft)
		return
	}
	m.setBuffer(m.recall[next])
}

// complete cycles through the commands matching the typed prefix.
func (m *InputModel) complete() {
	if m.matches == nil {
		prefix := m.ti.Value()
		if !strings.HasPrefix(prefix, "/") {
			return
		}
		for _, c := range m.commands {
			if strings.HasPrefix(c, prefix) {
				m.matches = append(m.matches, c)
			}
		}
		if len(m.matches) == 0 {
			m.matches = nil
			return
		}
	}
	m.match = (m.match + 1) % len(m.matches)
	matches, match := m.matches, m.match
	m.ti.SetValue(matches[match])
	m.ti.CursorEnd()
}
