package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/msg"
	"github.com/maya-advisor/maya-tui/style"
)

// ActivityModel renders the spinner, the narrator's current phase and the
// elapsed time while a reply is pending. The narrator itself lives here so
// its ticks are routed with the rest of the indicator state.
type ActivityModel struct {
	sp        spinner.Model
	narrator  chat.Narrator
	startTime time.Time
}

// NewActivity constructs an ActivityModel with a Dot spinner.
func NewActivity() ActivityModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return ActivityModel{sp: sp, narrator: chat.NewNarrator()}
}

// Start activates the indicator for query and returns the commands that
// drive it: the spinner and the first narrator tick.
func (m *ActivityModel) Start(query string) tea.Cmd {
	m.startTime = time.Now()
	gen, delay := m.narrator.Start(query)
	return tea.Batch(m.sp.Tick, narratorTick(gen, delay))
}

// Stop hides the indicator and invalidates pending narrator ticks.
func (m *ActivityModel) Stop() {
	m.narrator.Stop()
	m.startTime = time.Time{}
}

// Active reports whether the indicator is showing.
func (m ActivityModel) Active() bool { return m.narrator.Active() }

// Phase returns the phase currently shown.
func (m ActivityModel) Phase() chat.Phase { return m.narrator.Phase() }

// Update handles spinner and narrator ticks.
func (m ActivityModel) Update(teaMsg tea.Msg) (ActivityModel, tea.Cmd) {
	switch v := teaMsg.(type) {
	case spinner.TickMsg:
		if !m.narrator.Active() {
			return m, nil
		}
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(v)
		return m, cmd

	case msg.NarratorTick:
		next, ok := m.narrator.Advance(v.Gen)
		if !ok || next == 0 {
			return m, nil
		}
		return m, narratorTick(v.Gen, next)
	}
	return m, nil
}

// View renders the activity line. Returns "" when inactive.
//
//	⠋ Searching government schemes… (4s · esc to cancel)
func (m ActivityModel) View() string {
	if !m.narrator.Active() {
		return ""
	}
	phase := m.narrator.Phase()

	var sb strings.Builder
	sb.WriteString(style.SpinnerStyle.Render(m.sp.View()))
	sb.WriteByte(' ')
	sb.WriteString(phaseStyle(phase.Mode).Render(phase.Label))
	sb.WriteString(style.Hint.Render(fmt.Sprintf(" (%s · esc to cancel)", formatElapsed(time.Since(m.startTime)))))
	return sb.String()
}

func phaseStyle(mode chat.Mode) lipgloss.Style {
	switch mode {
	case chat.ModeWebSearch:
		return style.PhaseWeb
	case chat.ModeDBSearch:
		return style.PhaseDB
	case chat.ModeAgentActive:
		return style.PhaseAgent
	default:
		return style.PhaseLabel
	}
}

func narratorTick(gen uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg.NarratorTick{Gen: gen}
	})
}

// formatElapsed renders a duration as a concise string.
// Examples: 3s, 1m 23s
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
