package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/style"
)

// ToastLevel classifies toast severity.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastWarning
	ToastError
)

const maxToasts = 3

// ttl is how long a toast of level stays up. Errors linger.
func (l ToastLevel) ttl() time.Duration {
	switch l {
	case ToastError:
		return 8 * time.Second
	case ToastWarning:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}

func (l ToastLevel) icon() (string, lipgloss.TerminalColor) {
	switch l {
	case ToastWarning:
		return "⚠", style.Warning
	case ToastError:
		return "✘", style.Error
	default:
		return "✓", style.Success
	}
}

type toast struct {
	text    string
	level   ToastLevel
	repeats int
	until   time.Time
}

// ToastsModel is a short stack of auto-dismissing notices shown above the
// status line. A notice equal to the newest one bumps its counter instead
// of stacking, so a flapping backend shows "Lost connection (x3)".
type ToastsModel struct {
	stack []toast
	now   func() time.Time
}

func NewToasts() ToastsModel {
	return ToastsModel{now: time.Now}
}

// Add pushes a notice, dropping the oldest beyond maxToasts.
func (m *ToastsModel) Add(text string, level ToastLevel) {
	now := m.clock()
	if n := len(m.stack); n > 0 {
		top := &m.stack[n-1]
		if top.text == text && top.level == level {
			top.repeats++
			top.until = now.Add(level.ttl())
			return
		}
	}
	m.stack = append(m.stack, toast{text: text, level: level, until: now.Add(level.ttl())})
	if len(m.stack) > maxToasts {
		m.stack = append([]toast(nil), m.stack[len(m.stack)-maxToasts:]...)
	}
}

// Tick drops expired notices. It runs on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.clock()
	kept := m.stack[:0]
	for _, t := range m.stack {
		if now.Before(t.until) {
			kept = append(kept, t)
		}
	}
	m.stack = kept
}

func (m ToastsModel) HasToasts() bool { return len(m.stack) > 0 }

// View renders the notices right-aligned within width.
func (m ToastsModel) View(width int) string {
	if len(m.stack) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.stack))
	for _, t := range m.stack {
		icon, color := t.level.icon()
		text := t.text
		if t.repeats > 0 {
			text += style.Faint.Render(" (x" + strconv.Itoa(t.repeats+1) + ")")
		}
		line := lipgloss.NewStyle().Foreground(color).Render(icon+" ") + text
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, truncate(line, width)))
	}
	return strings.Join(lines, "\n")
}

func (m ToastsModel) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
