package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/config"
	"github.com/maya-advisor/maya-tui/model"
	"github.com/maya-advisor/maya-tui/observability"
	"github.com/maya-advisor/maya-tui/style"
)

type command struct {
	name string // includes the leading slash
	args string // shown in help, "" when the command takes none
	desc string
}

var commands = []command{
	{"/new", "", "Start a new chat"},
	{"/sessions", "", "Reload saved chats"},
	{"/session", "", "Show the current session id"},
	{"/schemes", "<query>", "Search government schemes directly"},
	{"/ask", "<question>", "Ask the model directly, without the agents"},
	{"/theme", "<name>", "Switch theme (" + strings.Join(style.ThemeNames, ", ") + ")"},
	{"/help", "", "Show this help"},
	{"/quit", "", "Exit MAYA"},
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func paletteItems() []model.PaletteItem {
	items := append([]model.PaletteItem(nil), model.QuickActions...)
	for _, c := range commands {
		cmd := c.name
		if c.args != "" {
			cmd += " "
		}
		items = append(items, model.PaletteItem{
			Name:        c.name,
			Description: c.desc,
			Category:    "command",
			Command:     cmd,
		})
	}
	return items
}

// handlePalette fills the input with a quick-action prompt or an argument
// command, and runs argument-free commands immediately.
func (m Model) handlePalette(item model.PaletteItem) (Model, tea.Cmd) {
	m, focus := m.focusChat()
	switch {
	case item.Prompt != "":
		m.input.SetValue(item.Prompt)
		return m, focus
	case strings.HasSuffix(item.Command, " "):
		m.input.SetValue(item.Command)
		return m, focus
	case item.Command != "":
		var cmd tea.Cmd
		m, cmd = m.runCommand(item.Command)
		return m, tea.Batch(focus, cmd)
	}
	return m, focus
}

func (m Model) runCommand(text string) (Model, tea.Cmd) {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	observability.Logger().Debug("command", "name", name)

	switch name {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/new":
		return m.newChat()
	case "/sessions":
		return m.reloadDirectory()
	case "/session":
		id := m.conv.SessionID()
		if id == "" {
			m.chat.SetNotice("No session yet. One is created with your first message.")
		} else {
			m.chat.SetNotice("Current session: " + id)
		}
		return m, nil
	case "/schemes":
		if arg == "" {
			m.toasts.Add("Usage: /schemes <query>", model.ToastWarning)
			return m, nil
		}
		return m.send(chat.RouteSchemes, arg, text)
	case "/ask":
		if arg == "" {
			m.toasts.Add("Usage: /ask <question>", model.ToastWarning)
			return m, nil
		}
		return m.send(chat.RouteDirect, arg, text)
	case "/theme":
		return m.setTheme(arg)
	case "/help":
		m.chat.SetNotice(helpText())
		return m, nil
	}
	m.toasts.Add(fmt.Sprintf("Unknown command %s", name), model.ToastWarning)
	return m, nil
}

func (m Model) setTheme(name string) (Model, tea.Cmd) {
	if name == "" {
		m.chat.SetNotice(fmt.Sprintf("Theme: %s (available: %s)", style.CurrentThemeName, strings.Join(style.ThemeNames, ", ")))
		return m, nil
	}
	if !style.SetTheme(name) {
		m.toasts.Add("Unknown theme "+name, model.ToastWarning)
		return m, nil
	}
	if m.profileDir != "" {
		cfg := config.Load(m.profileDir)
		cfg.Theme = name
		if err := config.Save(m.profileDir, cfg); err != nil {
			observability.Logger().Warn("save theme", "error", err)
		}
	}
	m.chat.Refresh()
	m.toasts.Add("Theme set to "+name, model.ToastInfo)
	return m, nil
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range commands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(&b, "  %-22s %s\n", usage, c.desc)
	}
	b.WriteString(`
Keybindings:
  Enter        Send message
  Esc          Cancel the pending reply / clear input
  Ctrl+C       Cancel / quit
  Ctrl+N       New chat
  Tab          Saved chats (autocomplete after /)
  Ctrl+S       Browse schemes from the latest reply
  Ctrl+P       Quick actions
  F1           Show this help
  PgUp/PgDn    Scroll chat history
  Up/Down      Navigate input history`)
	return b.String()
}
