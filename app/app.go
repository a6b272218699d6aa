package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/client"
	"github.com/maya-advisor/maya-tui/model"
	"github.com/maya-advisor/maya-tui/msg"
	"github.com/maya-advisor/maya-tui/observability"
	"github.com/maya-advisor/maya-tui/style"
)

const (
	healthTimeout     = 5 * time.Second
	healthRetryDelay  = 5 * time.Second
	healthRecheck     = 30 * time.Second
	tickInterval      = time.Second
	sidebarMinWidth   = 100
	minMainWidth      = 40
	reservedChatLines = 3 // banner, status, input
)

// Backend is everything the app needs from the MAYA API.
type Backend interface {
	chat.Backend
	Health(ctx context.Context) (*client.HealthResponse, error)
}

var _ Backend = (*client.Client)(nil)

// Options configure a Model.
type Options struct {
	URL        string
	ProfileDir string
}

type Model struct {
	banner   model.BannerModel
	chat     model.ChatModel
	input    model.InputModel
	activity model.ActivityModel
	status   model.StatusModel
	sidebar  model.SidebarModel
	schemes  model.SchemesModel
	palette  model.PaletteModel
	toasts   model.ToastsModel

	conv    *chat.Conversation
	backend Backend
	ctx     context.Context

	state       State
	profileDir  string
	dirSeq      uint64
	width       int
	height      int
	keys        KeyMap
	confirmQuit bool
}

// New builds the root model. Cancelling ctx aborts every request it issues.
func New(ctx context.Context, b Backend, opts Options) Model {
	input := model.NewInput()
	input.SetCommands(commandNames())
	m := Model{
		banner:     model.NewBanner(opts.URL),
		chat:       model.NewChat(80, 20),
		input:      input,
		activity:   model.NewActivity(),
		status:     model.NewStatus(),
		sidebar:    model.NewSidebar(),
		schemes:    model.NewSchemes(),
		palette:    model.NewPalette(),
		toasts:     model.NewToasts(),
		conv:       chat.NewConversation(ctx),
		backend:    b,
		ctx:        ctx,
		state:      StateConnecting,
		profileDir: opts.ProfileDir,
		keys:       DefaultKeyMap(),
		width:      80,
		height:     24,
	}
	m.relayout()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkHealth(), tickCmd(), tea.WindowSize())
}

// Update routes every message and then recomputes the layout, since most
// messages change the height of some section.
func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(rawMsg)
	m.relayout()
	return m, cmd
}

func (m Model) update(rawMsg tea.Msg) (Model, tea.Cmd) {
	switch v := rawMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(v)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(v)
		return m, cmd

	case msg.HealthResult:
		return m.handleHealth(v)
	case msg.HealthRetry:
		return m, m.checkHealth()
	case msg.SendResult:
		return m.handleSendResult(v)
	case msg.HistoryLoaded:
		return m.handleHistory(v)
	case msg.DirectoryLoaded:
		return m.handleDirectory(v)
	case msg.SelectSession:
		return m.selectSession(v.ID)
	case msg.NewChat:
		return m.newChat()
	case msg.NarratorTick:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(v)
		return m, cmd
	case msg.TickMsg:
		m.toasts.Tick()
		return m, tickCmd()

	case model.SidebarBlur:
		return m.focusChat()
	case model.SchemesClosed:
		return m.focusChat()
	case model.PaletteDismissMsg:
		return m.focusChat()
	case model.PaletteExecuteMsg:
		return m.handlePalette(v.Item)
	}

	// Spinner ticks and anything else the indicator understands.
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(rawMsg)
	return m, cmd
}

func (m Model) View() string {
	if m.state == StatePalette {
		return m.palette.View()
	}

	var sections []string
	sections = append(sections, m.banner.View())
	switch m.state {
	case StateConnecting:
		sections = append(sections, m.renderConnecting())
	case StateSchemes:
		sections = append(sections, m.schemes.View())
	default:
		sections = append(sections, m.chat.View())
	}
	if v := m.activity.View(); v != "" {
		sections = append(sections, v)
	}
	if m.toasts.HasToasts() {
		sections = append(sections, m.toasts.View(m.mainWidth()))
	}
	sections = append(sections, m.status.View())
	sections = append(sections, m.input.View())
	if m.confirmQuit {
		sections = append(sections, style.Hint.Render("  Press Ctrl+C again to quit, or any key to cancel."))
	}
	main := strings.Join(sections, "\n")

	if !m.sidebarVisible() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
}

// -- Keys --

func (m Model) handleKey(k tea.KeyMsg) (Model, tea.Cmd) {
	if m.confirmQuit {
		if key.Matches(k, m.keys.Cancel) {
			return m, tea.Quit
		}
		m.confirmQuit = false
		return m, nil
	}

	// A pending reply can be cancelled from any surface.
	if m.conv.IsLoading() && (key.Matches(k, m.keys.Cancel) || (key.Matches(k, m.keys.Escape) && m.state == StateChat)) {
		return m.cancelSend(), nil
	}

	switch m.state {
	case StateConnecting:
		if key.Matches(k, m.keys.Cancel) || key.Matches(k, m.keys.QuitEOF) {
			return m, tea.Quit
		}
		return m, nil
	case StateSidebar:
		if key.Matches(k, m.keys.NewChat) {
			return m.newChat()
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(k)
		return m, cmd
	case StateSchemes:
		var cmd tea.Cmd
		m.schemes, cmd = m.schemes.Update(k)
		return m, cmd
	case StatePalette:
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(k)
		return m, cmd
	}
	return m.handleChatKey(k)
}

func (m Model) handleChatKey(k tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Escape):
		m.chat.SetNotice("")
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.Cancel):
		if m.input.Value() == "" {
			m.confirmQuit = true
			return m, nil
		}
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			return m, tea.Quit
		}
	case key.Matches(k, m.keys.Submit):
		text := m.input.Value()
		if strings.TrimSpace(text) == "" || m.conv.IsLoading() {
			return m, nil
		}
		return m.submit(text)
	case key.Matches(k, m.keys.NewChat):
		return m.newChat()
	case key.Matches(k, m.keys.Sidebar):
		if strings.HasPrefix(m.input.Value(), "/") {
			break // autocomplete
		}
		return m.focusSidebar()
	case key.Matches(k, m.keys.Schemes):
		return m.openSchemes()
	case key.Matches(k, m.keys.Palette):
		m.state = StatePalette
		m.input.Blur()
		return m, m.palette.Open(paletteItems(), m.width, m.height)
	case key.Matches(k, m.keys.Help):
		m.chat.SetNotice(helpText())
		return m, nil
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(k)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

// -- Focus --

func (m Model) focusChat() (Model, tea.Cmd) {
	m.state = StateChat
	m.sidebar.Blur()
	return m, m.input.Focus()
}

func (m Model) focusSidebar() (Model, tea.Cmd) {
	m.state = StateSidebar
	m.input.Blur()
	m.sidebar.Focus()
	return m, nil
}

func (m Model) openSchemes() (Model, tea.Cmd) {
	latest, ok := m.conv.LatestSchemeMessage()
	if !ok {
		m.toasts.Add("No schemes in this chat yet", model.ToastInfo)
		return m, nil
	}
	m.schemes.Open(latest.Schemes)
	m.state = StateSchemes
	m.input.Blur()
	return m, nil
}

// -- Conversation --

// submit dispatches text as typed. Only slash commands are trimmed.
func (m Model) submit(text string) (Model, tea.Cmd) {
	if cmd := strings.TrimSpace(text); strings.HasPrefix(cmd, "/") {
		m.input.Submit(cmd)
		return m.runCommand(cmd)
	}
	return m.send(chat.RouteAgent, text, text)
}

// send admits text on route. raw is what goes into input history.
func (m Model) send(route chat.Route, text, raw string) (Model, tea.Cmd) {
	req, ok := m.conv.BeginSendVia(route, text)
	if !ok {
		if m.conv.LoadingHistory() {
			m.toasts.Add("Still loading that chat", model.ToastWarning)
		}
		return m, nil
	}
	if raw != "" && !strings.HasPrefix(raw, "/") {
		m.input.Submit(raw)
	}
	m.input.SetDisabled(true)
	m.chat.SetNotice("")
	m.syncConversation()
	return m, tea.Batch(m.sendCmd(req), m.activity.Start(text))
}

func (m Model) cancelSend() Model {
	if m.conv.Cancel() {
		m.activity.Stop()
		m.input.SetDisabled(false)
		m.toasts.Add("Request cancelled", model.ToastInfo)
		m.syncConversation()
	}
	return m
}

func (m Model) handleSendResult(r msg.SendResult) (Model, tea.Cmd) {
	out := m.conv.Complete(r.Result)
	if out.Status == chat.StatusStale {
		return m, nil
	}
	m.activity.Stop()
	m.input.SetDisabled(false)
	m.syncConversation()

	switch out.Status {
	case chat.StatusFailed:
		m.toasts.Add("MAYA could not answer", model.ToastError)
	case chat.StatusCancelled:
		m.toasts.Add("Request cancelled", model.ToastInfo)
	}
	if out.ReloadDirectory {
		return m.reloadDirectory()
	}
	return m, nil
}

func (m Model) newChat() (Model, tea.Cmd) {
	m.conv.NewChat()
	m.activity.Stop()
	m.input.SetDisabled(false)
	m.chat.SetLoadingHistory(false)
	m.chat.SetNotice("")
	m.syncConversation()
	return m.focusChat()
}

func (m Model) selectSession(id string) (Model, tea.Cmd) {
	sel, err := m.conv.BeginSelect(id)
	if errors.Is(err, chat.ErrBusy) {
		m.toasts.Add("Wait for the current reply (esc cancels)", model.ToastWarning)
		return m, nil
	}
	if err != nil {
		m.toasts.Add(err.Error(), model.ToastError)
		return m, nil
	}
	m.chat.SetNotice("")
	m.chat.SetLoadingHistory(true)
	m.syncConversation()
	m.state = StateChat
	m.sidebar.Blur()
	return m, tea.Batch(m.historyCmd(sel), m.input.Focus())
}

func (m Model) handleHistory(h msg.HistoryLoaded) (Model, tea.Cmd) {
	err := m.conv.ApplyHistory(h.Req, h.Records, h.Err)
	if errors.Is(err, chat.ErrStale) {
		return m, nil
	}
	m.chat.SetLoadingHistory(false)
	if err != nil {
		m.toasts.Add("Could not open that chat", model.ToastError)
	}
	m.syncConversation()
	return m, nil
}

func (m Model) reloadDirectory() (Model, tea.Cmd) {
	m.dirSeq++
	m.sidebar.SetLoading()
	return m, m.directoryCmd(m.dirSeq)
}

func (m Model) handleDirectory(d msg.DirectoryLoaded) (Model, tea.Cmd) {
	if d.Seq != m.dirSeq {
		return m, nil
	}
	m.sidebar.SetDirectory(d.Summaries, d.Err)
	if d.Err != nil {
		observability.Logger().Warn("directory load failed", "error", d.Err)
		m.toasts.Add("Could not load saved chats", model.ToastWarning)
	}
	return m, nil
}

// syncConversation pushes controller state into the views.
func (m *Model) syncConversation() {
	m.chat.SetMessages(m.conv.Messages())
	m.status.Sync(m.conv)
	m.sidebar.SetActive(m.conv.SessionID())
}

// -- Health --

func (m Model) handleHealth(h msg.HealthResult) (Model, tea.Cmd) {
	wasOnline := m.banner.Online()
	m.banner.SetHealth(h)
	log := observability.Logger()

	if h.Err != nil {
		if wasOnline {
			log.Warn("backend offline", "error", h.Err)
			m.toasts.Add("Lost connection to MAYA", model.ToastWarning)
		}
		return m, tea.Tick(healthRetryDelay, func(time.Time) tea.Msg { return msg.HealthRetry{} })
	}

	recheck := tea.Tick(healthRecheck, func(time.Time) tea.Msg { return msg.HealthRetry{} })
	if wasOnline {
		return m, recheck
	}
	log.Info("backend online", "status", h.Status)

	if m.state == StateConnecting {
		m.state = StateChat
		m.syncConversation()
		var dir tea.Cmd
		m, dir = m.reloadDirectory()
		return m, tea.Batch(dir, m.input.Focus(), recheck)
	}
	m.toasts.Add("Reconnected", model.ToastInfo)
	return m, recheck
}

// -- Commands --

func (m Model) checkHealth() tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		resp, err := b.Health(ctx)
		if err != nil {
			return msg.HealthResult{Err: err}
		}
		return msg.HealthResult{Status: resp.Status, Message: resp.Message}
	}
}

func (m Model) sendCmd(req *chat.Request) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		return msg.SendResult{Result: req.Do(b)}
	}
}

func (m Model) historyCmd(sel chat.SelectRequest) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		records, err := b.GetHistory(ctx, sel.SessionID)
		return msg.HistoryLoaded{Req: sel, Records: records, Err: err}
	}
}

func (m Model) directoryCmd(seq uint64) tea.Cmd {
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		summaries, err := chat.LoadDirectory(ctx, b)
		return msg.DirectoryLoaded{Seq: seq, Summaries: summaries, Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return msg.TickMsg{} })
}

// -- Layout --

func (m Model) sidebarVisible() bool {
	if m.state == StateConnecting {
		return false
	}
	return m.state == StateSidebar || m.width >= sidebarMinWidth
}

func (m Model) mainWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= model.SidebarWidth
	}
	if w < minMainWidth {
		w = minMainWidth
	}
	return w
}

func (m Model) chatHeight() int {
	h := m.height - reservedChatLines
	if v := m.activity.View(); v != "" {
		h -= lipgloss.Height(v)
	}
	if m.toasts.HasToasts() {
		h -= lipgloss.Height(m.toasts.View(m.mainWidth()))
	}
	if m.confirmQuit {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) relayout() {
	w, h := m.mainWidth(), m.chatHeight()
	m.chat.SetSize(w, h)
	m.schemes.SetSize(w, h)
	m.status.SetWidth(w)
	m.sidebar.SetHeight(m.height)
}

func (m Model) renderConnecting() string {
	lines := []string{
		"",
		style.Faint.Render("  Connecting to the MAYA backend…"),
		style.Hint.Render("  Retrying every 5s. Ctrl+C to quit."),
	}
	body := strings.Join(lines, "\n")
	pad := m.chatHeight() - lipgloss.Height(body)
	if pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body
}
