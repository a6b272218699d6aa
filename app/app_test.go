package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/client"
	"github.com/maya-advisor/maya-tui/model"
	"github.com/maya-advisor/maya-tui/msg"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type fakeBackend struct {
	mu sync.Mutex

	healthErr error
	sessions  []string
	histories map[string][]client.HistoryRecord
	schemes   []client.Scheme

	send     func(ctx context.Context, text, sessionID string) (*client.AgentResponse, error)
	sent     []string
	searched []string
}

func (f *fakeBackend) Health(ctx context.Context) (*client.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &client.HealthResponse{Status: "ok"}, nil
}

func (f *fakeBackend) ListSessions(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sessions...), nil
}

func (f *fakeBackend) GetHistory(ctx context.Context, id string) ([]client.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.histories[id], nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, text, sessionID string) (*client.AgentResponse, error) {
	f.mu.Lock()
	f.sent = append(f.sent, text)
	send := f.send
	f.mu.Unlock()
	if send == nil {
		return &client.AgentResponse{Response: "Here is what I found.", Agent: "router", SessionID: "s-new"}, nil
	}
	return send(ctx, text, sessionID)
}

func (f *fakeBackend) SearchSchemes(ctx context.Context, text string) ([]client.Scheme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, text)
	return f.schemes, nil
}

func (f *fakeBackend) TestAI(ctx context.Context, text string) (string, error) {
	return "pong", nil
}

func (f *fakeBackend) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func blockUntilCancelled(ctx context.Context, _, _ string) (*client.AgentResponse, error) {
	<-ctx.Done()
	return nil, client.ErrCancelled
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sessions: []string{"s1", "s2"},
		histories: map[string][]client.HistoryRecord{
			"s1": {
				{ID: "1", Role: "user", Content: "Loans for my bakery"},
				{ID: "2", Role: "assistant", Content: "Try the MUDRA scheme.", Agent: "scheme_navigator"},
			},
			"s2": {
				{ID: "3", Role: "user", Content: "Brand ideas"},
			},
		},
	}
}

func newTestModel(t *testing.T, b Backend) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, b, Options{URL: "http://maya.test"})
}

func step(t *testing.T, m Model, in tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	out, cmd := m.Update(in)
	next, ok := out.(Model)
	if !ok {
		t.Fatalf("Update returned %T", out)
	}
	return next, cmd
}

// firstMsg runs cmd, expanding batches concurrently, and returns the first
// message of type T. Timers are left running in the background.
func firstMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	if cmd == nil {
		t.Fatalf("no command to run, want %T", zero)
	}
	out := make(chan tea.Msg, 64)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			m := c()
			if batch, ok := m.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			select {
			case out <- m:
			default:
			}
		}()
	}
	run(cmd)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-out:
			if v, ok := m.(T); ok {
				return v
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

// onlineModel is a model past the connecting screen with its directory loaded.
func onlineModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := newTestModel(t, b)
	m, cmd := step(t, m, msg.HealthResult{Status: "ok"})
	m, _ = step(t, m, firstMsg[msg.DirectoryLoaded](t, cmd))
	return m
}

func typeAndSubmit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	return step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthOK_EntersChatAndLoadsDirectory(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	if m.state != StateConnecting {
		t.Fatalf("want connecting, got %v", m.state)
	}

	m, cmd := step(t, m, msg.HealthResult{Status: "ok"})
	if m.state != StateChat {
		t.Fatalf("want chat, got %v", m.state)
	}
	if !m.banner.Online() {
		t.Error("banner should be online")
	}

	dir := firstMsg[msg.DirectoryLoaded](t, cmd)
	if dir.Err != nil {
		t.Fatalf("directory: %v", dir.Err)
	}
	if len(dir.Summaries) != 2 || dir.Summaries[0].Title != "Loans for my bakery" {
		t.Errorf("unexpected summaries %+v", dir.Summaries)
	}
	m, _ = step(t, m, dir)
	if m.sidebar.Len() != 2 {
		t.Errorf("sidebar should list 2 sessions, got %d", m.sidebar.Len())
	}
}

func TestHealthFailure_StaysConnecting(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	m, cmd := step(t, m, msg.HealthResult{Err: errors.New("connection refused")})
	if m.state != StateConnecting {
		t.Errorf("want connecting, got %v", m.state)
	}
	if m.banner.Online() {
		t.Error("banner should be offline")
	}
	if cmd == nil {
		t.Error("want a retry scheduled")
	}
}

// ---------------------------------------------------------------------------
// Sending
// ---------------------------------------------------------------------------

func TestSubmit_SendsAndReloadsDirectoryOnNewSession(t *testing.T) {
	b := newFakeBackend()
	m := onlineModel(t, b)

	m, cmd := typeAndSubmit(t, m, "Find me a loan")
	if !m.conv.IsLoading() {
		t.Fatal("want a send in flight")
	}
	if m.conv.Len() != 1 {
		t.Fatalf("user message should be shown immediately, got %d messages", m.conv.Len())
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}
	if !m.activity.Active() {
		t.Error("activity indicator should be running")
	}

	res := firstMsg[msg.SendResult](t, cmd)
	m, cmd = step(t, m, res)
	if m.conv.IsLoading() || m.activity.Active() {
		t.Error("send should be finished")
	}
	if m.conv.SessionID() != "s-new" {
		t.Errorf("want adopted session s-new, got %q", m.conv.SessionID())
	}
	if m.conv.Len() != 2 {
		t.Errorf("want user + assistant, got %d", m.conv.Len())
	}
	if got := b.sentTexts(); len(got) != 1 || got[0] != "Find me a loan" {
		t.Errorf("unexpected sends %v", got)
	}
	firstMsg[msg.DirectoryLoaded](t, cmd)
}

func TestSubmit_KeepsTextAsTyped(t *testing.T) {
	b := newFakeBackend()
	m := onlineModel(t, b)

	m, cmd := typeAndSubmit(t, m, "  loans for a bakery  ")
	msgs := m.conv.Messages()
	if len(msgs) != 1 || msgs[0].Content != "  loans for a bakery  " {
		t.Fatalf("user message should keep the typed text, got %+v", msgs)
	}
	firstMsg[msg.SendResult](t, cmd)
	if got := b.sentTexts(); len(got) != 1 || got[0] != "  loans for a bakery  " {
		t.Errorf("unexpected sends %q", got)
	}
}

func TestSubmit_BlankIsIgnored(t *testing.T) {
	m := onlineModel(t, newFakeBackend())
	m, cmd := typeAndSubmit(t, m, "   ")
	if cmd != nil || m.conv.Len() != 0 || m.conv.IsLoading() {
		t.Error("blank input must not send")
	}
}

func TestEsc_CancelsPendingReplyAndDropsLateResult(t *testing.T) {
	b := newFakeBackend()
	b.send = blockUntilCancelled
	m := onlineModel(t, b)

	m, sendCmd := typeAndSubmit(t, m, "slow question")
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.conv.IsLoading() {
		t.Fatal("esc should cancel the send")
	}
	if m.activity.Active() {
		t.Error("activity should stop on cancel")
	}

	late := firstMsg[msg.SendResult](t, sendCmd)
	m, _ = step(t, m, late)
	if m.conv.Len() != 1 {
		t.Errorf("cancelled send must not append a reply, got %d messages", m.conv.Len())
	}
}

func TestSubmit_WhileSendingIsIgnored(t *testing.T) {
	b := newFakeBackend()
	b.send = blockUntilCancelled
	m := onlineModel(t, b)

	m, _ = typeAndSubmit(t, m, "first")
	m, cmd := typeAndSubmit(t, m, "second")
	if cmd != nil {
		t.Error("second submit should not issue a request")
	}
	if m.conv.Len() != 1 {
		t.Errorf("want only the first message, got %d", m.conv.Len())
	}
}

// ---------------------------------------------------------------------------
// Navigation
// ---------------------------------------------------------------------------

func TestSelectSession_LoadsHistory(t *testing.T) {
	m := onlineModel(t, newFakeBackend())

	m, cmd := step(t, m, msg.SelectSession{ID: "s1"})
	if !m.conv.LoadingHistory() {
		t.Fatal("want history loading")
	}
	loaded := firstMsg[msg.HistoryLoaded](t, cmd)
	m, _ = step(t, m, loaded)

	if m.conv.LoadingHistory() {
		t.Error("loading flag should clear")
	}
	if m.conv.SessionID() != "s1" || m.conv.Len() != 2 {
		t.Errorf("want s1 with 2 messages, got %q with %d", m.conv.SessionID(), m.conv.Len())
	}
	if m.conv.LastAgent() != "scheme_navigator" {
		t.Errorf("unexpected agent %q", m.conv.LastAgent())
	}
}

func TestSelectSession_RefusedWhileSending(t *testing.T) {
	b := newFakeBackend()
	b.send = blockUntilCancelled
	m := onlineModel(t, b)

	m, _ = typeAndSubmit(t, m, "pending")
	m, cmd := step(t, m, msg.SelectSession{ID: "s1"})
	if cmd != nil {
		t.Error("no history fetch expected while sending")
	}
	if m.conv.LoadingHistory() {
		t.Error("history load must not start")
	}
	if !m.conv.IsLoading() {
		t.Error("pending send should be untouched")
	}
	if !m.toasts.HasToasts() {
		t.Error("want a toast explaining the refusal")
	}
}

func TestNewChatCommand_ClearsConversation(t *testing.T) {
	m := onlineModel(t, newFakeBackend())
	m, cmd := step(t, m, msg.SelectSession{ID: "s1"})
	m, _ = step(t, m, firstMsg[msg.HistoryLoaded](t, cmd))

	m, _ = typeAndSubmit(t, m, "/new")
	if m.conv.Len() != 0 || m.conv.SessionID() != "" {
		t.Errorf("want empty conversation, got %d messages in %q", m.conv.Len(), m.conv.SessionID())
	}
	if m.state != StateChat {
		t.Errorf("want chat focus, got %v", m.state)
	}
}

func TestDirectory_StaleLoadIgnored(t *testing.T) {
	m := onlineModel(t, newFakeBackend())

	m, _ = m.reloadDirectory()
	m, _ = m.reloadDirectory()
	old := msg.DirectoryLoaded{Seq: m.dirSeq - 1, Summaries: make([]chat.Summary, 5)}
	m, _ = step(t, m, old)
	if m.sidebar.Len() != 2 {
		t.Errorf("stale directory applied: %d items", m.sidebar.Len())
	}

	fresh := msg.DirectoryLoaded{Seq: m.dirSeq, Summaries: []chat.Summary{{ID: "s9", Title: "Hello"}}}
	m, _ = step(t, m, fresh)
	if m.sidebar.Len() != 1 {
		t.Errorf("want fresh directory, got %d items", m.sidebar.Len())
	}
}

// ---------------------------------------------------------------------------
// Commands and overlays
// ---------------------------------------------------------------------------

func TestSchemesCommand_SearchesDirectly(t *testing.T) {
	b := newFakeBackend()
	b.schemes = []client.Scheme{{ID: "1", Name: "MUDRA"}, {ID: "2", Name: "PMEGP"}}
	m := onlineModel(t, b)

	m, cmd := typeAndSubmit(t, m, "/schemes bakery loans")
	res := firstMsg[msg.SendResult](t, cmd)
	m, _ = step(t, m, res)

	if len(b.searched) != 1 || b.searched[0] != "bakery loans" {
		t.Errorf("unexpected searches %v", b.searched)
	}
	if len(b.sentTexts()) != 0 {
		t.Error("agent endpoint should not be called")
	}
	latest, ok := m.conv.LatestSchemeMessage()
	if !ok || len(latest.Schemes) != 2 {
		t.Fatalf("want a scheme list reply, got %+v", latest)
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.state != StateSchemes || !m.schemes.IsActive() {
		t.Errorf("ctrl+s should open the scheme browser, state %v", m.state)
	}
}

func TestSchemesCommand_RequiresQuery(t *testing.T) {
	m := onlineModel(t, newFakeBackend())
	m, cmd := typeAndSubmit(t, m, "/schemes")
	if cmd != nil || m.conv.IsLoading() {
		t.Error("empty query should not send")
	}
	if !m.toasts.HasToasts() {
		t.Error("want a usage toast")
	}
}

func TestPaletteQuickAction_FillsInput(t *testing.T) {
	m := onlineModel(t, newFakeBackend())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.state != StatePalette {
		t.Fatalf("want palette, got %v", m.state)
	}

	action := model.QuickActions[0]
	m, _ = step(t, m, model.PaletteExecuteMsg{Item: action})
	if m.state != StateChat {
		t.Errorf("want chat focus, got %v", m.state)
	}
	if m.input.Value() != action.Prompt {
		t.Errorf("want prompt %q in input, got %q", action.Prompt, m.input.Value())
	}
	if m.conv.IsLoading() {
		t.Error("quick actions must not send on their own")
	}
}

func TestTabOpensSidebarAndEnterSelects(t *testing.T) {
	m := onlineModel(t, newFakeBackend())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateSidebar {
		t.Fatalf("want sidebar, got %v", m.state)
	}
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	sel := firstMsg[msg.SelectSession](t, cmd)
	if sel.ID != "s1" {
		t.Errorf("want s1, got %q", sel.ID)
	}
}

func TestCtrlCTwiceQuits(t *testing.T) {
	m := onlineModel(t, newFakeBackend())

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.confirmQuit || cmd != nil {
		t.Fatal("first ctrl+c should ask for confirmation")
	}
	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("want quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second ctrl+c should quit")
	}
}
