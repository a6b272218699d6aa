package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/maya-advisor/maya-tui/client"
)

// fakeBackend is an in-memory Backend. Unset hooks answer with empty data.
type fakeBackend struct {
	mu sync.Mutex

	sessions    []string
	sessionsErr error
	histories   map[string][]client.HistoryRecord
	historyErrs map[string]error
	historyHits map[string]int

	send    func(ctx context.Context, text, sessionID string) (*client.AgentResponse, error)
	sent    []sentCall
	schemes []client.Scheme
	direct  string
}

type sentCall struct {
	Text      string
	SessionID string
}

func (f *fakeBackend) ListSessions(ctx context.Context) ([]string, error) {
	return f.sessions, f.sessionsErr
}

func (f *fakeBackend) GetHistory(ctx context.Context, id string) ([]client.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyHits == nil {
		f.historyHits = map[string]int{}
	}
	f.historyHits[id]++
	if err := f.historyErrs[id]; err != nil {
		return nil, err
	}
	return f.histories[id], nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, text, sessionID string) (*client.AgentResponse, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sentCall{Text: text, SessionID: sessionID})
	send := f.send
	f.mu.Unlock()
	if send == nil {
		return &client.AgentResponse{Response: "ok", Agent: "router"}, nil
	}
	return send(ctx, text, sessionID)
}

func (f *fakeBackend) SearchSchemes(ctx context.Context, text string) ([]client.Scheme, error) {
	return f.schemes, nil
}

func (f *fakeBackend) TestAI(ctx context.Context, text string) (string, error) {
	return f.direct, nil
}

// blockUntilCancelled is a send hook that only returns once ctx is done.
func blockUntilCancelled(ctx context.Context, _, _ string) (*client.AgentResponse, error) {
	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, client.ErrCancelled
	}
	return nil, ctx.Err()
}

func reply(text, agent, sessionID string, schemes ...client.Scheme) func(context.Context, string, string) (*client.AgentResponse, error) {
	return func(context.Context, string, string) (*client.AgentResponse, error) {
		out := schemes
		if out == nil {
			out = []client.Scheme{}
		}
		return &client.AgentResponse{Response: text, Agent: agent, SessionID: sessionID, Schemes: out}, nil
	}
}
