package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maya-advisor/maya-tui/client"
	"github.com/maya-advisor/maya-tui/observability"
)

// State is the send lifecycle of a conversation.
type State int

const (
	StateIdle    State = iota // no send in flight
	StateSending              // exactly one send in flight, handle held
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned when history navigation is attempted while a send
	// is in flight.
	ErrBusy = errors.New("conversation is busy")
	// ErrStale marks a result that belongs to a superseded request.
	ErrStale = errors.New("stale result")
)

// Apology is shown when a send fails without a backend detail message.
const Apology = "Sorry, I ran into a problem while answering that. Please try again in a moment."

// Route selects which endpoint a send goes to.
type Route int

const (
	RouteAgent   Route = iota // POST /api/chat/agent
	RouteSchemes              // POST /api/chat/schemes
	RouteDirect               // POST /api/test-ai
)

// handle is the cancellation handle of the single in-flight send.
type handle struct {
	id     uint64
	cancel context.CancelFunc
}

// Request is an admitted send. Do performs the network call and is safe to
// run off the UI goroutine.
type Request struct {
	ID        uint64
	Text      string
	SessionID string
	Route     Route

	ctx context.Context
}

// Context returns the request's cancellation context.
func (r *Request) Context() context.Context { return r.ctx }

// Result is what a finished Request hands back to Complete.
type Result struct {
	RequestID uint64
	Response  *client.AgentResponse
	Err       error
}

// Do runs the request against b and packages the outcome.
func (r *Request) Do(b Backend) Result {
	res := Result{RequestID: r.ID}
	switch r.Route {
	case RouteSchemes:
		schemes, err := b.SearchSchemes(r.ctx, r.Text)
		if err != nil {
			res.Err = err
			return res
		}
		res.Response = &client.AgentResponse{
			Response: schemeSearchSummary(len(schemes)),
			Agent:    "scheme_search",
			Schemes:  schemes,
		}
	case RouteDirect:
		out, err := b.TestAI(r.ctx, r.Text)
		if err != nil {
			res.Err = err
			return res
		}
		res.Response = &client.AgentResponse{Response: out, Agent: "direct"}
	default:
		res.Response, res.Err = b.SendMessage(r.ctx, r.Text, r.SessionID)
	}
	// A call that raced with cancellation is reported as cancelled even if
	// the transport managed to finish.
	if res.Err == nil && errors.Is(r.ctx.Err(), context.Canceled) {
		res.Response, res.Err = nil, client.ErrCancelled
	}
	return res
}

func schemeSearchSummary(n int) string {
	switch n {
	case 0:
		return "I couldn't find any schemes matching that search."
	case 1:
		return "I found 1 scheme that matches your search."
	default:
		return fmt.Sprintf("I found %d schemes that match your search.", n)
	}
}

// Status classifies how Complete resolved a result.
type Status int

const (
	StatusAnswered  Status = iota // assistant reply appended
	StatusFailed                  // apology appended
	StatusCancelled               // nothing appended
	StatusStale                   // result ignored
)

// Outcome reports the effect of Complete.
type Outcome struct {
	Status          Status
	Message         *Message
	ReloadDirectory bool
	Err             error
}

// SelectRequest is an admitted history navigation.
type SelectRequest struct {
	Seq       uint64
	SessionID string
}

// Conversation is the controller for the active chat. It is not safe for
// concurrent use: every method is meant to be called from the UI loop,
// while Request.Do runs elsewhere and reports back through Complete.
type Conversation struct {
	base      context.Context
	messages  []Message
	sessionID string
	inflight  *handle
	nextID    uint64

	selectSeq      uint64
	loadingHistory bool
}

// NewConversation returns an empty, idle conversation. Cancelling ctx
// cancels any send it admits.
func NewConversation(ctx context.Context) *Conversation {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Conversation{base: ctx}
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int { return len(c.messages) }

// SessionID returns the active session id, or "" before the backend has
// assigned one.
func (c *Conversation) SessionID() string { return c.sessionID }

func (c *Conversation) State() State {
	if c.inflight != nil {
		return StateSending
	}
	return StateIdle
}

// IsLoading reports whether a send is in flight.
func (c *Conversation) IsLoading() bool { return c.inflight != nil }

// LoadingHistory reports whether a session's history is being fetched.
func (c *Conversation) LoadingHistory() bool { return c.loadingHistory }

// LastAgent returns the agent label of the most recent assistant reply.
func (c *Conversation) LastAgent() string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant && c.messages[i].Agent != "" {
			return c.messages[i].Agent
		}
	}
	return ""
}

// LatestSchemeMessage returns the newest message carrying scheme cards.
func (c *Conversation) LatestSchemeMessage() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].HasSchemes() {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// BeginSend admits a send to the agent router. See BeginSendVia.
func (c *Conversation) BeginSend(text string) (*Request, bool) {
	return c.BeginSendVia(RouteAgent, text)
}

// BeginSendVia appends the user message optimistically, as typed, and
// returns the request to run. It admits nothing for blank text, while a send is in
// flight, or while a history load is pending.
func (c *Conversation) BeginSendVia(route Route, text string) (*Request, bool) {
	if strings.TrimSpace(text) == "" || c.inflight != nil || c.loadingHistory {
		return nil, false
	}

	c.messages = append(c.messages, newUserMessage(text))

	c.nextID++
	ctx, cancel := context.WithCancel(c.base)
	c.inflight = &handle{id: c.nextID, cancel: cancel}

	return &Request{
		ID:        c.nextID,
		Text:      text,
		SessionID: c.sessionID,
		Route:     route,
		ctx:       ctx,
	}, true
}

// Complete applies the result of an admitted request. Results for requests
// that were cancelled or superseded are ignored.
func (c *Conversation) Complete(res Result) Outcome {
	if c.inflight == nil || c.inflight.id != res.RequestID {
		return Outcome{Status: StatusStale, Err: ErrStale}
	}
	c.release()

	log := observability.WithFields("request_id", res.RequestID, "session_id", c.sessionID)

	switch {
	case res.Err != nil && client.IsCancelled(res.Err):
		log.Info("send cancelled")
		return Outcome{Status: StatusCancelled, Err: res.Err}

	case res.Err != nil:
		log.Error("send failed", "error", res.Err)
		content := Apology
		if detail, ok := client.Detail(res.Err); ok {
			content = detail
		}
		msg := newAssistantMessage(content, "", nil)
		c.messages = append(c.messages, msg)
		return Outcome{Status: StatusFailed, Message: &msg, Err: res.Err}

	case res.Response == nil:
		msg := newAssistantMessage(Apology, "", nil)
		c.messages = append(c.messages, msg)
		return Outcome{Status: StatusFailed, Message: &msg, Err: errors.New("empty response")}
	}

	r := res.Response
	content := r.Response
	if content == "" && len(r.Schemes) == 0 {
		content = "(no response)"
	}
	msg := newAssistantMessage(content, r.Agent, r.Schemes)
	c.messages = append(c.messages, msg)

	out := Outcome{Status: StatusAnswered, Message: &msg}
	if r.SessionID != "" && r.SessionID != c.sessionID {
		log.Info("session adopted", "new_session_id", r.SessionID)
		c.sessionID = r.SessionID
		out.ReloadDirectory = true
	}
	return out
}

// Cancel aborts the in-flight send. Nothing is appended for it. It reports
// whether there was anything to cancel.
func (c *Conversation) Cancel() bool {
	if c.inflight == nil {
		return false
	}
	observability.Logger().Info("send cancel requested", "request_id", c.inflight.id)
	c.release()
	return true
}

// NewChat cancels any in-flight send or history load and clears the
// transcript and session id.
func (c *Conversation) NewChat() {
	c.release()
	c.selectSeq++
	c.loadingHistory = false
	c.messages = nil
	c.sessionID = ""
}

// BeginSelect admits navigation to a past session. Navigation is refused
// with ErrBusy while a send is in flight.
func (c *Conversation) BeginSelect(sessionID string) (SelectRequest, error) {
	if sessionID == "" {
		return SelectRequest{}, errors.New("empty session id")
	}
	if c.inflight != nil {
		return SelectRequest{}, ErrBusy
	}
	c.selectSeq++
	c.loadingHistory = true
	return SelectRequest{Seq: c.selectSeq, SessionID: sessionID}, nil
}

// ApplyHistory installs the fetched history for req. On fetch failure the
// transcript is left untouched and the error is returned.
func (c *Conversation) ApplyHistory(req SelectRequest, records []client.HistoryRecord, err error) error {
	if req.Seq != c.selectSeq || !c.loadingHistory {
		return ErrStale
	}
	c.loadingHistory = false
	if err != nil {
		observability.Logger().Warn("history load failed", "session_id", req.SessionID, "error", err)
		return fmt.Errorf("load session %s: %w", req.SessionID, err)
	}
	c.messages = normalizeHistory(records)
	c.sessionID = req.SessionID
	return nil
}

func (c *Conversation) release() {
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
}
