package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

// ---------------------------------------------------------------------------
// SendMessage
// ---------------------------------------------------------------------------

func TestSendMessage_PostsBodyAndDecodes(t *testing.T) {
	var got AgentRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat/agent" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"response":"Here are 2 options","agent":"scheme_navigator","session_id":"s1",
			"schemes":[{"id":7,"name":"PMEGP","benefits":"Subsidy up to 35%"},{"id":"s2","name":"CGTMSE","benefits":["a","b"]}]}`))
	})

	resp, err := c.SendMessage(context.Background(), "Tell me about MSME schemes", "")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got.Message != "Tell me about MSME schemes" || got.SessionID != "" {
		t.Errorf("unexpected request body %+v", got)
	}
	if resp.SessionID != "s1" || resp.Agent != "scheme_navigator" {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.Schemes) != 2 {
		t.Fatalf("want 2 schemes, got %d", len(resp.Schemes))
	}
	if resp.Schemes[0].ID != "7" {
		t.Errorf("numeric id want %q, got %q", "7", resp.Schemes[0].ID)
	}
	if len(resp.Schemes[0].Benefits) != 1 || resp.Schemes[0].Benefits[0] != "Subsidy up to 35%" {
		t.Errorf("string benefits not normalized: %#v", resp.Schemes[0].Benefits)
	}
	if len(resp.Schemes[1].Benefits) != 2 {
		t.Errorf("list benefits want 2, got %d", len(resp.Schemes[1].Benefits))
	}
}

func TestSendMessage_OmitsEmptySessionID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["session_id"]; ok {
			t.Errorf("session_id should be omitted, got %v", raw)
		}
		w.Write([]byte(`{"response":"ok","agent":"router","session_id":"new","schemes":[]}`))
	})
	if _, err := c.SendMessage(context.Background(), "hi", ""); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
}

func TestSendMessage_CancelledIsDistinguishable(t *testing.T) {
	release := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.SendMessage(ctx, "hi", "s1")
	if !IsCancelled(err) {
		t.Fatalf("want ErrCancelled, got %v", err)
	}
}

func TestSendMessage_TimeoutIsNotCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.SendMessage(ctx, "hi", "s1")
	if err == nil {
		t.Fatal("want error")
	}
	if IsCancelled(err) {
		t.Errorf("deadline expiry must not be reported as cancellation: %v", err)
	}
}

func TestSendMessage_APIErrorCarriesDetail(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"Agent router is warming up"}`))
	})
	_, err := c.SendMessage(context.Background(), "hi", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status want 503, got %d", apiErr.StatusCode)
	}
	detail, ok := Detail(err)
	if !ok || detail != "Agent router is warming up" {
		t.Errorf("detail want %q, got %q (%v)", "Agent router is warming up", detail, ok)
	}
}

func TestParseError_ValidationDetailList(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","message"],"msg":"field required"}]}`))
	})
	_, err := c.SendMessage(context.Background(), "hi", "")
	detail, ok := Detail(err)
	if !ok || detail != "field required" {
		t.Errorf("detail want %q, got %q", "field required", detail)
	}
}

func TestParseError_PlainBodyHasNoDetail(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})
	_, err := c.SendMessage(context.Background(), "hi", "")
	if _, ok := Detail(err); ok {
		t.Errorf("plain body should carry no detail: %v", err)
	}
	if err == nil || err.Error() != "API 502: bad gateway" {
		t.Errorf("unexpected error text %v", err)
	}
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func TestListSessions(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/history/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"sessions":["abc123ef","deadbeef"]}`))
	})
	ids, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(ids) != 2 || ids[0] != "abc123ef" || ids[1] != "deadbeef" {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestGetHistory_AcceptsBothShapes(t *testing.T) {
	bodies := map[string]string{
		"wrapped": `{"history":[{"id":1,"role":"user","content":"hi","timestamp":"2024-05-01T10:00:00"}]}`,
		"bare":    `[{"id":"1","role":"user","content":"hi","timestamp":"2024-05-01T10:00:00"}]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/history/s1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(body))
			})
			records, err := c.GetHistory(context.Background(), "s1")
			if err != nil {
				t.Fatalf("GetHistory: %v", err)
			}
			if len(records) != 1 || records[0].Content != "hi" || records[0].ID != "1" {
				t.Errorf("unexpected records %+v", records)
			}
		})
	}
}

func TestGetHistory_EmptySessionIsNotAnError(t *testing.T) {
	for _, body := range []string{`{"history":[]}`, `[]`, `{}`} {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		records, err := c.GetHistory(context.Background(), "empty")
		if err != nil {
			t.Fatalf("%s: GetHistory: %v", body, err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("%s: want empty non-nil slice, got %#v", body, records)
		}
	}
}

// ---------------------------------------------------------------------------
// Fallback endpoints
// ---------------------------------------------------------------------------

func TestSearchSchemes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/schemes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":1,"name":"Mudra","category":"Loan","relevance_score":91.5}]`))
	})
	schemes, err := c.SearchSchemes(context.Background(), "loan")
	if err != nil {
		t.Fatalf("SearchSchemes: %v", err)
	}
	if len(schemes) != 1 || schemes[0].RelevanceScore == nil || *schemes[0].RelevanceScore != 91.5 {
		t.Errorf("unexpected schemes %+v", schemes)
	}
}

func TestTestAI(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/test-ai" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"response":"pong"}`))
	})
	out, err := c.TestAI(context.Background(), "ping")
	if err != nil || out != "pong" {
		t.Errorf("want pong, got %q (%v)", out, err)
	}
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	})
	h, err := c.Health(context.Background())
	if err != nil || h.Status != "healthy" {
		t.Errorf("unexpected health %+v (%v)", h, err)
	}
}
