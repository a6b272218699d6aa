package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP exchange. Agent replies can take a
// while when the backend fans out to several tools.
const DefaultTimeout = 180 * time.Second

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// SetTimeout replaces the transport timeout. Zero disables it.
func (c *Client) SetTimeout(d time.Duration) {
	c.HTTPClient.Timeout = d
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health: %w", c.wrap(ctx, err))
	}
	return &health, nil
}

// SendMessage posts a user message to the agent router. An empty sessionID
// asks the backend to allocate a new session; the allocated id comes back in
// the response.
func (c *Client) SendMessage(ctx context.Context, text, sessionID string) (*AgentResponse, error) {
	resp, err := c.postJSON(ctx, "/api/chat/agent", AgentRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	var result AgentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode agent response: %w", c.wrap(ctx, err))
	}
	return &result, nil
}

// SearchSchemes runs a direct vector search over the scheme catalogue.
func (c *Client) SearchSchemes(ctx context.Context, text string) ([]Scheme, error) {
	resp, err := c.postJSON(ctx, "/api/chat/schemes", MessageRequest{Message: text})
	if err != nil {
		return nil, fmt.Errorf("search schemes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	var schemes []Scheme
	if err := json.NewDecoder(resp.Body).Decode(&schemes); err != nil {
		return nil, fmt.Errorf("decode schemes: %w", c.wrap(ctx, err))
	}
	return schemes, nil
}

// TestAI sends a message to the plain completion endpoint, bypassing the
// agent router.
func (c *Client) TestAI(ctx context.Context, text string) (string, error) {
	resp, err := c.postJSON(ctx, "/api/test-ai", MessageRequest{Message: text})
	if err != nil {
		return "", fmt.Errorf("test ai: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", c.parseError(resp)
	}
	var result TestAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode test ai: %w", c.wrap(ctx, err))
	}
	return result.Response, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, "/api/history/sessions")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	var wrapper struct {
		Sessions []string `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", c.wrap(ctx, err))
	}
	return wrapper.Sessions, nil
}

// GetHistory returns a session's messages oldest first. The backend answers
// either {"history": [...]} or a bare array; both are accepted.
func (c *Client) GetHistory(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	resp, err := c.get(ctx, "/api/history/"+url.PathEscape(sessionID))
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", c.wrap(ctx, err))
	}
	records, err := decodeHistory(body)
	if err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}

func decodeHistory(body []byte) ([]HistoryRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return []HistoryRecord{}, nil
	}
	if body[0] == '[' {
		var records []HistoryRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var wrapper struct {
		History []HistoryRecord `json:"history"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.History == nil {
		return []HistoryRecord{}, nil
	}
	return wrapper.History, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(ctx, req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.wrap(ctx, err)
	}
	return resp, nil
}

// wrap turns a failure caused by caller cancellation into ErrCancelled.
// Deadline expiry stays a transport error.
func (c *Client) wrap(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ErrCancelled
	}
	return err
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil {
		apiErr.Detail = er.detailText()
	}
	return apiErr
}
