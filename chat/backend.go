package chat

import (
	"context"

	"github.com/maya-advisor/maya-tui/client"
)

// DirectorySource is the read side of the history API used to build the
// session directory.
type DirectorySource interface {
	ListSessions(ctx context.Context) ([]string, error)
	GetHistory(ctx context.Context, sessionID string) ([]client.HistoryRecord, error)
}

// HistoryClient is the remote service the conversation depends on.
// SendMessage must return client.ErrCancelled when ctx is cancelled first.
type HistoryClient interface {
	DirectorySource
	SendMessage(ctx context.Context, text, sessionID string) (*client.AgentResponse, error)
}

// Backend adds the auxiliary endpoints reachable through slash commands.
type Backend interface {
	HistoryClient
	SearchSchemes(ctx context.Context, text string) ([]client.Scheme, error)
	TestAI(ctx context.Context, text string) (string, error)
}

var _ Backend = (*client.Client)(nil)
