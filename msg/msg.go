// Package msg defines all tea.Msg types dispatched within the MAYA TUI.
// It imports only the leaf packages (client, chat) so that model and app can
// both depend on it without cycles.
package msg

import (
	"github.com/maya-advisor/maya-tui/chat"
	"github.com/maya-advisor/maya-tui/client"
)

// -- Lifecycle --

// HealthResult from GET /health.
type HealthResult struct {
	Status  string
	Message string
	Err     error
}

// -- HTTP responses --

// SendResult carries a finished chat.Request back to the UI loop.
type SendResult struct {
	Result chat.Result
}

// HistoryLoaded from GET /api/history/{id}.
type HistoryLoaded struct {
	Req     chat.SelectRequest
	Records []client.HistoryRecord
	Err     error
}

// DirectoryLoaded from the session directory loader. Seq orders reloads so a
// slow earlier load cannot overwrite a newer one.
type DirectoryLoaded struct {
	Seq       uint64
	Summaries []chat.Summary
	Err       error
}

// -- UI events --

// NarratorTick advances the thinking-status narrator of generation Gen.
type NarratorTick struct {
	Gen uint64
}

// TickMsg for periodic timer updates.
type TickMsg struct{}

// HealthRetry schedules the next health probe while offline.
type HealthRetry struct{}

// SelectSession asks the app to open a stored session.
type SelectSession struct {
	ID string
}

// NewChat asks the app to start a fresh conversation.
type NewChat struct{}
