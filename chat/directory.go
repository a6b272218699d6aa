package chat

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/maya-advisor/maya-tui/observability"
)

const (
	titleMaxRunes   = 35
	titleEllipsis   = "..."
	fallbackIDRunes = 5
	directoryFanout = 6
)

// Summary is one entry of the session directory.
type Summary struct {
	ID    string
	Title string
}

// LoadDirectory lists the stored sessions and derives a title for each from
// its history. Per-session fetch failures degrade to a placeholder title; only
// a failure to list sessions is returned. The result keeps the listing order.
func LoadDirectory(ctx context.Context, src DirectorySource) ([]Summary, error) {
	ids, err := src.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	log := observability.Logger()
	summaries := make([]Summary, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(directoryFanout)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			title := FallbackTitle(id)
			records, err := src.GetHistory(gctx, id)
			if err != nil {
				log.Warn("session title fallback", "session_id", id, "error", err)
			} else {
				for _, r := range records {
					if normalizeRole(r.Role) == RoleUser && strings.TrimSpace(r.Content) != "" {
						title = TruncateTitle(r.Content)
						break
					}
				}
			}
			summaries[i] = Summary{ID: id, Title: title}
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	log.Debug("directory loaded", "sessions", len(summaries))
	return summaries, nil
}

// TruncateTitle collapses whitespace and cuts s to the title width,
// appending an ellipsis when anything was dropped.
func TruncateTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= titleMaxRunes {
		return s
	}
	return string(r[:titleMaxRunes]) + titleEllipsis
}

// FallbackTitle is the placeholder for sessions without a usable user message.
func FallbackTitle(id string) string {
	r := []rune(id)
	if len(r) > fallbackIDRunes {
		r = r[:fallbackIDRunes]
	}
	return "Chat " + string(r)
}
