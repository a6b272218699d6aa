package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type key struct {
	style string
	width int
}

var (
	mu        sync.Mutex
	renderers = map[key]*glamour.TermRenderer{}
)

// DefaultWidth is used when the caller does not know the viewport width.
const DefaultWidth = 100

func renderer(style string, width int) *glamour.TermRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	k := key{style: style, width: width}

	mu.Lock()
	defer mu.Unlock()
	if r, ok := renderers[k]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Remember the failure so we fall back to raw text without retrying.
		renderers[k] = nil
		return nil
	}
	renderers[k] = r
	return r
}

// Render converts markdown text to styled ANSI output using the named glamour
// style, wrapped to width. Falls back to raw text if rendering fails.
func Render(md, style string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r := renderer(style, width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour adds leading and trailing newlines; trim for inline display.
	return strings.Trim(out, "\n")
}
