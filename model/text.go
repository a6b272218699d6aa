package model

import (
	rtruncate "github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// wrap word-wraps s to width cells. A non-positive width returns s as is.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

// truncate cuts s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return rtruncate.StringWithTail(s, uint(width), "…")
}
