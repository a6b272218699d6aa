package chat

import (
	"strings"
	"time"
	"unicode"
)

// Mode names the indicator animation a phase asks for.
type Mode string

const (
	ModeThinking    Mode = "thinking"
	ModeWebSearch   Mode = "web-search"
	ModeDBSearch    Mode = "db-search"
	ModeAgentActive Mode = "agent-active"
)

// Phase is what the progress indicator shows while a send is in flight.
type Phase struct {
	Mode  Mode
	Label string
}

// DefaultPhase is shown on entering Sending and after every reset.
var DefaultPhase = Phase{Mode: ModeThinking, Label: "Thinking…"}

const (
	// PhaseDelay is how long the default phase stays up before the query is
	// inspected.
	PhaseDelay = 1200 * time.Millisecond
	// CrossfadeDelay is how long the inferred phase stays up before the
	// secondary phase replaces it.
	CrossfadeDelay = 2500 * time.Millisecond
)

type family struct {
	keywords  []string
	primary   *Phase
	secondary *Phase
}

// families are checked in order; the first hit wins. The finance family
// matches but keeps the default phase.
var families = []family{
	{
		keywords:  []string{"market", "trend", "competitor"},
		primary:   &Phase{Mode: ModeWebSearch, Label: "Researching market trends…"},
		secondary: &Phase{Mode: ModeAgentActive, Label: "Market analyst compiling findings…"},
	},
	{
		keywords:  []string{"scheme", "loan", "subsidy", "government"},
		primary:   &Phase{Mode: ModeDBSearch, Label: "Searching government schemes…"},
		secondary: &Phase{Mode: ModeAgentActive, Label: "Scheme navigator ranking matches…"},
	},
	{
		keywords: []string{"brand", "logo", "name", "slogan"},
		primary:  &Phase{Mode: ModeAgentActive, Label: "Creative agent brainstorming…"},
	},
	{
		keywords: []string{"finance", "tax", "cost"},
	},
}

// InferPhases guesses, from keywords alone, which phases to show for query.
// Either result may be nil. The guess is cosmetic; the agent that actually
// answered arrives with the response.
func InferPhases(query string) (primary, secondary *Phase) {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range families {
		for _, kw := range f.keywords {
			for _, w := range words {
				if matchesKeyword(w, kw) {
					return f.primary, f.secondary
				}
			}
		}
	}
	return nil, nil
}

// keywordSuffixes are the inflections a keyword may carry and still count
// as the same word: "loans", "taxes", "branding".
var keywordSuffixes = []string{"", "s", "es", "ing"}

// matchesKeyword reports whether word is kw or one of its inflections, so
// "names" matches "name" but "rename" and "named" do not.
func matchesKeyword(word, kw string) bool {
	rest, ok := strings.CutPrefix(word, kw)
	if !ok {
		return false
	}
	for _, suf := range keywordSuffixes {
		if rest == suf {
			return true
		}
	}
	return false
}

// Narrator is the thinking-status state machine. Timers are owned by the
// caller: it schedules a tick for each delay Start or Advance hands back and
// passes the generation along. Stop bumps the generation so that ticks
// already scheduled become no-ops.
type Narrator struct {
	gen    uint64
	active bool
	query  string
	step   int
	phase  Phase
}

func NewNarrator() Narrator {
	return Narrator{phase: DefaultPhase}
}

// Start shows the default phase for query and returns the generation and the
// delay before the first Advance.
func (n *Narrator) Start(query string) (gen uint64, next time.Duration) {
	n.gen++
	n.active = true
	n.query = query
	n.step = 0
	n.phase = DefaultPhase
	return n.gen, PhaseDelay
}

// Advance moves to the next phase if gen is current. It returns the delay
// before the following Advance, or 0 when the sequence is finished.
func (n *Narrator) Advance(gen uint64) (next time.Duration, ok bool) {
	if !n.active || gen != n.gen {
		return 0, false
	}
	primary, secondary := InferPhases(n.query)
	n.step++
	switch n.step {
	case 1:
		if primary == nil {
			return 0, true
		}
		n.phase = *primary
		if secondary == nil {
			return 0, true
		}
		return CrossfadeDelay, true
	case 2:
		if secondary != nil {
			n.phase = *secondary
		}
		return 0, true
	}
	return 0, true
}

// Stop resets to the default phase and invalidates pending ticks.
func (n *Narrator) Stop() {
	n.gen++
	n.active = false
	n.query = ""
	n.step = 0
	n.phase = DefaultPhase
}

func (n Narrator) Phase() Phase       { return n.phase }
func (n Narrator) Active() bool       { return n.active }
func (n Narrator) Generation() uint64 { return n.gen }
