package style

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors, initialized to the dark theme. Updated via SetTheme.
var (
	Primary   lipgloss.TerminalColor = darkTheme.Primary
	Secondary lipgloss.TerminalColor = darkTheme.Secondary
	Success   lipgloss.TerminalColor = darkTheme.Success
	Warning   lipgloss.TerminalColor = darkTheme.Warning
	Error     lipgloss.TerminalColor = darkTheme.Error
	Muted     lipgloss.TerminalColor = darkTheme.Muted
	Dim       lipgloss.TerminalColor = darkTheme.Dim
	Border    lipgloss.TerminalColor = darkTheme.Border

	MsgBorderUser  lipgloss.TerminalColor = darkTheme.MsgBorderUser
	MsgBorderAgent lipgloss.TerminalColor = darkTheme.MsgBorderAgent
	MsgBorderError lipgloss.TerminalColor = darkTheme.MsgBorderError

	CardBorder lipgloss.TerminalColor = darkTheme.CardBorder
	Badge      lipgloss.TerminalColor = darkTheme.Badge
)

// Base styles, rebuilt when the theme changes.
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	// Banner
	BannerTitle  lipgloss.Style
	BannerDetail lipgloss.Style
	Online       lipgloss.Style
	Offline      lipgloss.Style

	// Prompt
	PromptChar lipgloss.Style

	// Chat
	UserLabel  lipgloss.Style
	AgentLabel lipgloss.Style
	AgentBadge lipgloss.Style
	MsgMeta    lipgloss.Style

	// Activity
	SpinnerStyle lipgloss.Style
	PhaseLabel   lipgloss.Style
	PhaseWeb     lipgloss.Style
	PhaseDB      lipgloss.Style
	PhaseAgent   lipgloss.Style

	// Status bar
	StatusBar     lipgloss.Style
	StatusSession lipgloss.Style

	// Sidebar and overlays
	PanelBorder    lipgloss.Style
	PanelTitle     lipgloss.Style
	ItemSelected   lipgloss.Style
	ItemUnselected lipgloss.Style

	// Scheme cards
	Card         lipgloss.Style
	CardTitle    lipgloss.Style
	CardCategory lipgloss.Style
	CardScore    lipgloss.Style
	CardBenefit  lipgloss.Style
	CardLink     lipgloss.Style

	// Message gutters
	MsgUser  lipgloss.Style
	MsgAgent lipgloss.Style
	MsgError lipgloss.Style

	// Hint text (ctrl+n, tab)
	Hint lipgloss.Style

	// Welcome screen
	WelcomeTitle lipgloss.Style
	WelcomeTip   lipgloss.Style
)

func init() {
	rebuildStyles()
}

// SetTheme applies a named theme, updating all color vars and rebuilding
// styles. It reports whether the theme exists.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = name
	Primary = t.Primary
	Secondary = t.Secondary
	Success = t.Success
	Warning = t.Warning
	Error = t.Error
	Muted = t.Muted
	Dim = t.Dim
	Border = t.Border
	MsgBorderUser = t.MsgBorderUser
	MsgBorderAgent = t.MsgBorderAgent
	MsgBorderError = t.MsgBorderError
	CardBorder = t.CardBorder
	Badge = t.Badge
	rebuildStyles()
	return true
}

// GlamourStyle returns the markdown style matching the current theme.
func GlamourStyle() string {
	if t, ok := Themes[CurrentThemeName]; ok && t.GlamourStyle != "" {
		return t.GlamourStyle
	}
	return "dark"
}

func rebuildStyles() {
	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	BannerTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	BannerDetail = lipgloss.NewStyle().Foreground(Muted)
	Online = lipgloss.NewStyle().Foreground(Success)
	Offline = lipgloss.NewStyle().Foreground(Error)

	PromptChar = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	UserLabel = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	AgentLabel = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	AgentBadge = lipgloss.NewStyle().Foreground(Badge).Italic(true)
	MsgMeta = lipgloss.NewStyle().Foreground(Muted).Italic(true)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
	PhaseLabel = lipgloss.NewStyle().Foreground(Muted)
	PhaseWeb = lipgloss.NewStyle().Foreground(Secondary)
	PhaseDB = lipgloss.NewStyle().Foreground(Warning)
	PhaseAgent = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	StatusBar = lipgloss.NewStyle().Foreground(Muted).PaddingLeft(1)
	StatusSession = lipgloss.NewStyle().Foreground(Secondary)

	PanelBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	PanelTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ItemSelected = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ItemUnselected = lipgloss.NewStyle().Foreground(Muted)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CardBorder).
		Padding(0, 1)
	CardTitle = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	CardCategory = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	CardScore = lipgloss.NewStyle().Foreground(Success)
	CardBenefit = lipgloss.NewStyle()
	CardLink = lipgloss.NewStyle().Foreground(Secondary).Underline(true)

	gutter := lipgloss.NewStyle().Border(lipgloss.ThickBorder(), false, false, false, true).PaddingLeft(1)
	MsgUser = gutter.BorderForeground(MsgBorderUser)
	MsgAgent = gutter.BorderForeground(MsgBorderAgent)
	MsgError = gutter.BorderForeground(MsgBorderError)

	Hint = lipgloss.NewStyle().Foreground(Dim)

	WelcomeTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	WelcomeTip = lipgloss.NewStyle().Foreground(Dim)
}

// ScorePercent normalizes a backend relevance score to [0,100]. Scores are
// percentages; values up to 1 are read as fractions.
func ScorePercent(score float64) float64 {
	if score > 0 && score <= 1 {
		score *= 100
	}
	return math.Max(0, math.Min(100, score))
}

// ScoreBar renders a relevance score like: ██████░░░░
func ScoreBar(score float64, width int) string {
	pct := ScorePercent(score)
	filled := int(math.Round(pct / 100 * float64(width)))
	empty := width - filled

	var color lipgloss.TerminalColor
	switch {
	case pct >= 75:
		color = Success
	case pct >= 40:
		color = Warning
	default:
		color = Muted
	}

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(Dim).Render(strings.Repeat("░", empty))
}
