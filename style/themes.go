package style

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color palette for the TUI.
type Theme struct {
	Name                                        string
	Primary, Secondary, Success, Warning, Error lipgloss.TerminalColor
	Muted, Dim, Border                          lipgloss.TerminalColor
	MsgBorderUser, MsgBorderAgent               lipgloss.TerminalColor
	MsgBorderError                              lipgloss.TerminalColor
	CardBorder, Badge                           lipgloss.TerminalColor

	// GlamourStyle names the glamour standard style used for replies.
	GlamourStyle string
}

// Built-in themes.
var (
	darkTheme = Theme{
		Name:           "dark",
		Primary:        lipgloss.Color("#F97316"), // orange-500
		Secondary:      lipgloss.Color("#14B8A6"), // teal-500
		Success:        lipgloss.Color("#22C55E"), // green-500
		Warning:        lipgloss.Color("#F59E0B"), // amber-500
		Error:          lipgloss.Color("#EF4444"), // red-500
		Muted:          lipgloss.Color("#6B7280"), // gray-500
		Dim:            lipgloss.Color("#374151"), // gray-700
		Border:         lipgloss.Color("#4B5563"), // gray-600
		MsgBorderUser:  lipgloss.Color("#14B8A6"),
		MsgBorderAgent: lipgloss.Color("#F97316"),
		MsgBorderError: lipgloss.Color("#EF4444"),
		CardBorder:     lipgloss.Color("#0D9488"), // teal-600
		Badge:          lipgloss.Color("#FDBA74"), // orange-300
		GlamourStyle:   "dark",
	}

	lightTheme = Theme{
		Name:           "light",
		Primary:        lipgloss.Color("#C2410C"), // orange-700
		Secondary:      lipgloss.Color("#0F766E"), // teal-700
		Success:        lipgloss.Color("#16A34A"),
		Warning:        lipgloss.Color("#D97706"),
		Error:          lipgloss.Color("#DC2626"),
		Muted:          lipgloss.Color("#6B7280"),
		Dim:            lipgloss.Color("#D1D5DB"),
		Border:         lipgloss.Color("#9CA3AF"),
		MsgBorderUser:  lipgloss.Color("#0F766E"),
		MsgBorderAgent: lipgloss.Color("#C2410C"),
		MsgBorderError: lipgloss.Color("#DC2626"),
		CardBorder:     lipgloss.Color("#14B8A6"),
		Badge:          lipgloss.Color("#9A3412"), // orange-800
		GlamourStyle:   "light",
	}

	catppuccinTheme = Theme{
		Name:           "catppuccin",
		Primary:        lipgloss.Color("#FAB387"), // peach
		Secondary:      lipgloss.Color("#94E2D5"), // teal
		Success:        lipgloss.Color("#A6E3A1"), // green
		Warning:        lipgloss.Color("#F9E2AF"), // yellow
		Error:          lipgloss.Color("#F38BA8"), // red
		Muted:          lipgloss.Color("#6C7086"), // overlay0
		Dim:            lipgloss.Color("#45475A"), // surface1
		Border:         lipgloss.Color("#585B70"), // surface2
		MsgBorderUser:  lipgloss.Color("#94E2D5"),
		MsgBorderAgent: lipgloss.Color("#FAB387"),
		MsgBorderError: lipgloss.Color("#F38BA8"),
		CardBorder:     lipgloss.Color("#89DCEB"), // sky
		Badge:          lipgloss.Color("#F5C2E7"), // pink
		GlamourStyle:   "dracula",
	}
)

// Themes maps theme names to their definitions.
var Themes = map[string]Theme{
	"dark":       darkTheme,
	"light":      lightTheme,
	"catppuccin": catppuccinTheme,
}

// ThemeNames lists available themes in display order.
var ThemeNames = []string{"dark", "light", "catppuccin"}

// CurrentThemeName tracks the active theme name.
var CurrentThemeName = "dark"
