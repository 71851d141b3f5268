package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the client. All colors use lipgloss
// ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color

	BorderColor lipgloss.Color
	HelpText    lipgloss.Color

	// Banner colors by severity.
	InfoText    lipgloss.Color
	SuccessText lipgloss.Color
	ErrorText   lipgloss.Color

	// Backdrop colors from coolest to hottest.
	Backdrop []lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	Accent:     lipgloss.Color("75"), // blue

	BorderColor: lipgloss.Color("240"),
	HelpText:    lipgloss.Color("241"),

	InfoText:    lipgloss.Color("75"),  // blue
	SuccessText: lipgloss.Color("114"), // green
	ErrorText:   lipgloss.Color("196"), // red

	Backdrop: []lipgloss.Color{
		lipgloss.Color("236"),
		lipgloss.Color("238"),
		lipgloss.Color("24"),
		lipgloss.Color("31"),
		lipgloss.Color("39"),
	},
}

type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	panel    lipgloss.Style
	label    lipgloss.Style
	help     lipgloss.Style
	faint    lipgloss.Style
	modal    lipgloss.Style
	banners  map[Severity]lipgloss.Style
	backdrop []lipgloss.Style
}

func newStyles(theme Theme) styles {
	s := styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		subtitle: lipgloss.NewStyle().Foreground(theme.FaintText),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.BorderColor).
			Padding(1, 3),
		label: lipgloss.NewStyle().Foreground(theme.NormalText),
		help:  lipgloss.NewStyle().Foreground(theme.HelpText),
		faint: lipgloss.NewStyle().Foreground(theme.FaintText),
		modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.ErrorText).
			Padding(1, 3),
		banners: map[Severity]lipgloss.Style{
			SeverityInfo:    lipgloss.NewStyle().Foreground(theme.InfoText),
			SeveritySuccess: lipgloss.NewStyle().Foreground(theme.SuccessText),
			SeverityError:   lipgloss.NewStyle().Foreground(theme.ErrorText).Bold(true),
		},
	}
	for _, c := range theme.Backdrop {
		s.backdrop = append(s.backdrop, lipgloss.NewStyle().Foreground(c))
	}
	return s
}
