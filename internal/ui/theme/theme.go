package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/midolearning/village/internal/gems"
)

// Color palette, warm village tones
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Coin      = lipgloss.Color("#FACC15") // Gold
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(12)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Granted = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Throttled = lipgloss.NewStyle().
			Foreground(Warning)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Coins = lipgloss.NewStyle().
		Foreground(Coin).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// RarityStyle returns the text style for a gem rarity.
func RarityStyle(r gems.Rarity) lipgloss.Style {
	switch r {
	case gems.RarityLegendary:
		return lipgloss.NewStyle().Foreground(Accent).Bold(true)
	case gems.RarityEpic:
		return lipgloss.NewStyle().Foreground(Primary).Bold(true)
	case gems.RarityRare:
		return lipgloss.NewStyle().Foreground(Secondary)
	default:
		return lipgloss.NewStyle().Foreground(Text)
	}
}
