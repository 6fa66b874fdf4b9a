package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/midolearning/village/internal/ui/theme"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 72

// RenderHeader renders the banner line shown above command output.
func RenderHeader(title string, level, coins, gems int, width int) string {
	left := theme.Title.Render("  Mido Village")
	center := theme.Body.Render(title)
	right := theme.Coins.Render(fmt.Sprintf("● %d", coins)) +
		theme.Subtitle.Render("   ") +
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("◆ %d", gems)) +
		theme.Subtitle.Render("   ") +
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(fmt.Sprintf("Lv %d", level))

	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	innerWidth := max(width-4, 0) // account for border padding
	leftGap := max((innerWidth-centerLen)/2-leftLen, 1)
	rightGap := max(innerWidth-leftLen-leftGap-centerLen-rightLen, 1)

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}
