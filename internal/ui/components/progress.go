package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/midolearning/village/internal/leveling"
	"github.com/midolearning/village/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += theme.Subtitle.Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// LevelBar renders progress through the current level, followed by the
// experience counts. A maxed level shows a full bar.
func LevelBar(label string, info leveling.Info, width int) string {
	percent := info.Progress
	counts := fmt.Sprintf("%d/%d xp", info.CurrentLevelExp, info.NextLevelExp)
	if info.IsMax() {
		percent = 1
		counts = "max level"
	}
	tail := "  " + theme.Subtitle.Render(counts)
	bar := NewProgressBar(fmt.Sprintf("%s Lv %d", label, info.Level), percent, false, width-lipgloss.Width(tail))
	return bar.View() + tail
}
