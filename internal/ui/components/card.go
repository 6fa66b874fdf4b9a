package components

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/midolearning/village/internal/gems"
	"github.com/midolearning/village/internal/leveling"
	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/throttle"
	"github.com/midolearning/village/internal/ui/theme"
	"github.com/midolearning/village/internal/village"
)

// ContentWidth returns the inner width used for cards in a terminal of the
// given width.
func ContentWidth(termWidth int) int {
	// Leave room for border (2) + padding (4)
	return min(max(termWidth-6, 30), 64)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return theme.Card.Width(cw).Render(content)
}

func row(label, value string) string {
	return theme.Label.Render(label) + value
}

// CharacterCard renders a character's level, wallet, skills and gems.
func CharacterCard(p *village.Profile, cw int) string {
	inner := cw - 6
	lines := []string{
		theme.Title.Render(p.Name) + "  " + theme.Hint.Render(p.ID),
		"",
		LevelBar("Village", p.LevelInfo(), inner),
		row("Coins", theme.Coins.Render(fmt.Sprintf("%d", p.Wallet.Available))+
			theme.Subtitle.Render(fmt.Sprintf("  (earned %d, redeemed %d)", p.Wallet.TotalEarned, p.Wallet.Redeemed))),
	}

	if len(p.Skills) > 0 {
		lines = append(lines, "", theme.Subtitle.Render("Skills"))
		ids := make([]string, 0, len(p.Skills))
		for id := range p.Skills {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			lines = append(lines, skillLine(id, p.Skills[id], inner))
		}
	}

	if g := gemLine(p.Gems); g != "" {
		lines = append(lines, "", row("Gems", g))
	}

	return Card(lipgloss.JoinVertical(lipgloss.Left, lines...), cw)
}

func skillLine(id string, sp progression.SkillProgress, width int) string {
	bar := LevelBar(id, leveling.FromExperience(sp.SkillExperience), width)
	meta := fmt.Sprintf("played %d, streak %d, %.0f min", sp.PlayCount, sp.Streak, sp.TotalPlayTimeMinutes)
	return bar + "\n" + theme.Hint.Render("  "+meta)
}

func gemLine(counts map[gems.GemType]int) string {
	var parts []string
	for _, t := range gems.AllGemTypes() {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", t.Icon(), n))
		}
	}
	return strings.Join(parts, "  ")
}

// SessionSummary renders the result of a completed session.
func SessionSummary(res *village.Result, cw int) string {
	b := res.Outcome.Breakdown
	lines := []string{
		theme.Title.Render(res.Message),
		"",
		row("Experience", fmt.Sprintf("+%d", res.Outcome.ExperienceGained)+
			theme.Subtitle.Render(fmt.Sprintf("  (base %d, time %d, accuracy %d, streak %d)", b.Base, b.Time, b.Accuracy, b.Streak))),
		row("Coins", rewardLine(res)),
		row("Streak", fmt.Sprintf("%d", res.Outcome.NewStreak)),
		"",
		LevelBar("Village", res.Character, cw-6),
		LevelBar("Skill", res.Outcome.NewSkillLevel, cw-6),
	}

	if len(res.Gems) > 0 {
		lines = append(lines, "")
		for _, g := range res.Gems {
			lines = append(lines, theme.RarityStyle(g.Rarity).Render(
				fmt.Sprintf("%s %s gem (%s): %s", g.Type.Icon(), g.Type.DisplayName(), g.Rarity.DisplayName(), g.Reason)))
		}
	}

	return Card(lipgloss.JoinVertical(lipgloss.Left, lines...), cw)
}

func rewardLine(res *village.Result) string {
	d := res.Decision
	switch d.Reason {
	case throttle.ReasonGranted:
		return theme.Granted.Render(fmt.Sprintf("+%d", res.Granted))
	case throttle.ReasonCooldown:
		msg := "cooldown active"
		if d.CooldownEndsAt != nil {
			msg += ", next reward after " + d.CooldownEndsAt.Local().Format("15:04")
		}
		return theme.Throttled.Render(msg)
	case throttle.ReasonDailyLimit:
		return theme.Throttled.Render(fmt.Sprintf("+%d (daily limit reached)", res.Granted))
	default:
		return theme.Throttled.Render(string(d.Reason))
	}
}
