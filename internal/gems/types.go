package gems

// GemType identifies the category of achievement.
type GemType string

const (
	GemLevel      GemType = "level"
	GemSkillLevel GemType = "skill_level"
	GemStreak     GemType = "streak"
	GemSession    GemType = "session"
)

// AllGemTypes returns all gem types in display order.
func AllGemTypes() []GemType {
	return []GemType{GemLevel, GemSkillLevel, GemStreak, GemSession}
}

// DisplayName returns a human-readable label for the gem type.
func (t GemType) DisplayName() string {
	switch t {
	case GemLevel:
		return "Level"
	case GemSkillLevel:
		return "Skill Level"
	case GemStreak:
		return "Streak"
	case GemSession:
		return "Session"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the gem type.
func (t GemType) Icon() string {
	switch t {
	case GemLevel:
		return "💎"
	case GemSkillLevel:
		return "🔥"
	case GemStreak:
		return "⚡"
	case GemSession:
		return "🏆"
	default:
		return "✦"
	}
}
