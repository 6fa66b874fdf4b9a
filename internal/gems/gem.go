package gems

import "time"

// GemAward represents a single gem earned.
type GemAward struct {
	Type        GemType   `json:"type"`
	Rarity      Rarity    `json:"rarity"`
	CharacterID string    `json:"character_id"`
	SkillID     string    `json:"skill_id,omitempty"`   // empty for character level gems
	SkillName   string    `json:"skill_name,omitempty"` // empty for character level gems
	SessionID   string    `json:"session_id"`
	Reason      string    `json:"reason"` // human-readable, e.g. "Reached level 10"
	AwardedAt   time.Time `json:"awarded_at"`
}
