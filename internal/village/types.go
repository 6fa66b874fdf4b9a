package village

import (
	"time"

	"github.com/midolearning/village/internal/gems"
	"github.com/midolearning/village/internal/leveling"
	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/throttle"
)

// Wallet tracks a character's reward currency.
type Wallet struct {
	TotalEarned int `json:"total_earned"`
	Available   int `json:"available"`
	Redeemed    int `json:"redeemed"`
}

// Character is a player's village avatar.
type Character struct {
	ID              string                               `json:"id"`
	Name            string                               `json:"name"`
	Level           int                                  `json:"level"`
	TotalExperience int64                                `json:"total_experience"`
	Skills          map[string]progression.SkillProgress `json:"skills"`
	Wallet          Wallet                               `json:"wallet"`
	CreatedAt       time.Time                            `json:"created_at"`
	UpdatedAt       time.Time                            `json:"updated_at"`
}

// LevelInfo recomputes the character level from total experience.
func (c *Character) LevelInfo() leveling.Info {
	return leveling.FromExperience(c.TotalExperience)
}

// Skill returns the progress for skillID, or a fresh record.
func (c *Character) Skill(skillID string) progression.SkillProgress {
	if p, ok := c.Skills[skillID]; ok {
		return p
	}
	return progression.NewSkillProgress()
}

// RewardEntry is one row of the append-only reward ledger.
type RewardEntry struct {
	Sequence    int64     `json:"sequence"`
	CharacterID string    `json:"character_id"`
	SkillID     string    `json:"skill_id"`
	SessionID   string    `json:"session_id"`
	Amount      int       `json:"amount"`
	GrantedAt   time.Time `json:"granted_at"`
}

// LedgerEntry converts the row into the throttle's view.
func (e RewardEntry) LedgerEntry() throttle.LedgerEntry {
	return throttle.LedgerEntry{Amount: e.Amount, GrantedAt: e.GrantedAt, SkillID: e.SkillID}
}

// GameSession records one completed session, whether or not it paid out.
type GameSession struct {
	ID               string          `json:"id"`
	CharacterID      string          `json:"character_id"`
	SessionID        string          `json:"session_id"`
	SkillID          string          `json:"skill_id"`
	StageID          string          `json:"stage_id,omitempty"`
	ElapsedSeconds   float64         `json:"elapsed_seconds"`
	Accuracy         float64         `json:"accuracy"`
	WPM              *float64        `json:"wpm,omitempty"`
	Score            *float64        `json:"score,omitempty"`
	ExperienceGained int64           `json:"experience_gained"`
	NominalCurrency  int             `json:"nominal_currency"`
	CurrencyGranted  int             `json:"currency_granted"`
	Reason           throttle.Reason `json:"reason"`
	PlayedAt         time.Time       `json:"played_at"`
}

// Result is returned by CompleteSession.
type Result struct {
	SessionID    string              `json:"session_id"`
	Outcome      progression.Outcome `json:"outcome"`
	Decision     throttle.Decision   `json:"decision"`
	Character    leveling.Info       `json:"character"`
	LevelUp      bool                `json:"level_up"`
	SkillLevelUp bool                `json:"skill_level_up"`
	Granted      int                 `json:"granted"`
	Wallet       Wallet              `json:"wallet"`
	Gems         []gems.GemAward     `json:"gems,omitempty"`
	Message      string              `json:"message"`
}
