package progression

import (
	"math"
)

// Status controls whether a skill accepts sessions.
type Status string

const (
	StatusActive     Status = "active"
	StatusComingSoon Status = "coming_soon"
	StatusDisabled   Status = "disabled"
)

// RewardRange bounds the nominal currency of one session (inclusive).
type RewardRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Stage is a difficulty tier inside a skill.
type Stage struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Difficulty           int     `json:"difficulty"`
	ExpMultiplier        float64 `json:"exp_multiplier"`
	RewardMultiplier     float64 `json:"reward_multiplier"`
	UnlockCharacterLevel int     `json:"unlock_character_level,omitempty"`
	UnlockSkillLevel     int     `json:"unlock_skill_level,omitempty"`
}

// defaultStage is used when a report names no stage.
var defaultStage = Stage{ExpMultiplier: 1, RewardMultiplier: 1}

// Unlocked reports whether a character at the given levels may play the stage.
func (s Stage) Unlocked(characterLevel, skillLevel int) bool {
	return characterLevel >= s.UnlockCharacterLevel && skillLevel >= s.UnlockSkillLevel
}

// Definition is the read-only configuration of one skill.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      Status `json:"status"`

	// Experience rules.
	BaseExperience         int     `json:"base_experience"`
	TimeBonusPerMinute     int     `json:"time_bonus_per_minute"`
	AccuracyBonusThreshold float64 `json:"accuracy_bonus_threshold"`
	AccuracyBonusAmount    int     `json:"accuracy_bonus_amount"`
	StreakBonusThreshold   int     `json:"streak_bonus_threshold"`
	StreakBonusAmount      int     `json:"streak_bonus_amount"`

	// Reward rules.
	MinPlayTimeMinutes float64     `json:"min_play_time_minutes"`
	RewardRange        RewardRange `json:"reward_range"`
	DailyRewardLimit   int         `json:"daily_reward_limit"`
	CooldownMinutes    int         `json:"cooldown_minutes"`

	Stages []Stage `json:"stages,omitempty"`
}

// Active reports whether the skill accepts sessions. An empty status counts
// as active.
func (d Definition) Active() bool {
	return d.Status == "" || d.Status == StatusActive
}

// Stage resolves a stage by id. An empty id yields neutral multipliers.
func (d Definition) Stage(id string) (Stage, error) {
	if id == "" {
		return defaultStage, nil
	}
	for _, s := range d.Stages {
		if s.ID == id {
			return s, nil
		}
	}
	return Stage{}, &ConfigurationError{SkillID: d.ID, Err: ErrUnknownStage}
}

// StageRewardRange applies the stage's reward multiplier to the maximum.
// The result never drops below the minimum.
func (d Definition) StageRewardRange(s Stage) RewardRange {
	r := d.RewardRange
	if s.RewardMultiplier > 0 && s.RewardMultiplier != 1 {
		r.Max = int(math.Floor(float64(r.Max) * s.RewardMultiplier))
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

// Validate checks cross-field rules. Definitions are validated once when the
// catalog loads, not per session.
func (d Definition) Validate() error {
	if d.ID == "" {
		return invalid("id", "must not be empty")
	}
	switch d.Status {
	case "", StatusActive, StatusComingSoon, StatusDisabled:
	default:
		return invalid("status", "unknown status %q", d.Status)
	}

	nonNegative := []struct {
		field string
		v     int
	}{
		{"baseExperience", d.BaseExperience},
		{"timeBonusPerMinute", d.TimeBonusPerMinute},
		{"accuracyBonusAmount", d.AccuracyBonusAmount},
		{"streakBonusThreshold", d.StreakBonusThreshold},
		{"streakBonusAmount", d.StreakBonusAmount},
		{"dailyRewardLimit", d.DailyRewardLimit},
		{"cooldownMinutes", d.CooldownMinutes},
		{"rewardRange.min", d.RewardRange.Min},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return invalid(f.field, "must not be negative, got %d", f.v)
		}
	}

	if !inUnitInterval(d.AccuracyBonusThreshold) {
		return invalid("accuracyBonusThreshold", "must be within [0,1], got %v", d.AccuracyBonusThreshold)
	}
	if d.MinPlayTimeMinutes < 0 || math.IsNaN(d.MinPlayTimeMinutes) {
		return invalid("minPlayTimeMinutes", "must not be negative, got %v", d.MinPlayTimeMinutes)
	}
	if d.RewardRange.Min > d.RewardRange.Max {
		return invalid("rewardRange", "min %d exceeds max %d", d.RewardRange.Min, d.RewardRange.Max)
	}

	seen := make(map[string]bool, len(d.Stages))
	for _, s := range d.Stages {
		if s.ID == "" {
			return invalid("stages.id", "must not be empty")
		}
		if seen[s.ID] {
			return invalid("stages.id", "duplicate stage %q", s.ID)
		}
		seen[s.ID] = true
		if s.ExpMultiplier < 0 || s.RewardMultiplier < 0 {
			return invalid("stages."+s.ID, "multipliers must not be negative")
		}
	}
	return nil
}

// ValidateReport rejects malformed session reports before evaluation.
func ValidateReport(r SessionReport) error {
	if r.SkillID == "" {
		return invalid("skillId", "must not be empty")
	}
	if math.IsNaN(r.ElapsedSeconds) || math.IsInf(r.ElapsedSeconds, 0) || r.ElapsedSeconds < 0 {
		return invalid("elapsedSeconds", "must be a non-negative number, got %v", r.ElapsedSeconds)
	}
	if !inUnitInterval(r.Accuracy) {
		return invalid("accuracy", "must be within [0,1], got %v", r.Accuracy)
	}
	if r.StreakAtCompletion < 0 {
		return invalid("streakAtCompletion", "must not be negative, got %d", r.StreakAtCompletion)
	}
	if r.WPM != nil && (*r.WPM < 0 || math.IsNaN(*r.WPM)) {
		return invalid("wpm", "must not be negative, got %v", *r.WPM)
	}
	if r.Timestamp.IsZero() {
		return invalid("timestamp", "must be set")
	}
	return nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
