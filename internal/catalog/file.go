package catalog

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// File represents the TOML catalog file.
type File struct {
	Version string        `toml:"version" validate:"required"`
	Skills  []SkillConfig `toml:"skill" validate:"required,min=1,dive"`
}

// SkillConfig maps one [[skill]] table.
type SkillConfig struct {
	ID          string `toml:"id" validate:"required,max=64"`
	Name        string `toml:"name" validate:"required"`
	Icon        string `toml:"icon"`
	Description string `toml:"description"`
	Category    string `toml:"category"`
	Status      string `toml:"status" validate:"omitempty,oneof=active coming_soon disabled"`

	BaseExperience         int     `toml:"base_experience" validate:"gte=0"`
	TimeBonusPerMinute     int     `toml:"time_bonus_per_minute" validate:"gte=0"`
	AccuracyBonusThreshold float64 `toml:"accuracy_bonus_threshold" validate:"gte=0,lte=1"`
	AccuracyBonusAmount    int     `toml:"accuracy_bonus_amount" validate:"gte=0"`
	StreakBonusThreshold   int     `toml:"streak_bonus_threshold" validate:"gte=0"`
	StreakBonusAmount      int     `toml:"streak_bonus_amount" validate:"gte=0"`

	MinPlayTimeMinutes float64     `toml:"min_play_time_minutes" validate:"gte=0"`
	RewardRange        RangeConfig `toml:"reward_range"`
	DailyRewardLimit   int         `toml:"daily_reward_limit" validate:"gte=0"`
	CooldownMinutes    int         `toml:"cooldown_minutes" validate:"gte=0"`

	Stages []StageConfig `toml:"stage" validate:"omitempty,dive"`
}

// RangeConfig maps a reward_range inline table.
type RangeConfig struct {
	Min int `toml:"min" validate:"gte=0"`
	Max int `toml:"max" validate:"gtefield=Min"`
}

// StageConfig maps one [[skill.stage]] table.
type StageConfig struct {
	ID                   string  `toml:"id" validate:"required"`
	Name                 string  `toml:"name"`
	Difficulty           int     `toml:"difficulty" validate:"gte=0"`
	ExpMultiplier        float64 `toml:"exp_multiplier" validate:"gte=0"`
	RewardMultiplier     float64 `toml:"reward_multiplier" validate:"gte=0"`
	UnlockCharacterLevel int     `toml:"unlock_character_level" validate:"gte=0"`
	UnlockSkillLevel     int     `toml:"unlock_skill_level" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report TOML key names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
