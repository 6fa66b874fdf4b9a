package catalog

import "github.com/midolearning/village/internal/progression"

// BuiltinVersion is the version reported by the built-in catalog.
const BuiltinVersion = "v1.0.0"

// Builtin returns the catalog used when no file is configured.
func Builtin() *Catalog {
	c, err := New(BuiltinVersion, []progression.Definition{EnglishTyping()})
	if err != nil {
		panic("catalog: invalid built-in catalog: " + err.Error())
	}
	return c
}

// EnglishTyping is the seed typing skill with its three stages.
func EnglishTyping() progression.Definition {
	return progression.Definition{
		ID:          "english-typing",
		Name:        "English Typing",
		Icon:        "⌨️",
		Description: "Build typing speed and accuracy with English words and sentences.",
		Category:    "typing",
		Status:      progression.StatusActive,

		BaseExperience:         10,
		TimeBonusPerMinute:     2,
		AccuracyBonusThreshold: 0.9,
		AccuracyBonusAmount:    5,
		StreakBonusThreshold:   3,
		StreakBonusAmount:      10,

		MinPlayTimeMinutes: 10,
		RewardRange:        progression.RewardRange{Min: 1, Max: 5},
		DailyRewardLimit:   20,
		CooldownMinutes:    10,

		Stages: []progression.Stage{
			{ID: "beginner", Name: "Beginner", Difficulty: 1, ExpMultiplier: 1.0, RewardMultiplier: 1.0, UnlockCharacterLevel: 1},
			{ID: "intermediate", Name: "Intermediate", Difficulty: 2, ExpMultiplier: 1.5, RewardMultiplier: 1.3, UnlockCharacterLevel: 5},
			{ID: "advanced", Name: "Advanced", Difficulty: 3, ExpMultiplier: 2.0, RewardMultiplier: 1.5, UnlockCharacterLevel: 10},
		},
	}
}
