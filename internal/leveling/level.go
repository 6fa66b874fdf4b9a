// Package leveling maps cumulative experience to level state.
//
// Advancing from level L to L+1 costs L*100 experience. Level 1000 is
// terminal: experience beyond it accumulates but never levels further.
package leveling

import "sort"

const (
	// MaxLevel is the terminal level.
	MaxLevel = 1000

	// CostPerLevel scales the linear per-level cost.
	CostPerLevel = 100
)

// Info describes where a cumulative experience total sits on the level curve.
type Info struct {
	Level           int     `json:"level"`
	TotalExperience int64   `json:"total_experience"`
	CurrentLevelExp int64   `json:"current_level_exp"` // remainder inside the current level
	NextLevelExp    int64   `json:"next_level_exp"`    // cost of the next level, 0 at MaxLevel
	Progress        float64 `json:"progress"`          // 0.0-1.0
}

// IsMax reports whether the terminal level has been reached.
func (i Info) IsMax() bool {
	return i.Level >= MaxLevel
}

// thresholds[i] is the cumulative experience needed to reach level i+1.
var thresholds = buildThresholds()

func buildThresholds() []int64 {
	t := make([]int64, MaxLevel)
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		t[lvl-1] = t[lvl-2] + CostForLevel(lvl-1)
	}
	return t
}

// CostForLevel returns the experience needed to advance from level to level+1.
// Returns 0 at or beyond MaxLevel.
func CostForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level >= MaxLevel {
		return 0
	}
	return int64(level) * CostPerLevel
}

// ExperienceForLevel returns the cumulative experience at which a character
// reaches targetLevel. Levels <= 1 need 0; levels above MaxLevel are clamped.
func ExperienceForLevel(targetLevel int) int64 {
	if targetLevel <= 1 {
		return 0
	}
	if targetLevel > MaxLevel {
		targetLevel = MaxLevel
	}
	return thresholds[targetLevel-1]
}

// FromExperience computes level state for a cumulative experience total.
// Negative totals are clamped to 0.
func FromExperience(totalExp int64) Info {
	if totalExp <= 0 {
		return Info{
			Level:        1,
			NextLevelExp: CostForLevel(1),
		}
	}

	// Largest level whose threshold has been met. Equivalent to subtracting
	// level costs one at a time until the remainder is short of the next cost.
	level := sort.Search(MaxLevel, func(i int) bool {
		return thresholds[i] > totalExp
	})

	info := Info{
		Level:           level,
		TotalExperience: totalExp,
		CurrentLevelExp: totalExp - thresholds[level-1],
		NextLevelExp:    CostForLevel(level),
	}
	if info.IsMax() {
		info.Progress = 1
		return info
	}
	info.Progress = float64(info.CurrentLevelExp) / float64(info.NextLevelExp)
	return info
}

// LeveledUp reports whether moving from before to after crosses at least one
// level boundary.
func LeveledUp(before, after int64) bool {
	return FromExperience(after).Level > FromExperience(before).Level
}

// LevelsGained returns how many levels were crossed between two totals.
func LevelsGained(before, after int64) int {
	d := FromExperience(after).Level - FromExperience(before).Level
	if d < 0 {
		return 0
	}
	return d
}
