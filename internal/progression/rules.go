// Package progression computes the experience, streak and nominal currency
// earned by one completed skill session.
package progression

import (
	"math"
	"math/rand/v2"

	"github.com/midolearning/village/internal/leveling"
)

// Source draws pseudo-random integers in [0, n). Implementations used by a
// shared Rules value must be safe for concurrent use.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns a Source backed by math/rand/v2's top-level
// generator, which is safe for concurrent use.
func DefaultSource() Source {
	return globalSource{}
}

// Rules evaluates sessions. It holds no mutable state besides its random
// source.
type Rules struct {
	rng Source
}

// NewRules creates Rules drawing rewards from src. A nil src uses
// DefaultSource.
func NewRules(src Source) *Rules {
	if src == nil {
		src = DefaultSource()
	}
	return &Rules{rng: src}
}

// Evaluate computes the outcome of one session. It validates the report and
// the progress record first and never mutates progress.
func (r *Rules) Evaluate(def Definition, progress SkillProgress, report SessionReport) (Outcome, error) {
	if err := ValidateReport(report); err != nil {
		return Outcome{}, err
	}
	if report.SkillID != def.ID {
		return Outcome{}, invalid("skillId", "report for %q evaluated against %q", report.SkillID, def.ID)
	}
	progress = progress.normalized()
	if err := progress.Validate(); err != nil {
		return Outcome{}, err
	}
	stage, err := def.Stage(report.StageID)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{}
	out.Breakdown = ExperienceBreakdown(def, stage, report, progress.Streak)
	out.ExperienceGained = out.Breakdown.Total()
	out.Qualified = Qualifies(def, report)
	out.NewStreak = NextStreak(def, report, progress.Streak)

	out.NewSkillLevel = leveling.FromExperience(AddExperience(progress.SkillExperience, out.ExperienceGained))
	out.LeveledUp = out.NewSkillLevel.Level > progress.SkillLevel

	out.NominalCurrency = r.draw(def.StageRewardRange(stage))
	return out, nil
}

// draw picks uniformly from rr, both ends inclusive.
func (r *Rules) draw(rr RewardRange) int {
	if rr.Max <= rr.Min {
		return rr.Min
	}
	return rr.Min + r.rng.IntN(rr.Max-rr.Min+1)
}

// Qualifies reports whether a session is "good": it earns the accuracy bonus
// and continues the streak.
func Qualifies(def Definition, report SessionReport) bool {
	return report.Accuracy >= def.AccuracyBonusThreshold
}

// NextStreak returns the streak after the session. A non-qualifying session
// resets it to 0 regardless of its previous value.
func NextStreak(def Definition, report SessionReport, current int) int {
	if !Qualifies(def, report) {
		return 0
	}
	if current < 0 {
		current = 0
	}
	return current + 1
}

// ExperienceBreakdown computes each experience component for a session.
// currentStreak is the streak before the session.
func ExperienceBreakdown(def Definition, stage Stage, report SessionReport, currentStreak int) Breakdown {
	var b Breakdown

	base := float64(def.BaseExperience)
	if stage.ExpMultiplier > 0 {
		base *= stage.ExpMultiplier
	}
	b.Base = component(math.Floor(base))

	minutes := math.Floor(report.ElapsedMinutes())
	b.Time = component(minutes * float64(def.TimeBonusPerMinute))

	if Qualifies(def, report) {
		b.Accuracy = component(float64(def.AccuracyBonusAmount))
	}

	streak := NextStreak(def, report, currentStreak)
	if def.StreakBonusThreshold > 0 && streak >= def.StreakBonusThreshold {
		b.Streak = component(float64(def.StreakBonusAmount))
	}
	return b
}

// MaxComponent caps each experience component so that a Breakdown total
// cannot overflow int64.
const MaxComponent = math.MaxInt64 / 4

// component converts v to a non-negative experience amount, saturating at
// MaxComponent. The conversion is monotonic in v.
func component(v float64) int64 {
	switch {
	case !(v > 0):
		return 0
	case v >= MaxComponent:
		return MaxComponent
	default:
		return int64(v)
	}
}

// AddExperience adds gained to total, saturating at math.MaxInt64.
func AddExperience(total, gained int64) int64 {
	if gained > 0 && total > math.MaxInt64-gained {
		return math.MaxInt64
	}
	return total + gained
}
