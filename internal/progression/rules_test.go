package progression

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midolearning/village/internal/leveling"
)

// fixedSource returns queued values in order, then repeats the last one.
type fixedSource struct {
	vals  []int
	calls []int
}

func (f *fixedSource) IntN(n int) int {
	f.calls = append(f.calls, n)
	if len(f.vals) == 0 {
		return 0
	}
	v := f.vals[0]
	if len(f.vals) > 1 {
		f.vals = f.vals[1:]
	}
	return v % n
}

func typingDefinition() Definition {
	return Definition{
		ID:                     "english-typing",
		Name:                   "English Typing",
		Status:                 StatusActive,
		BaseExperience:         10,
		TimeBonusPerMinute:     2,
		AccuracyBonusThreshold: 0.9,
		AccuracyBonusAmount:    5,
		StreakBonusThreshold:   3,
		StreakBonusAmount:      10,
		MinPlayTimeMinutes:     10,
		RewardRange:            RewardRange{Min: 1, Max: 5},
		DailyRewardLimit:       20,
		CooldownMinutes:        10,
		Stages: []Stage{
			{ID: "beginner", ExpMultiplier: 1.0, RewardMultiplier: 1.0},
			{ID: "intermediate", ExpMultiplier: 1.5, RewardMultiplier: 1.3, UnlockCharacterLevel: 5},
			{ID: "advanced", ExpMultiplier: 2.0, RewardMultiplier: 1.5, UnlockCharacterLevel: 10},
		},
	}
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func report(elapsed, accuracy float64) SessionReport {
	return SessionReport{
		SkillID:        "english-typing",
		ElapsedSeconds: elapsed,
		Accuracy:       accuracy,
		Timestamp:      testNow,
	}
}

func TestEvaluate_HighAccuracyStreakBonus(t *testing.T) {
	rules := NewRules(&fixedSource{vals: []int{2}})
	progress := SkillProgress{SkillLevel: 1, Streak: 2}

	out, err := rules.Evaluate(typingDefinition(), progress, report(120, 0.95))
	require.NoError(t, err)

	assert.Equal(t, int64(29), out.ExperienceGained)
	assert.Equal(t, Breakdown{Base: 10, Time: 4, Accuracy: 5, Streak: 10}, out.Breakdown)
	assert.Equal(t, 3, out.NewStreak)
	assert.True(t, out.Qualified)
	assert.Equal(t, 3, out.NominalCurrency) // min 1 + draw 2
	assert.False(t, out.LeveledUp)
	assert.Equal(t, 1, out.NewSkillLevel.Level)
}

func TestEvaluate_LowAccuracyResetsStreak(t *testing.T) {
	rules := NewRules(&fixedSource{})
	progress := SkillProgress{SkillLevel: 1, Streak: 5}

	out, err := rules.Evaluate(typingDefinition(), progress, report(120, 0.5))
	require.NoError(t, err)

	assert.Equal(t, int64(14), out.ExperienceGained)
	assert.Equal(t, 0, out.NewStreak)
	assert.False(t, out.Qualified)
}

func TestEvaluate_StreakResetsRegardlessOfPrior(t *testing.T) {
	rules := NewRules(&fixedSource{})
	for _, prior := range []int{0, 1, 2, 50, 1000} {
		out, err := rules.Evaluate(typingDefinition(), SkillProgress{SkillLevel: 1, Streak: prior}, report(60, 0.89))
		require.NoError(t, err)
		assert.Equalf(t, 0, out.NewStreak, "prior streak %d", prior)
		assert.Zerof(t, out.Breakdown.Streak, "prior streak %d", prior)
	}
}

func TestEvaluate_StreakBonusDisabledAtZeroThreshold(t *testing.T) {
	def := typingDefinition()
	def.StreakBonusThreshold = 0

	out, err := NewRules(nil).Evaluate(def, SkillProgress{SkillLevel: 1, Streak: 10}, report(0, 1))
	require.NoError(t, err)
	assert.Zero(t, out.Breakdown.Streak)
	assert.Equal(t, 11, out.NewStreak)
}

func TestEvaluate_LevelUp(t *testing.T) {
	rules := NewRules(&fixedSource{})
	progress := SkillProgress{SkillLevel: 1, SkillExperience: 90}

	out, err := rules.Evaluate(typingDefinition(), progress, report(60, 0.5))
	require.NoError(t, err)

	// 10 base + 2 time = 12 -> 102 total.
	assert.True(t, out.LeveledUp)
	assert.Equal(t, 2, out.NewSkillLevel.Level)
	assert.Equal(t, int64(2), out.NewSkillLevel.CurrentLevelExp)
}

func TestEvaluate_MonotonicInElapsed(t *testing.T) {
	rules := NewRules(&fixedSource{})
	def := typingDefinition()
	var prev int64
	for secs := 0.0; secs <= 3600; secs += 7 {
		out, err := rules.Evaluate(def, SkillProgress{SkillLevel: 1}, report(secs, 0.95))
		require.NoError(t, err)
		require.GreaterOrEqualf(t, out.ExperienceGained, prev, "elapsed %v", secs)
		prev = out.ExperienceGained
	}
}

func TestEvaluate_MonotonicInHugeElapsed(t *testing.T) {
	rules := NewRules(&fixedSource{})
	def := typingDefinition()
	var prev int64
	var prevLevel int
	for _, secs := range []float64{3600, 1e9, 1e15, 1e17, 1e18, 1e19, 1e24, 1e30, math.MaxFloat64} {
		out, err := rules.Evaluate(def, SkillProgress{SkillLevel: 1}, report(secs, 0.5))
		require.NoError(t, err)
		require.GreaterOrEqualf(t, out.ExperienceGained, prev, "elapsed %v", secs)
		require.GreaterOrEqualf(t, out.NewSkillLevel.Level, prevLevel, "elapsed %v", secs)
		require.GreaterOrEqualf(t, out.Breakdown.Time, int64(0), "elapsed %v", secs)
		prev, prevLevel = out.ExperienceGained, out.NewSkillLevel.Level
	}
	assert.Equal(t, int64(MaxComponent), prev-10)
	assert.Equal(t, leveling.MaxLevel, prevLevel)
}

func TestAddExperience(t *testing.T) {
	assert.Equal(t, int64(150), AddExperience(100, 50))
	assert.Equal(t, int64(math.MaxInt64), AddExperience(math.MaxInt64-5, 10))
	assert.Equal(t, int64(math.MaxInt64), AddExperience(math.MaxInt64, MaxComponent))
}

func TestApply_SaturatesExperience(t *testing.T) {
	progress := SkillProgress{SkillLevel: leveling.MaxLevel, SkillExperience: math.MaxInt64 - 1}
	out := Outcome{ExperienceGained: MaxComponent, NewSkillLevel: leveling.FromExperience(math.MaxInt64)}
	next := Apply(progress, report(60, 0.5), out)
	assert.Equal(t, int64(math.MaxInt64), next.SkillExperience)
}

func TestEvaluate_Deterministic(t *testing.T) {
	def := typingDefinition()
	progress := SkillProgress{SkillLevel: 2, SkillExperience: 150, Streak: 1}
	a, err := NewRules(&fixedSource{vals: []int{0}}).Evaluate(def, progress, report(300, 0.93))
	require.NoError(t, err)
	b, err := NewRules(&fixedSource{vals: []int{4}}).Evaluate(def, progress, report(300, 0.93))
	require.NoError(t, err)

	assert.Equal(t, a.ExperienceGained, b.ExperienceGained)
	assert.Equal(t, a.NewStreak, b.NewStreak)
	assert.Equal(t, a.NewSkillLevel, b.NewSkillLevel)
}

func TestEvaluate_NominalCurrencyInRange(t *testing.T) {
	rules := NewRules(nil)
	def := typingDefinition()
	for i := 0; i < 500; i++ {
		out, err := rules.Evaluate(def, SkillProgress{SkillLevel: 1}, report(600, 0.7))
		require.NoError(t, err)
		require.GreaterOrEqual(t, out.NominalCurrency, def.RewardRange.Min)
		require.LessOrEqual(t, out.NominalCurrency, def.RewardRange.Max)
	}
}

func TestEvaluate_FixedRewardRange(t *testing.T) {
	src := &fixedSource{}
	def := typingDefinition()
	def.RewardRange = RewardRange{Min: 3, Max: 3}

	out, err := NewRules(src).Evaluate(def, SkillProgress{SkillLevel: 1}, report(60, 0.7))
	require.NoError(t, err)
	assert.Equal(t, 3, out.NominalCurrency)
	assert.Empty(t, src.calls, "a single-value range should not consume randomness")
}

func TestEvaluate_StageMultipliers(t *testing.T) {
	src := &fixedSource{vals: []int{100}}
	rep := report(120, 0.5)
	rep.StageID = "advanced"

	out, err := NewRules(src).Evaluate(typingDefinition(), SkillProgress{SkillLevel: 1}, rep)
	require.NoError(t, err)

	// Base 10 * 2.0; time bonus is not multiplied.
	assert.Equal(t, int64(20), out.Breakdown.Base)
	assert.Equal(t, int64(4), out.Breakdown.Time)
	// Max 5 * 1.5 = 7, so the draw spans 7 values.
	require.Len(t, src.calls, 1)
	assert.Equal(t, 7, src.calls[0])
}

func TestEvaluate_UnknownStage(t *testing.T) {
	rep := report(120, 0.5)
	rep.StageID = "expert"

	_, err := NewRules(nil).Evaluate(typingDefinition(), SkillProgress{SkillLevel: 1}, rep)
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
	assert.True(t, errors.Is(err, ErrUnknownStage))
}

func TestEvaluate_RejectsInvalidReports(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*SessionReport)
		field string
	}{
		{"accuracy above one", func(r *SessionReport) { r.Accuracy = 1.01 }, "accuracy"},
		{"negative accuracy", func(r *SessionReport) { r.Accuracy = -0.1 }, "accuracy"},
		{"negative elapsed", func(r *SessionReport) { r.ElapsedSeconds = -1 }, "elapsedSeconds"},
		{"missing skill", func(r *SessionReport) { r.SkillID = "" }, "skillId"},
		{"missing timestamp", func(r *SessionReport) { r.Timestamp = time.Time{} }, "timestamp"},
		{"negative streak", func(r *SessionReport) { r.StreakAtCompletion = -2 }, "streakAtCompletion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := report(120, 0.9)
			tt.mod(&rep)

			_, err := NewRules(nil).Evaluate(typingDefinition(), SkillProgress{SkillLevel: 1}, rep)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEvaluate_RejectsInconsistentProgress(t *testing.T) {
	_, err := NewRules(nil).Evaluate(typingDefinition(), SkillProgress{SkillLevel: 5, SkillExperience: 10}, report(60, 0.9))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "skillLevel", verr.Field)
}

func TestEvaluate_ZeroProgressIsFresh(t *testing.T) {
	out, err := NewRules(nil).Evaluate(typingDefinition(), SkillProgress{}, report(60, 0.9))
	require.NoError(t, err)
	assert.Equal(t, 1, out.NewStreak)
}

func TestEvaluate_DoesNotMutateProgress(t *testing.T) {
	acc := 0.8
	progress := SkillProgress{SkillLevel: 1, SkillExperience: 40, Streak: 2, BestScore: &BestScore{Accuracy: &acc}}
	before := progress

	_, err := NewRules(nil).Evaluate(typingDefinition(), progress, report(120, 0.95))
	require.NoError(t, err)
	assert.Equal(t, before, progress)
	assert.Equal(t, 0.8, *progress.BestScore.Accuracy)
}

func TestApply(t *testing.T) {
	wpm := 42.0
	rep := report(150, 0.95)
	rep.WPM = &wpm

	prevAcc := 0.97
	progress := SkillProgress{
		SkillLevel:      1,
		SkillExperience: 90,
		PlayCount:       4,
		Streak:          2,
		BestScore:       &BestScore{Accuracy: &prevAcc},
	}

	out, err := NewRules(&fixedSource{}).Evaluate(typingDefinition(), progress, rep)
	require.NoError(t, err)

	next := Apply(progress, rep, out)
	assert.Equal(t, int64(90)+out.ExperienceGained, next.SkillExperience)
	assert.Equal(t, leveling.FromExperience(next.SkillExperience).Level, next.SkillLevel)
	assert.Equal(t, 5, next.PlayCount)
	assert.Equal(t, 3, next.Streak)
	assert.InDelta(t, 2.5, next.TotalPlayTimeMinutes, 1e-9)
	require.NotNil(t, next.BestScore)
	assert.Equal(t, 0.97, *next.BestScore.Accuracy, "best accuracy must not decrease")
	assert.Equal(t, 42.0, *next.BestScore.WPM)
	assert.Nil(t, next.BestScore.Score)
	require.NotNil(t, next.LastPlayedAt)
	assert.True(t, next.LastPlayedAt.Equal(testNow))
	require.NoError(t, next.Validate())

	// Input untouched.
	assert.Equal(t, 4, progress.PlayCount)
	assert.Nil(t, progress.BestScore.WPM)
}
