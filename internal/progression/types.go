package progression

import (
	"time"

	"github.com/midolearning/village/internal/leveling"
)

// SkillProgress is a character's standing in one skill.
type SkillProgress struct {
	SkillLevel           int        `json:"skill_level"`
	SkillExperience      int64      `json:"skill_experience"`
	PlayCount            int        `json:"play_count"`
	TotalPlayTimeMinutes float64    `json:"total_play_time_minutes"`
	Streak               int        `json:"streak"`
	BestScore            *BestScore `json:"best_score,omitempty"`
	LastPlayedAt         *time.Time `json:"last_played_at,omitempty"`
}

// NewSkillProgress returns the progress of a skill that was never played.
func NewSkillProgress() SkillProgress {
	return SkillProgress{SkillLevel: 1}
}

// normalized treats the zero value as a fresh record.
func (p SkillProgress) normalized() SkillProgress {
	if p.SkillLevel == 0 && p.SkillExperience == 0 {
		p.SkillLevel = 1
	}
	return p
}

// Validate checks that the stored level agrees with the stored experience
// and that counters are in range.
func (p SkillProgress) Validate() error {
	p = p.normalized()
	if p.SkillExperience < 0 {
		return invalid("skillExperience", "must not be negative, got %d", p.SkillExperience)
	}
	if p.Streak < 0 {
		return invalid("streak", "must not be negative, got %d", p.Streak)
	}
	if p.PlayCount < 0 {
		return invalid("playCount", "must not be negative, got %d", p.PlayCount)
	}
	if want := leveling.FromExperience(p.SkillExperience).Level; p.SkillLevel != want {
		return invalid("skillLevel", "level %d does not match experience %d (level %d)",
			p.SkillLevel, p.SkillExperience, want)
	}
	return nil
}

// BestScore keeps the best value seen per metric. Nil means never recorded.
type BestScore struct {
	Accuracy *float64 `json:"accuracy,omitempty"`
	WPM      *float64 `json:"wpm,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// Merge returns a copy of b raised to any better metric in report.
func (b *BestScore) Merge(report SessionReport) *BestScore {
	out := &BestScore{}
	if b != nil {
		*out = *b
	}
	out.Accuracy = maxPtr(out.Accuracy, &report.Accuracy)
	out.WPM = maxPtr(out.WPM, report.WPM)
	out.Score = maxPtr(out.Score, report.Score)
	return out
}

func maxPtr(cur, next *float64) *float64 {
	if next == nil {
		return cur
	}
	if cur == nil || *next > *cur {
		v := *next
		return &v
	}
	return cur
}

// SessionReport is produced once per completed game and consumed immediately.
type SessionReport struct {
	SkillID   string `json:"skill_id"`
	StageID   string `json:"stage_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Accuracy       float64 `json:"accuracy"` // 0.0-1.0

	// StreakAtCompletion is what the client showed the player. The
	// authoritative streak is the one stored in SkillProgress.
	StreakAtCompletion int `json:"streak_at_completion"`

	WPM   *float64 `json:"wpm,omitempty"`
	Score *float64 `json:"score,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// ElapsedMinutes returns the session length in fractional minutes.
func (r SessionReport) ElapsedMinutes() float64 {
	return r.ElapsedSeconds / 60
}

// Breakdown itemizes where a session's experience came from.
type Breakdown struct {
	Base     int64 `json:"base"`
	Time     int64 `json:"time"`
	Accuracy int64 `json:"accuracy"`
	Streak   int64 `json:"streak"`
}

// Total sums all components.
func (b Breakdown) Total() int64 {
	return b.Base + b.Time + b.Accuracy + b.Streak
}

// Outcome is the result of evaluating one session. It describes deltas and
// projections; nothing has been applied yet.
type Outcome struct {
	ExperienceGained int64         `json:"experience_gained"`
	Breakdown        Breakdown     `json:"breakdown"`
	NominalCurrency  int           `json:"nominal_currency"`
	NewStreak        int           `json:"new_streak"`
	Qualified        bool          `json:"qualified"` // met the accuracy threshold
	LeveledUp        bool          `json:"leveled_up"`
	NewSkillLevel    leveling.Info `json:"new_skill_level"`
}
