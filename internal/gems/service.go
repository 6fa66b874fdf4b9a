package gems

import (
	"context"
	"fmt"
	"time"
)

// Recorder persists awarded gems. The store's transaction implements it.
type Recorder interface {
	AppendGem(ctx context.Context, award GemAward) error
}

// Facts describes what changed during one session.
type Facts struct {
	CharacterID string
	SessionID   string
	SkillID     string
	SkillName   string

	Accuracy  float64
	Qualified bool

	PrevStreak, NewStreak                 int
	PrevCharacterLevel, NewCharacterLevel int
	PrevSkillLevel, NewSkillLevel         int
}

// Service manages gem computation and award tracking.
type Service struct {
	recorder Recorder
	now      func() time.Time
}

// NewService creates a gem Service. A nil recorder computes awards without
// persisting them.
func NewService(recorder Recorder) *Service {
	return &Service{recorder: recorder, now: time.Now}
}

// AwardSession evaluates every gem rule for one session and persists the
// awards in order: level, skill level, streak, session.
func (s *Service) AwardSession(ctx context.Context, f Facts) ([]GemAward, error) {
	var awards []GemAward

	if f.NewCharacterLevel > f.PrevCharacterLevel {
		awards = append(awards, GemAward{
			Type:   GemLevel,
			Rarity: LevelRarity(f.NewCharacterLevel),
			Reason: fmt.Sprintf("Reached level %d", f.NewCharacterLevel),
		})
	}

	if f.NewSkillLevel > f.PrevSkillLevel {
		awards = append(awards, GemAward{
			Type:      GemSkillLevel,
			Rarity:    LevelRarity(f.NewSkillLevel),
			SkillID:   f.SkillID,
			SkillName: f.SkillName,
			Reason:    fmt.Sprintf("%s reached level %d", f.SkillName, f.NewSkillLevel),
		})
	}

	if m, ok := CrossedMilestone(f.PrevStreak, f.NewStreak); ok {
		awards = append(awards, GemAward{
			Type:      GemStreak,
			Rarity:    StreakRarity(m),
			SkillID:   f.SkillID,
			SkillName: f.SkillName,
			Reason:    fmt.Sprintf("%d great sessions in a row!", m),
		})
	}

	if f.Qualified {
		awards = append(awards, GemAward{
			Type:      GemSession,
			Rarity:    SessionRarity(f.Accuracy),
			SkillID:   f.SkillID,
			SkillName: f.SkillName,
			Reason:    fmt.Sprintf("Session complete (%.0f%% accuracy)", f.Accuracy*100),
		})
	}

	now := s.now().UTC()
	for i := range awards {
		awards[i].CharacterID = f.CharacterID
		awards[i].SessionID = f.SessionID
		awards[i].AwardedAt = now
		if err := s.persist(ctx, awards[i]); err != nil {
			return nil, err
		}
	}
	return awards, nil
}

func (s *Service) persist(ctx context.Context, award GemAward) error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.AppendGem(ctx, award); err != nil {
		return fmt.Errorf("record %s gem: %w", award.Type, err)
	}
	return nil
}
