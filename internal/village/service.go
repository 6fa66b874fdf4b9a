// Package village orchestrates session completion: it loads a character,
// runs the progression rules and reward throttle, and persists the result in
// one unit of work.
package village

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/midolearning/village/internal/gems"
	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/throttle"
)

// Play time outside this window is rejected as implausible.
const (
	MinPlausibleSeconds = 10
	MaxPlausibleSeconds = 3600
)

// MaxClockSkew is how far ahead of the server clock a reported completion
// time may be.
const MaxClockSkew = 5 * time.Minute

// Definitions resolves skill definitions by id.
type Definitions interface {
	Lookup(id string) (progression.Definition, error)
}

// Observer is notified after each session attempt.
type Observer interface {
	SessionCompleted(skillID string, res *Result)
	SessionRejected(skillID string, err error)
}

// Service completes game sessions and manages characters.
type Service struct {
	repo     Repository
	defs     Definitions
	rules    *progression.Rules
	throttle *throttle.Throttle
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
	locks    *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithRules overrides the progression rules, e.g. to inject a random source.
func WithRules(r *progression.Rules) Option {
	return func(s *Service) { s.rules = r }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithObserver registers a session observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service backed by repo and defs.
func NewService(repo Repository, defs Definitions, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		defs:  defs,
		rules: progression.NewRules(nil),
		now:   time.Now,
		locks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.throttle = throttle.New(s.logger)
	return s
}

// CreateCharacter creates a level 1 character with an empty wallet.
func (s *Service) CreateCharacter(ctx context.Context, name string) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &progression.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(name) > 64 {
		return nil, &progression.ValidationError{Field: "name", Reason: "must be at most 64 bytes"}
	}

	now := s.now().UTC()
	c := &Character{
		ID:        uuid.New().String(),
		Name:      name,
		Level:     1,
		Skills:    map[string]progression.SkillProgress{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.repo.Update(ctx, func(tx Tx) error {
		return tx.CreateCharacter(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	s.logger.Info("character created", "character", c.ID, "name", c.Name)
	return c, nil
}

// Character loads a character.
func (s *Service) Character(ctx context.Context, id string) (*Character, error) {
	var c *Character
	err := s.repo.View(ctx, func(tx Tx) error {
		var err error
		c, err = tx.Character(ctx, id)
		return err
	})
	return c, err
}

// Profile is a character together with its gem totals.
type Profile struct {
	*Character
	Gems map[gems.GemType]int `json:"gems"`
}

// Profile loads a character and its gem counts.
func (s *Service) Profile(ctx context.Context, id string) (*Profile, error) {
	p := &Profile{}
	err := s.repo.View(ctx, func(tx Tx) error {
		c, err := tx.Character(ctx, id)
		if err != nil {
			return err
		}
		counts, err := tx.GemCounts(ctx, id)
		if err != nil {
			return err
		}
		p.Character, p.Gems = c, counts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Rewards lists the newest ledger entries for a character.
func (s *Service) Rewards(ctx context.Context, characterID string, limit int) ([]RewardEntry, error) {
	var out []RewardEntry
	err := s.repo.View(ctx, func(tx Tx) error {
		if _, err := tx.Character(ctx, characterID); err != nil {
			return err
		}
		var err error
		out, err = tx.Rewards(ctx, characterID, limit)
		return err
	})
	return out, err
}

// Sessions lists the newest game sessions for a character.
func (s *Service) Sessions(ctx context.Context, characterID string, limit int) ([]GameSession, error) {
	var out []GameSession
	err := s.repo.View(ctx, func(tx Tx) error {
		if _, err := tx.Character(ctx, characterID); err != nil {
			return err
		}
		var err error
		out, err = tx.Sessions(ctx, characterID, limit)
		return err
	})
	return out, err
}

// Redeem spends amount from the character's available balance.
func (s *Service) Redeem(ctx context.Context, characterID string, amount int) (Wallet, error) {
	if amount <= 0 {
		return Wallet{}, &progression.ValidationError{Field: "amount", Reason: fmt.Sprintf("must be positive, got %d", amount)}
	}

	var w Wallet
	err := s.repo.Update(ctx, func(tx Tx) error {
		c, err := tx.Character(ctx, characterID)
		if err != nil {
			return err
		}
		if c.Wallet.Available < amount {
			return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientBalance, c.Wallet.Available, amount)
		}
		c.Wallet.Available -= amount
		c.Wallet.Redeemed += amount
		c.UpdatedAt = s.now().UTC()
		if err := tx.SaveCharacter(ctx, c); err != nil {
			return err
		}
		w = c.Wallet
		return nil
	})
	if err != nil {
		return Wallet{}, err
	}
	s.logger.Info("currency redeemed", "character", characterID, "amount", amount, "available", w.Available)
	return w, nil
}

// CompleteSession records a finished game session for a character. Evaluate,
// authorize and persist run under a per (character, skill) lock inside one
// unit of work, so concurrent submissions cannot bypass cooldown or the
// daily cap. Cooldown and the daily window use the server clock; the
// report timestamp only dates the session in history and may not lie more
// than MaxClockSkew in the future. A report without a timestamp is stamped
// with the current time, and one without a session id gets a fresh one.
func (s *Service) CompleteSession(ctx context.Context, characterID string, report progression.SessionReport) (*Result, error) {
	res, err := s.completeSession(ctx, characterID, report)
	if s.observer != nil {
		if err != nil {
			s.observer.SessionRejected(report.SkillID, err)
		} else {
			s.observer.SessionCompleted(report.SkillID, res)
		}
	}
	return res, err
}

func (s *Service) completeSession(ctx context.Context, characterID string, report progression.SessionReport) (*Result, error) {
	now := s.now().UTC()
	if report.Timestamp.IsZero() {
		report.Timestamp = now
	}
	report.Timestamp = report.Timestamp.UTC()
	if report.SessionID == "" {
		report.SessionID = uuid.New().String()
	}

	if err := progression.ValidateReport(report); err != nil {
		return nil, err
	}
	if report.Timestamp.After(now.Add(MaxClockSkew)) {
		return nil, &progression.ValidationError{
			Field:  "timestamp",
			Reason: fmt.Sprintf("%s is in the future", report.Timestamp.Format(time.RFC3339)),
		}
	}
	if report.ElapsedSeconds < MinPlausibleSeconds || report.ElapsedSeconds > MaxPlausibleSeconds {
		return nil, &progression.ValidationError{
			Field:  "elapsedSeconds",
			Reason: fmt.Sprintf("implausible play time %.0fs, want %d-%ds", report.ElapsedSeconds, MinPlausibleSeconds, MaxPlausibleSeconds),
		}
	}

	def, err := s.defs.Lookup(report.SkillID)
	if err != nil {
		return nil, err
	}
	stage, err := def.Stage(report.StageID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(characterID + "/" + def.ID)
	defer unlock()

	var res *Result
	err = s.repo.Update(ctx, func(tx Tx) error {
		c, err := tx.Character(ctx, characterID)
		if err != nil {
			return err
		}

		dup, err := tx.SessionExists(ctx, report.SessionID)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSession, report.SessionID)
		}

		progress := c.Skill(def.ID)
		if report.StageID != "" && !stage.Unlocked(c.Level, max(progress.SkillLevel, 1)) {
			return fmt.Errorf("%w: %s/%s needs character level %d and skill level %d",
				ErrStageLocked, def.ID, stage.ID, stage.UnlockCharacterLevel, stage.UnlockSkillLevel)
		}

		out, err := s.rules.Evaluate(def, progress, report)
		if err != nil {
			return err
		}

		// Cooldown and the daily window run on the server clock. The
		// reported timestamp is kept as play history only.
		grantAt := s.now().UTC()
		rows, err := tx.Ledger(ctx, c.ID, def.ID, ledgerSince(def, grantAt))
		if err != nil {
			return err
		}
		ledger := make([]throttle.LedgerEntry, len(rows))
		for i, r := range rows {
			ledger[i] = r.LedgerEntry()
		}
		authorized := report
		authorized.Timestamp = grantAt
		decision := s.throttle.Authorize(def, ledger, authorized, out.NominalCurrency)

		prevLevel := c.Level
		if c.Skills == nil {
			c.Skills = map[string]progression.SkillProgress{}
		}
		c.Skills[def.ID] = progression.Apply(progress, report, out)
		c.TotalExperience = progression.AddExperience(c.TotalExperience, out.ExperienceGained)
		info := c.LevelInfo()
		c.Level = info.Level
		c.UpdatedAt = s.now().UTC()

		if decision.Granted > 0 {
			c.Wallet.TotalEarned += decision.Granted
			c.Wallet.Available += decision.Granted
			_, err := tx.AppendReward(ctx, RewardEntry{
				CharacterID: c.ID,
				SkillID:     def.ID,
				SessionID:   report.SessionID,
				Amount:      decision.Granted,
				GrantedAt:   grantAt,
			})
			if err != nil {
				return err
			}
		}
		if err := tx.SaveCharacter(ctx, c); err != nil {
			return err
		}

		err = tx.RecordSession(ctx, GameSession{
			ID:               uuid.New().String(),
			CharacterID:      c.ID,
			SessionID:        report.SessionID,
			SkillID:          def.ID,
			StageID:          report.StageID,
			ElapsedSeconds:   report.ElapsedSeconds,
			Accuracy:         report.Accuracy,
			WPM:              report.WPM,
			Score:            report.Score,
			ExperienceGained: out.ExperienceGained,
			NominalCurrency:  out.NominalCurrency,
			CurrencyGranted:  decision.Granted,
			Reason:           decision.Reason,
			PlayedAt:         report.Timestamp,
		})
		if err != nil {
			return err
		}

		awards, err := gems.NewService(tx).AwardSession(ctx, gems.Facts{
			CharacterID:        c.ID,
			SessionID:          report.SessionID,
			SkillID:            def.ID,
			SkillName:          def.Name,
			Accuracy:           report.Accuracy,
			Qualified:          out.Qualified,
			PrevStreak:         progress.Streak,
			NewStreak:          out.NewStreak,
			PrevCharacterLevel: prevLevel,
			NewCharacterLevel:  c.Level,
			PrevSkillLevel:     max(progress.SkillLevel, 1),
			NewSkillLevel:      out.NewSkillLevel.Level,
		})
		if err != nil {
			return err
		}

		res = &Result{
			SessionID:    report.SessionID,
			Outcome:      out,
			Decision:     decision,
			Character:    info,
			LevelUp:      c.Level > prevLevel,
			SkillLevelUp: out.LeveledUp,
			Granted:      decision.Granted,
			Wallet:       c.Wallet,
			Gems:         awards,
		}
		res.Message = resultMessage(res)
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			s.logger.Error("complete session", "character", characterID, "skill", def.ID, "err", err)
		}
		return nil, err
	}

	s.logger.Info("session completed",
		"character", characterID,
		"skill", def.ID,
		"session", report.SessionID,
		"exp", res.Outcome.ExperienceGained,
		"granted", res.Granted,
		"reason", res.Decision.Reason,
		"level", res.Character.Level,
	)
	return res, nil
}

// ledgerSince is the earliest grant time that can affect the throttle: the
// start of the report's day or the start of the cooldown window.
func ledgerSince(def progression.Definition, ts time.Time) time.Time {
	start, _ := throttle.DayWindow(ts)
	cooldownStart := ts.Add(-time.Duration(def.CooldownMinutes) * time.Minute)
	if cooldownStart.Before(start) {
		return cooldownStart
	}
	return start
}

func resultMessage(r *Result) string {
	switch {
	case r.LevelUp:
		return fmt.Sprintf("Level up! You reached level %d.", r.Character.Level)
	case r.Granted > 0:
		return fmt.Sprintf("Earned %d experience and %d coins!", r.Outcome.ExperienceGained, r.Granted)
	default:
		return fmt.Sprintf("Earned %d experience!", r.Outcome.ExperienceGained)
	}
}

func isClientError(err error) bool {
	return progression.IsValidation(err) ||
		progression.IsConfiguration(err) ||
		errors.Is(err, ErrCharacterNotFound) ||
		errors.Is(err, ErrDuplicateSession) ||
		errors.Is(err, ErrStageLocked) ||
		errors.Is(err, ErrInsufficientBalance)
}
