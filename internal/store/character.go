package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/village"
)

var characterColumns = []string{
	"id", "name", "level", "total_experience",
	"total_earned", "available", "redeemed",
	"created_at", "updated_at",
}

var skillColumns = []string{
	"character_id", "skill_id", "skill_level", "skill_experience",
	"play_count", "total_play_minutes", "streak",
	"best_accuracy", "best_wpm", "best_score", "last_played_at",
}

func (t *tx) CreateCharacter(ctx context.Context, c *village.Character) error {
	ins := t.b.Insert(tableCharacters).
		Columns(characterColumns...).
		Values(
			c.ID, c.Name, c.Level, c.TotalExperience,
			c.Wallet.TotalEarned, c.Wallet.Available, c.Wallet.Redeemed,
			toNanos(c.CreatedAt), toNanos(c.UpdatedAt),
		)
	if _, err := t.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert character: %w", err)
	}
	return t.saveSkills(ctx, c)
}

func (t *tx) Character(ctx context.Context, id string) (*village.Character, error) {
	sel := t.b.Select(characterColumns...).
		From(entsql.Table(tableCharacters)).
		Where(entsql.EQ("id", id))

	var (
		c                    village.Character
		createdAt, updatedAt int64
	)
	err := t.queryRow(ctx, sel).Scan(
		&c.ID, &c.Name, &c.Level, &c.TotalExperience,
		&c.Wallet.TotalEarned, &c.Wallet.Available, &c.Wallet.Redeemed,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", village.ErrCharacterNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query character: %w", err)
	}
	c.CreatedAt = fromNanos(createdAt)
	c.UpdatedAt = fromNanos(updatedAt)

	skills, err := t.skills(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Skills = skills
	return &c, nil
}

func (t *tx) SaveCharacter(ctx context.Context, c *village.Character) error {
	upd := t.b.Update(tableCharacters).
		Set("name", c.Name).
		Set("level", c.Level).
		Set("total_experience", c.TotalExperience).
		Set("total_earned", c.Wallet.TotalEarned).
		Set("available", c.Wallet.Available).
		Set("redeemed", c.Wallet.Redeemed).
		Set("updated_at", toNanos(c.UpdatedAt)).
		Where(entsql.EQ("id", c.ID))

	res, err := t.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", village.ErrCharacterNotFound, c.ID)
	}
	return t.saveSkills(ctx, c)
}

func (t *tx) saveSkills(ctx context.Context, c *village.Character) error {
	for skillID, p := range c.Skills {
		var best progression.BestScore
		if p.BestScore != nil {
			best = *p.BestScore
		}
		var lastPlayed sql.NullInt64
		if p.LastPlayedAt != nil {
			lastPlayed = sql.NullInt64{Int64: toNanos(*p.LastPlayedAt), Valid: true}
		}

		ins := t.b.Insert(tableSkills).
			Columns(skillColumns...).
			Values(
				c.ID, skillID, p.SkillLevel, p.SkillExperience,
				p.PlayCount, p.TotalPlayTimeMinutes, p.Streak,
				nullFloat(best.Accuracy), nullFloat(best.WPM), nullFloat(best.Score), lastPlayed,
			).
			OnConflict(
				entsql.ConflictColumns("character_id", "skill_id"),
				entsql.ResolveWithNewValues(),
			)
		if _, err := t.exec(ctx, ins); err != nil {
			return fmt.Errorf("upsert skill %s: %w", skillID, err)
		}
	}
	return nil
}

func (t *tx) skills(ctx context.Context, characterID string) (map[string]progression.SkillProgress, error) {
	sel := t.b.Select(skillColumns...).
		From(entsql.Table(tableSkills)).
		Where(entsql.EQ("character_id", characterID))

	rows, err := t.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	out := make(map[string]progression.SkillProgress)
	for rows.Next() {
		var (
			charID, skillID      string
			p                    progression.SkillProgress
			accuracy, wpm, score sql.NullFloat64
			lastPlayed           sql.NullInt64
		)
		err := rows.Scan(
			&charID, &skillID, &p.SkillLevel, &p.SkillExperience,
			&p.PlayCount, &p.TotalPlayTimeMinutes, &p.Streak,
			&accuracy, &wpm, &score, &lastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		if accuracy.Valid || wpm.Valid || score.Valid {
			p.BestScore = &progression.BestScore{
				Accuracy: floatPtr(accuracy),
				WPM:      floatPtr(wpm),
				Score:    floatPtr(score),
			}
		}
		if lastPlayed.Valid {
			ts := fromNanos(lastPlayed.Int64)
			p.LastPlayedAt = &ts
		}
		out[skillID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}
	return out, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
