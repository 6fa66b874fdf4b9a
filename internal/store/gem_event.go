package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/midolearning/village/internal/gems"
)

func (t *tx) AppendGem(ctx context.Context, award gems.GemAward) error {
	seqNum, err := t.seq.Next(ctx, t.tx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var skillID, skillName sql.NullString
	if award.SkillID != "" {
		skillID = sql.NullString{String: award.SkillID, Valid: true}
		skillName = sql.NullString{String: award.SkillName, Valid: true}
	}

	ins := t.b.Insert(tableGemEvents).
		Columns("sequence", "character_id", "gem_type", "rarity", "skill_id", "skill_name", "session_id", "reason", "awarded_at").
		Values(seqNum, award.CharacterID, string(award.Type), string(award.Rarity), skillID, skillName, award.SessionID, award.Reason, toNanos(award.AwardedAt))
	if _, err := t.exec(ctx, ins); err != nil {
		return fmt.Errorf("save gem event: %w", err)
	}
	return nil
}

func (t *tx) GemCounts(ctx context.Context, characterID string) (map[gems.GemType]int, error) {
	sel := t.b.Select("gem_type", entsql.Count("*")).
		From(entsql.Table(tableGemEvents)).
		Where(entsql.EQ("character_id", characterID)).
		GroupBy("gem_type")

	rows, err := t.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query gem counts: %w", err)
	}
	defer rows.Close()

	byType := make(map[gems.GemType]int)
	for rows.Next() {
		var (
			gemType string
			n       int
		)
		if err := rows.Scan(&gemType, &n); err != nil {
			return nil, fmt.Errorf("scan gem count: %w", err)
		}
		byType[gems.GemType(gemType)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gem counts: %w", err)
	}
	return byType, nil
}
