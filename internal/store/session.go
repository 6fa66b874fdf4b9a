package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/midolearning/village/internal/throttle"
	"github.com/midolearning/village/internal/village"
)

func (t *tx) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	sel := t.b.Select(entsql.Count("*")).
		From(entsql.Table(tableGameSessions)).
		Where(entsql.EQ("session_id", sessionID))

	var n int
	if err := t.queryRow(ctx, sel).Scan(&n); err != nil {
		return false, fmt.Errorf("query session: %w", err)
	}
	return n > 0, nil
}

func (t *tx) RecordSession(ctx context.Context, s village.GameSession) error {
	ins := t.b.Insert(tableGameSessions).
		Columns(sessionColumns...).
		Values(
			s.ID, s.SessionID, s.CharacterID, s.SkillID, s.StageID,
			s.ElapsedSeconds, s.Accuracy, nullFloat(s.WPM), nullFloat(s.Score),
			s.ExperienceGained, s.NominalCurrency, s.CurrencyGranted,
			string(s.Reason), toNanos(s.PlayedAt),
		)
	if _, err := t.exec(ctx, ins); err != nil {
		return fmt.Errorf("save game session: %w", err)
	}
	return nil
}

var sessionColumns = []string{
	"id", "session_id", "character_id", "skill_id", "stage_id",
	"elapsed_seconds", "accuracy", "wpm", "score",
	"experience_gained", "nominal_currency", "currency_granted",
	"reason", "played_at",
}

func (t *tx) Sessions(ctx context.Context, characterID string, limit int) ([]village.GameSession, error) {
	sel := t.b.Select(sessionColumns...).
		From(entsql.Table(tableGameSessions)).
		Where(entsql.EQ("character_id", characterID)).
		OrderBy(entsql.Desc("played_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := t.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []village.GameSession
	for rows.Next() {
		var (
			gs         village.GameSession
			wpm, score sql.NullFloat64
			reason     string
			playedAt   int64
		)
		err := rows.Scan(
			&gs.ID, &gs.SessionID, &gs.CharacterID, &gs.SkillID, &gs.StageID,
			&gs.ElapsedSeconds, &gs.Accuracy, &wpm, &score,
			&gs.ExperienceGained, &gs.NominalCurrency, &gs.CurrencyGranted,
			&reason, &playedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		gs.WPM, gs.Score = floatPtr(wpm), floatPtr(score)
		gs.Reason = throttle.Reason(reason)
		gs.PlayedAt = fromNanos(playedAt)
		out = append(out, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
