package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/midolearning/village/internal/village"
)

var ledgerColumns = []string{"sequence", "character_id", "skill_id", "session_id", "amount", "granted_at"}

func (t *tx) AppendReward(ctx context.Context, e village.RewardEntry) (village.RewardEntry, error) {
	seqNum, err := t.seq.Next(ctx, t.tx)
	if err != nil {
		return village.RewardEntry{}, fmt.Errorf("next sequence: %w", err)
	}
	e.Sequence = seqNum
	e.GrantedAt = e.GrantedAt.UTC()

	ins := t.b.Insert(tableLedger).
		Columns(ledgerColumns...).
		Values(e.Sequence, e.CharacterID, e.SkillID, e.SessionID, e.Amount, toNanos(e.GrantedAt))
	if _, err := t.exec(ctx, ins); err != nil {
		return village.RewardEntry{}, fmt.Errorf("save ledger entry: %w", err)
	}
	return e, nil
}

func (t *tx) Ledger(ctx context.Context, characterID, skillID string, since time.Time) ([]village.RewardEntry, error) {
	sel := t.b.Select(ledgerColumns...).
		From(entsql.Table(tableLedger)).
		Where(entsql.And(
			entsql.EQ("character_id", characterID),
			entsql.EQ("skill_id", skillID),
			entsql.GTE("granted_at", toNanos(since)),
		)).
		OrderBy("sequence")
	return t.scanLedger(ctx, sel)
}

func (t *tx) Rewards(ctx context.Context, characterID string, limit int) ([]village.RewardEntry, error) {
	sel := t.b.Select(ledgerColumns...).
		From(entsql.Table(tableLedger)).
		Where(entsql.EQ("character_id", characterID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	return t.scanLedger(ctx, sel)
}

func (t *tx) scanLedger(ctx context.Context, sel *entsql.Selector) ([]village.RewardEntry, error) {
	rows, err := t.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []village.RewardEntry
	for rows.Next() {
		var (
			e         village.RewardEntry
			grantedAt int64
		)
		if err := rows.Scan(&e.Sequence, &e.CharacterID, &e.SkillID, &e.SessionID, &e.Amount, &grantedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		e.GrantedAt = fromNanos(grantedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return out, nil
}
