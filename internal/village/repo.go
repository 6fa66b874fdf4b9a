package village

import (
	"context"
	"time"

	"github.com/midolearning/village/internal/gems"
)

// Repository runs units of work against persistent storage. Update commits
// when fn returns nil and rolls back otherwise.
type Repository interface {
	Update(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of operations available inside one unit of work.
type Tx interface {
	gems.Recorder

	// CreateCharacter inserts a new character.
	CreateCharacter(ctx context.Context, c *Character) error

	// Character loads a character with its skills and wallet. It returns
	// ErrCharacterNotFound when no such character exists.
	Character(ctx context.Context, id string) (*Character, error)

	// SaveCharacter writes the character row, its wallet and every skill.
	SaveCharacter(ctx context.Context, c *Character) error

	// SessionExists reports whether a session id was already recorded.
	SessionExists(ctx context.Context, sessionID string) (bool, error)

	// RecordSession stores a completed game session.
	RecordSession(ctx context.Context, s GameSession) error

	// Sessions lists the character's most recent game sessions, newest
	// first. A limit of 0 means no limit.
	Sessions(ctx context.Context, characterID string, limit int) ([]GameSession, error)

	// Ledger returns the character's reward entries for skillID granted at
	// or after since, oldest first.
	Ledger(ctx context.Context, characterID, skillID string, since time.Time) ([]RewardEntry, error)

	// AppendReward adds a ledger entry and returns it with its sequence.
	AppendReward(ctx context.Context, e RewardEntry) (RewardEntry, error)

	// Rewards lists the most recent ledger entries, newest first. A limit
	// of 0 means no limit.
	Rewards(ctx context.Context, characterID string, limit int) ([]RewardEntry, error)

	// GemCounts returns the character's gem totals by type.
	GemCounts(ctx context.Context, characterID string) (map[gems.GemType]int, error)
}
