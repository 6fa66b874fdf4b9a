package village

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/midolearning/village/internal/gems"
	"github.com/midolearning/village/internal/progression"
)

// memRepo is an in-memory Repository. Update works on a copy of the state
// and swaps it in only on success.
type memRepo struct {
	mu    sync.Mutex
	state *memState
	fail  error // returned by RecordSession when set
}

type memState struct {
	characters map[string]*Character
	sessions   map[string]GameSession
	ledger     []RewardEntry
	gems       []gems.GemAward
	seq        int64
}

func newMemRepo() *memRepo {
	return &memRepo{state: &memState{
		characters: map[string]*Character{},
		sessions:   map[string]GameSession{},
	}}
}

func (r *memRepo) Update(_ context.Context, fn func(Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	work := r.state.clone()
	if err := fn(&memTx{st: work, fail: r.fail}); err != nil {
		return err
	}
	r.state = work
	return nil
}

func (r *memRepo) View(_ context.Context, fn func(Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&memTx{st: r.state.clone()})
}

func (s *memState) clone() *memState {
	out := &memState{
		characters: make(map[string]*Character, len(s.characters)),
		sessions:   make(map[string]GameSession, len(s.sessions)),
		ledger:     append([]RewardEntry(nil), s.ledger...),
		gems:       append([]gems.GemAward(nil), s.gems...),
		seq:        s.seq,
	}
	for id, c := range s.characters {
		out.characters[id] = cloneCharacter(c)
	}
	for id, gs := range s.sessions {
		out.sessions[id] = gs
	}
	return out
}

func cloneCharacter(c *Character) *Character {
	cp := *c
	cp.Skills = make(map[string]progression.SkillProgress, len(c.Skills))
	for k, v := range c.Skills {
		cp.Skills[k] = v
	}
	return &cp
}

type memTx struct {
	st   *memState
	fail error
}

func (t *memTx) CreateCharacter(_ context.Context, c *Character) error {
	t.st.characters[c.ID] = cloneCharacter(c)
	return nil
}

func (t *memTx) Character(_ context.Context, id string) (*Character, error) {
	c, ok := t.st.characters[id]
	if !ok {
		return nil, ErrCharacterNotFound
	}
	return cloneCharacter(c), nil
}

func (t *memTx) SaveCharacter(_ context.Context, c *Character) error {
	if _, ok := t.st.characters[c.ID]; !ok {
		return ErrCharacterNotFound
	}
	t.st.characters[c.ID] = cloneCharacter(c)
	return nil
}

func (t *memTx) SessionExists(_ context.Context, sessionID string) (bool, error) {
	_, ok := t.st.sessions[sessionID]
	return ok, nil
}

func (t *memTx) RecordSession(_ context.Context, s GameSession) error {
	if t.fail != nil {
		return t.fail
	}
	t.st.sessions[s.SessionID] = s
	return nil
}

func (t *memTx) Sessions(_ context.Context, characterID string, limit int) ([]GameSession, error) {
	var out []GameSession
	for _, gs := range t.st.sessions {
		if gs.CharacterID == characterID {
			out = append(out, gs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayedAt.After(out[j].PlayedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) Ledger(_ context.Context, characterID, skillID string, since time.Time) ([]RewardEntry, error) {
	var out []RewardEntry
	for _, e := range t.st.ledger {
		if e.CharacterID == characterID && e.SkillID == skillID && !e.GrantedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *memTx) AppendReward(_ context.Context, e RewardEntry) (RewardEntry, error) {
	t.st.seq++
	e.Sequence = t.st.seq
	t.st.ledger = append(t.st.ledger, e)
	return e, nil
}

func (t *memTx) Rewards(_ context.Context, characterID string, limit int) ([]RewardEntry, error) {
	var out []RewardEntry
	for _, e := range t.st.ledger {
		if e.CharacterID == characterID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) GemCounts(_ context.Context, characterID string) (map[gems.GemType]int, error) {
	counts := map[gems.GemType]int{}
	for _, g := range t.st.gems {
		if g.CharacterID == characterID {
			counts[g.Type]++
		}
	}
	return counts, nil
}

func (t *memTx) AppendGem(_ context.Context, award gems.GemAward) error {
	t.st.gems = append(t.st.gems, award)
	return nil
}
