// Package throttle decides how much nominal currency a session may actually
// grant, enforcing minimum play time, cooldown and a daily cap against the
// player's reward ledger.
//
// The daily window is the UTC calendar day containing the report timestamp.
package throttle

import (
	"io"
	"log/slog"
	"time"

	"github.com/midolearning/village/internal/progression"
)

// Reason explains a throttle decision.
type Reason string

const (
	ReasonGranted      Reason = "granted"
	ReasonBelowMinimum Reason = "below minimum play time"
	ReasonCooldown     Reason = "cooldown active"
	ReasonDailyLimit   Reason = "daily limit reached"
)

// LedgerEntry is one granted reward. The ledger is append-only and owned by
// the persistence layer.
type LedgerEntry struct {
	Amount    int       `json:"amount"`
	GrantedAt time.Time `json:"granted_at"`
	SkillID   string    `json:"skill_id"`
}

func (e LedgerEntry) valid() bool {
	return !e.GrantedAt.IsZero() && e.Amount >= 0
}

// Decision is the outcome of Authorize.
type Decision struct {
	Granted int    `json:"granted"`
	Reason  Reason `json:"reason"`

	// TodayTotal is the sum already granted for this skill in the current
	// day window, before this decision.
	TodayTotal int `json:"today_total"`

	// CooldownEndsAt is set when the cooldown blocked the grant.
	CooldownEndsAt *time.Time `json:"cooldown_ends_at,omitempty"`

	// Skipped counts malformed ledger entries ignored during evaluation.
	Skipped int `json:"skipped,omitempty"`
}

// Throttle is stateless apart from its logger and is safe for concurrent use.
type Throttle struct {
	logger *slog.Logger
}

// New creates a Throttle. A nil logger discards data-quality warnings.
func New(logger *slog.Logger) *Throttle {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Throttle{logger: logger}
}

// DayWindow returns the UTC day [start, end) containing ts.
func DayWindow(ts time.Time) (time.Time, time.Time) {
	u := ts.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Authorize clamps nominal against the skill's anti-abuse policy. ledger
// holds the player's entries; entries for other skills are ignored. The
// ledger is never modified, and the result is never negative nor above
// nominal.
func (t *Throttle) Authorize(def progression.Definition, ledger []LedgerEntry, report progression.SessionReport, nominal int) Decision {
	if nominal < 0 {
		nominal = 0
	}

	entries, skipped := t.usable(def.ID, ledger)
	d := Decision{Skipped: skipped}

	if report.ElapsedMinutes() < def.MinPlayTimeMinutes {
		d.Reason = ReasonBelowMinimum
		return d
	}

	if last, ok := latest(entries); ok && def.CooldownMinutes > 0 {
		cooldown := time.Duration(def.CooldownMinutes) * time.Minute
		if report.Timestamp.Sub(last.GrantedAt) < cooldown {
			ends := last.GrantedAt.Add(cooldown)
			d.Reason = ReasonCooldown
			d.CooldownEndsAt = &ends
			return d
		}
	}

	start, end := DayWindow(report.Timestamp)
	for _, e := range entries {
		if !e.GrantedAt.Before(start) && e.GrantedAt.Before(end) {
			d.TodayTotal += e.Amount
		}
	}

	// Over the cap the remainder is always short of nominal.
	if d.TodayTotal+nominal > def.DailyRewardLimit {
		d.Granted = max(0, def.DailyRewardLimit-d.TodayTotal)
		d.Reason = ReasonDailyLimit
		return d
	}

	d.Granted = nominal
	d.Reason = ReasonGranted
	return d
}

// usable filters the ledger down to well-formed entries for skillID.
func (t *Throttle) usable(skillID string, ledger []LedgerEntry) ([]LedgerEntry, int) {
	out := make([]LedgerEntry, 0, len(ledger))
	skipped := 0
	for i, e := range ledger {
		if e.SkillID != skillID {
			continue
		}
		if !e.valid() {
			skipped++
			t.logger.Warn("skipping malformed ledger entry",
				"skill", skillID,
				"index", i,
				"amount", e.Amount,
				"missing_timestamp", e.GrantedAt.IsZero(),
			)
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

func latest(entries []LedgerEntry) (LedgerEntry, bool) {
	var last LedgerEntry
	found := false
	for _, e := range entries {
		if !found || e.GrantedAt.After(last.GrantedAt) {
			last = e
			found = true
		}
	}
	return last, found
}
