package throttle

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midolearning/village/internal/progression"
)

var now = time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC)

func testDefinition() progression.Definition {
	return progression.Definition{
		ID:                 "english-typing",
		MinPlayTimeMinutes: 10,
		RewardRange:        progression.RewardRange{Min: 1, Max: 5},
		DailyRewardLimit:   20,
		CooldownMinutes:    10,
	}
}

func testReport(minutes float64) progression.SessionReport {
	return progression.SessionReport{
		SkillID:        "english-typing",
		ElapsedSeconds: minutes * 60,
		Accuracy:       0.9,
		Timestamp:      now,
	}
}

func entry(amount int, ago time.Duration) LedgerEntry {
	return LedgerEntry{Amount: amount, GrantedAt: now.Add(-ago), SkillID: "english-typing"}
}

func TestAuthorize_Granted(t *testing.T) {
	d := New(nil).Authorize(testDefinition(), nil, testReport(12), 4)
	assert.Equal(t, 4, d.Granted)
	assert.Equal(t, ReasonGranted, d.Reason)
}

func TestAuthorize_BelowMinimumPlayTime(t *testing.T) {
	d := New(nil).Authorize(testDefinition(), nil, testReport(9.99), 5)
	assert.Equal(t, 0, d.Granted)
	assert.Equal(t, ReasonBelowMinimum, d.Reason)
	assert.Equal(t, "below minimum play time", string(d.Reason))
}

func TestAuthorize_Cooldown(t *testing.T) {
	ledger := []LedgerEntry{entry(3, 4*time.Minute)}

	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, 0, d.Granted)
	assert.Equal(t, ReasonCooldown, d.Reason)
	assert.Equal(t, "cooldown active", string(d.Reason))
	require.NotNil(t, d.CooldownEndsAt)
	assert.True(t, d.CooldownEndsAt.Equal(now.Add(6*time.Minute)))
}

func TestAuthorize_CooldownUsesMostRecentEntry(t *testing.T) {
	ledger := []LedgerEntry{
		entry(2, 9*time.Minute),
		entry(2, 3*time.Hour),
	}
	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, ReasonCooldown, d.Reason)
}

func TestAuthorize_CooldownElapsedExactly(t *testing.T) {
	ledger := []LedgerEntry{entry(2, 10*time.Minute)}
	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, ReasonGranted, d.Reason)
	assert.Equal(t, 5, d.Granted)
}

func TestAuthorize_CooldownIgnoresOtherSkills(t *testing.T) {
	other := LedgerEntry{Amount: 5, GrantedAt: now.Add(-time.Minute), SkillID: "math-sprint"}
	d := New(nil).Authorize(testDefinition(), []LedgerEntry{other}, testReport(15), 5)
	assert.Equal(t, ReasonGranted, d.Reason)
	assert.Equal(t, 0, d.TodayTotal)
}

func TestAuthorize_DailyLimitClamp(t *testing.T) {
	ledger := []LedgerEntry{
		entry(5, 2*time.Hour),
		entry(5, 3*time.Hour),
		entry(5, 4*time.Hour),
		entry(3, 5*time.Hour),
	}

	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, 2, d.Granted)
	assert.Equal(t, ReasonDailyLimit, d.Reason)
	assert.Equal(t, "daily limit reached", string(d.Reason))
	assert.Equal(t, 18, d.TodayTotal)
}

func TestAuthorize_DailyLimitExhausted(t *testing.T) {
	ledger := []LedgerEntry{entry(20, 2*time.Hour)}
	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 1)
	assert.Equal(t, 0, d.Granted)
	assert.Equal(t, ReasonDailyLimit, d.Reason)
}

func TestAuthorize_DailyLimitExactFit(t *testing.T) {
	ledger := []LedgerEntry{entry(15, 2*time.Hour)}
	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, 5, d.Granted)
	assert.Equal(t, ReasonGranted, d.Reason)
}

func TestAuthorize_DailyWindowIsUTCDay(t *testing.T) {
	// now is 15:00 UTC; 16h ago is the previous UTC day.
	ledger := []LedgerEntry{
		entry(20, 16*time.Hour),
		entry(4, 14*time.Hour),
	}
	d := New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, 4, d.TodayTotal)
	assert.Equal(t, 5, d.Granted)
}

func TestAuthorize_ReportTimestampInOtherZone(t *testing.T) {
	// 23:30 in UTC-5 is 04:30 UTC the next day.
	zone := time.FixedZone("EST", -5*3600)
	rep := testReport(15)
	rep.Timestamp = time.Date(2026, 5, 1, 23, 30, 0, 0, zone)

	ledger := []LedgerEntry{
		{Amount: 20, GrantedAt: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), SkillID: "english-typing"},
	}
	d := New(nil).Authorize(testDefinition(), ledger, rep, 3)
	assert.Equal(t, 0, d.TodayTotal)
	assert.Equal(t, 3, d.Granted)
}

func TestAuthorize_SkipsMalformedEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ledger := []LedgerEntry{
		{Amount: 5, SkillID: "english-typing"}, // missing timestamp
		{Amount: -3, GrantedAt: now.Add(-time.Hour), SkillID: "english-typing"},
		entry(4, 2*time.Hour),
	}

	d := New(logger).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, 2, d.Skipped)
	assert.Equal(t, 4, d.TodayTotal)
	assert.Equal(t, 5, d.Granted)
	assert.Equal(t, 2, strings.Count(buf.String(), "skipping malformed ledger entry"))
}

func TestAuthorize_Bounds(t *testing.T) {
	th := New(nil)
	ledgers := [][]LedgerEntry{
		nil,
		{entry(19, time.Hour)},
		{entry(25, time.Hour)},
		{entry(1, time.Minute)},
	}
	for _, ledger := range ledgers {
		for _, minutes := range []float64{0, 5, 10, 30} {
			for nominal := -2; nominal <= 8; nominal++ {
				d := th.Authorize(testDefinition(), ledger, testReport(minutes), nominal)
				require.GreaterOrEqual(t, d.Granted, 0)
				require.LessOrEqual(t, d.Granted, max(nominal, 0))
				if minutes < 10 {
					require.Equal(t, 0, d.Granted)
				}
			}
		}
	}
}

func TestAuthorize_DoesNotMutateLedger(t *testing.T) {
	ledger := []LedgerEntry{entry(4, 2*time.Hour), {Amount: 1, SkillID: "english-typing"}}
	snapshot := append([]LedgerEntry(nil), ledger...)

	New(nil).Authorize(testDefinition(), ledger, testReport(15), 5)
	assert.Equal(t, snapshot, ledger)
}

func TestDayWindow(t *testing.T) {
	start, end := DayWindow(time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
