package leveling

import (
	"testing"
)

func TestFromExperience(t *testing.T) {
	tests := []struct {
		total     int64
		wantLevel int
		wantCur   int64
		wantNext  int64
	}{
		{0, 1, 0, 100},
		{1, 1, 1, 100},
		{99, 1, 99, 100},
		{100, 2, 0, 200},
		{299, 2, 199, 200},
		{300, 3, 0, 300},
		{650, 4, 50, 400},
	}

	for _, tt := range tests {
		got := FromExperience(tt.total)
		if got.Level != tt.wantLevel {
			t.Errorf("FromExperience(%d).Level = %d, want %d", tt.total, got.Level, tt.wantLevel)
		}
		if got.CurrentLevelExp != tt.wantCur {
			t.Errorf("FromExperience(%d).CurrentLevelExp = %d, want %d", tt.total, got.CurrentLevelExp, tt.wantCur)
		}
		if got.NextLevelExp != tt.wantNext {
			t.Errorf("FromExperience(%d).NextLevelExp = %d, want %d", tt.total, got.NextLevelExp, tt.wantNext)
		}
	}
}

func TestFromExperience_Zero(t *testing.T) {
	got := FromExperience(0)
	if got.Level != 1 || got.Progress != 0 || got.CurrentLevelExp != 0 {
		t.Errorf("FromExperience(0) = %+v, want level 1 with no progress", got)
	}
}

func TestFromExperience_NegativeClamped(t *testing.T) {
	got := FromExperience(-500)
	if got != FromExperience(0) {
		t.Errorf("FromExperience(-500) = %+v, want same as 0", got)
	}
}

func TestFromExperience_Progress(t *testing.T) {
	got := FromExperience(150) // level 2, 50 of 200
	if got.Progress != 0.25 {
		t.Errorf("Progress = %v, want 0.25", got.Progress)
	}
}

func TestExperienceForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{-3, 0},
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 300},
		{4, 600},
		{10, 4500},
		{MaxLevel, 49_950_000},
		{MaxLevel + 50, 49_950_000},
	}

	for _, tt := range tests {
		if got := ExperienceForLevel(tt.level); got != tt.want {
			t.Errorf("ExperienceForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		info := FromExperience(ExperienceForLevel(lvl))
		if info.Level != lvl {
			t.Fatalf("round trip level %d: got %d", lvl, info.Level)
		}
		if info.CurrentLevelExp != 0 {
			t.Fatalf("round trip level %d: CurrentLevelExp = %d, want 0", lvl, info.CurrentLevelExp)
		}
	}
}

func TestMonotonicAndBounded(t *testing.T) {
	prev := 1
	for e := int64(0); e < 200_000; e += 37 {
		lvl := FromExperience(e).Level
		if lvl < 1 || lvl > MaxLevel {
			t.Fatalf("level %d out of range for %d", lvl, e)
		}
		if lvl < prev {
			t.Fatalf("level decreased at %d: %d -> %d", e, prev, lvl)
		}
		prev = lvl
	}
}

func TestTerminalLevel(t *testing.T) {
	maxExp := ExperienceForLevel(MaxLevel)
	for _, extra := range []int64{0, 1, 99_999, 10_000_000} {
		info := FromExperience(maxExp + extra)
		if info.Level != MaxLevel {
			t.Errorf("Level = %d, want %d (extra %d)", info.Level, MaxLevel, extra)
		}
		if info.NextLevelExp != 0 {
			t.Errorf("NextLevelExp = %d, want 0 at terminal level", info.NextLevelExp)
		}
		if info.Progress != 1 {
			t.Errorf("Progress = %v, want 1 at terminal level", info.Progress)
		}
		if info.CurrentLevelExp != extra {
			t.Errorf("CurrentLevelExp = %d, want %d", info.CurrentLevelExp, extra)
		}
		if !info.IsMax() {
			t.Error("IsMax() = false at terminal level")
		}
	}
}

func TestLeveledUp(t *testing.T) {
	if LeveledUp(50, 99) {
		t.Error("LeveledUp(50, 99) = true, want false")
	}
	if !LeveledUp(50, 100) {
		t.Error("LeveledUp(50, 100) = false, want true")
	}
	if got := LevelsGained(0, 600); got != 3 {
		t.Errorf("LevelsGained(0, 600) = %d, want 3", got)
	}
	if got := LevelsGained(600, 0); got != 0 {
		t.Errorf("LevelsGained(600, 0) = %d, want 0", got)
	}
}
