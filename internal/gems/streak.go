package gems

// BaseStreakThreshold is the first streak length that awards a gem.
const BaseStreakThreshold = 5

// NextStreakThreshold returns the next streak milestone above the current
// streak length. Streaks count consecutive qualifying sessions.
func NextStreakThreshold(current int) int {
	thresholds := []int{5, 10, 15, 20}
	for _, t := range thresholds {
		if t > current {
			return t
		}
	}
	// Beyond 20, award every 5.
	return ((current / 5) + 1) * 5
}

// CrossedMilestone reports whether moving from prev to next reaches a streak
// milestone, returning the milestone reached.
func CrossedMilestone(prev, next int) (int, bool) {
	if next <= prev {
		return 0, false
	}
	m := NextStreakThreshold(prev)
	if next >= m {
		return m, true
	}
	return 0, false
}
