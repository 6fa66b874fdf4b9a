package progression

// Apply returns the skill progress that results from recording a session
// with the given outcome. The input is not modified.
func Apply(progress SkillProgress, report SessionReport, out Outcome) SkillProgress {
	next := progress.normalized()

	next.SkillExperience = AddExperience(next.SkillExperience, out.ExperienceGained)
	next.SkillLevel = out.NewSkillLevel.Level
	next.PlayCount++
	next.TotalPlayTimeMinutes += report.ElapsedMinutes()
	next.Streak = out.NewStreak
	next.BestScore = progress.BestScore.Merge(report)

	ts := report.Timestamp
	next.LastPlayedAt = &ts
	return next
}
