package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/progression"
	"github.com/midolearning/village/internal/ui/components"
	"github.com/midolearning/village/internal/ui/layout"
)

var playCmd = &cobra.Command{
	Use:   "play <character-id>",
	Short: "Record a finished game session",
	Example: "  village play 6f1c... --skill english-typing --minutes 12 --accuracy 0.95 --wpm 42\n" +
		"  village play 6f1c... --skill english-typing --stage intermediate --minutes 15 --accuracy 0.9",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := reportFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.service.CompleteSession(cmd.Context(), args[0], rep)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.SessionSummary(res, components.ContentWidth(layout.DefaultWidth)))
		return nil
	},
}

func reportFromFlags(cmd *cobra.Command) (progression.SessionReport, error) {
	f := cmd.Flags()
	skill, _ := f.GetString("skill")
	stage, _ := f.GetString("stage")
	sessionID, _ := f.GetString("session-id")
	minutes, _ := f.GetFloat64("minutes")
	accuracy, _ := f.GetFloat64("accuracy")
	streak, _ := f.GetInt("streak")
	at, _ := f.GetString("at")

	rep := progression.SessionReport{
		SkillID:            skill,
		StageID:            stage,
		SessionID:          sessionID,
		ElapsedSeconds:     minutes * 60,
		Accuracy:           accuracy,
		StreakAtCompletion: streak,
	}
	if f.Changed("wpm") {
		v, _ := f.GetFloat64("wpm")
		rep.WPM = &v
	}
	if f.Changed("score") {
		v, _ := f.GetFloat64("score")
		rep.Score = &v
	}
	if at != "" {
		ts, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return rep, fmt.Errorf("--at must be RFC 3339: %w", err)
		}
		rep.Timestamp = ts
	}
	return rep, nil
}

func init() {
	f := playCmd.Flags()
	f.String("skill", "english-typing", "Skill id")
	f.String("stage", "", "Stage id (empty for the default stage)")
	f.String("session-id", "", "Client session id (generated when empty)")
	f.Float64("minutes", 0, "Minutes played")
	f.Float64("accuracy", 0, "Accuracy between 0 and 1")
	f.Float64("wpm", 0, "Words per minute")
	f.Float64("score", 0, "Game score")
	f.Int("streak", 0, "Client-side streak at completion")
	f.String("at", "", "Completion time in RFC 3339 for the session history (defaults to now; rewards use the current time)")
	playCmd.MarkFlagRequired("minutes")
	playCmd.MarkFlagRequired("accuracy")
}
