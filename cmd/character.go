package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/ui/components"
	"github.com/midolearning/village/internal/ui/layout"
)

var characterCmd = &cobra.Command{
	Use:     "character",
	Aliases: []string{"char"},
	Short:   "Create and inspect characters",
}

var characterCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new character",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.service.CreateCharacter(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, c)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var characterShowCmd = &cobra.Command{
	Use:   "show <character-id>",
	Short: "Show a character's levels, coins and gems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.service.Profile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, p)
		}

		total := 0
		for _, n := range p.Gems {
			total += n
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, layout.RenderHeader(p.Name, p.Level, p.Wallet.Available, total, layout.DefaultWidth))
		fmt.Fprintln(out, components.CharacterCard(p, components.ContentWidth(layout.DefaultWidth)))
		return nil
	},
}

var characterHistoryCmd = &cobra.Command{
	Use:   "history <character-id>",
	Short: "List recent game sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sessions, err := e.service.Sessions(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, sessions)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-18s  %-12s  %6s  %5s  %5s  %s\n",
			"Played", "Skill", "Stage", "Min", "Acc", "XP", "Coins")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, s := range sessions {
			stage := s.StageID
			if stage == "" {
				stage = "-"
			}
			fmt.Fprintf(out, "%-20s  %-18s  %-12s  %6.1f  %4.0f%%  %5d  %d/%d %s\n",
				s.PlayedAt.Local().Format("2006-01-02 15:04"), s.SkillID, stage,
				s.ElapsedSeconds/60, s.Accuracy*100, s.ExperienceGained,
				s.CurrencyGranted, s.NominalCurrency, s.Reason)
		}
		fmt.Fprintf(out, "\n%d sessions\n", len(sessions))
		return nil
	},
}

func init() {
	characterHistoryCmd.Flags().Int("limit", 20, "Maximum sessions to list")

	characterCmd.AddCommand(characterCreateCmd)
	characterCmd.AddCommand(characterShowCmd)
	characterCmd.AddCommand(characterHistoryCmd)
}
