package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/catalog"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse the skill catalog",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := resolveCatalog(cmd)
		if err != nil {
			return err
		}
		skills := cat.All()
		if wantJSON(cmd) {
			return printJSON(cmd, skills)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-24s  %-12s  %7s  %7s  %s\n",
			"ID", "Name", "Status", "Reward", "Daily", "Stages")
		fmt.Fprintln(out, strings.Repeat("─", 96))

		for _, s := range skills {
			name := s.Name
			if len(name) > 24 {
				name = name[:21] + "..."
			}
			stages := make([]string, 0, len(s.Stages))
			for _, st := range s.Stages {
				stages = append(stages, st.ID)
			}
			fmt.Fprintf(out, "%-20s  %-24s  %-12s  %7s  %7d  %s\n",
				s.ID, name, s.Status,
				fmt.Sprintf("%d-%d", s.RewardRange.Min, s.RewardRange.Max),
				s.DailyRewardLimit, strings.Join(stages, ", "))
		}

		fmt.Fprintf(out, "\n%d skills (catalog %s)\n", len(skills), cat.Version())
		return nil
	},
}

var skillValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a skills TOML catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: catalog %s, %d skills OK\n", args[0], cat.Version(), len(cat.IDs()))
		return nil
	},
}

func init() {
	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillValidateCmd)
}
