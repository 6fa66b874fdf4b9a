package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/leveling"
	"github.com/midolearning/village/internal/ui/components"
	"github.com/midolearning/village/internal/ui/layout"
)

var levelCmd = &cobra.Command{
	Use:   "level <experience>",
	Short: "Show the level reached with a total experience",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("experience must be an integer: %w", err)
		}
		info := leveling.FromExperience(exp)
		if wantJSON(cmd) {
			return printJSON(cmd, info)
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.LevelBar("Level", info, layout.DefaultWidth))
		if !info.IsMax() {
			next := leveling.ExperienceForLevel(info.Level + 1)
			fmt.Fprintf(cmd.OutOrStdout(), "%d more experience to level %d\n", next-info.TotalExperience, info.Level+1)
		}
		return nil
	},
}
