package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Inspect and redeem coins",
}

var rewardsListCmd = &cobra.Command{
	Use:   "list <character-id>",
	Short: "List the reward ledger, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.service.Rewards(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, entries)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%6s  %-20s  %-18s  %6s  %s\n", "Seq", "Granted", "Skill", "Coins", "Session")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		total := 0
		for _, r := range entries {
			fmt.Fprintf(out, "%6d  %-20s  %-18s  %6d  %s\n",
				r.Sequence, r.GrantedAt.Local().Format("2006-01-02 15:04"), r.SkillID, r.Amount, r.SessionID)
			total += r.Amount
		}
		fmt.Fprintf(out, "\n%d entries, %d coins\n", len(entries), total)
		return nil
	},
}

var rewardsRedeemCmd = &cobra.Command{
	Use:   "redeem <character-id> <amount>",
	Short: "Spend available coins",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("amount must be an integer: %w", err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		w, err := e.service.Redeem(cmd.Context(), args[0], amount)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd, w)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Redeemed %d coins, %d left\n", amount, w.Available)
		return nil
	},
}

func init() {
	rewardsListCmd.Flags().Int("limit", 20, "Maximum entries to list")

	rewardsCmd.AddCommand(rewardsListCmd)
	rewardsCmd.AddCommand(rewardsRedeemCmd)
}
