package cmd

import (
	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/catalog"
	"github.com/midolearning/village/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "village",
	Short: "Skill village progression engine",
	Long: "Mido Village turns practice sessions into experience, levels, gems and coins,\n" +
		"with cooldowns and daily caps that keep rewards honest.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VILLAGE_DB env var)")
	rootCmd.PersistentFlags().String("catalog", "", "Path to skills TOML catalog (overrides VILLAGE_CATALOG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides VILLAGE_LOG_LEVEL env var)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then VILLAGE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveCatalog loads the skill catalog from --catalog, then VILLAGE_CATALOG,
// then the default XDG path. A missing default file yields the built-in
// catalog; an explicitly named file must exist.
func resolveCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		return catalog.LoadFile(p)
	}
	p, err := catalog.DefaultPath()
	if err != nil {
		return nil, err
	}
	return catalog.Load(p)
}
