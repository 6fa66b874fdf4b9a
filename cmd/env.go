package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/catalog"
	"github.com/midolearning/village/internal/store"
	"github.com/midolearning/village/internal/village"
)

// env bundles the dependencies most commands need.
type env struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
	store   *store.Store
	service *village.Service
}

func (e *env) Close() error {
	return e.store.Close()
}

// openEnv resolves flags, opens the store and builds the village service.
func openEnv(cmd *cobra.Command, opts ...village.Option) (*env, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	cat, err := resolveCatalog(cmd)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "path", dbPath, "catalog", cat.Version())

	opts = append([]village.Option{village.WithLogger(logger)}, opts...)
	return &env{
		logger:  logger,
		catalog: cat,
		store:   st,
		service: village.NewService(st, cat, opts...),
	}, nil
}

// newLogger builds the stderr logger from --log-level or VILLAGE_LOG_LEVEL.
// Commands default to warn so their output stays clean.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	lvl, _ := cmd.Flags().GetString("log-level")
	if lvl == "" {
		lvl = os.Getenv("VILLAGE_LOG_LEVEL")
	}
	level, err := parseLevel(lvl, slog.LevelWarn)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

func parseLevel(s string, def slog.Level) (slog.Level, error) {
	if s == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return def, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
