package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/midolearning/village/internal/api"
	"github.com/midolearning/village/internal/metrics"
	"github.com/midolearning/village/internal/village"
)

const defaultAddr = "127.0.0.1:8087"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the village HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = os.Getenv("VILLAGE_ADDR")
		}
		if addr == "" {
			addr = defaultAddr
		}
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		// The server logs at info unless told otherwise.
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl == "" && os.Getenv("VILLAGE_LOG_LEVEL") == "" {
			cmd.Flags().Set("log-level", "info")
		}

		var opts []village.Option
		var m *metrics.Metrics
		if withMetrics {
			m = metrics.New()
			opts = append(opts, village.WithObserver(m))
		}

		e, err := openEnv(cmd, opts...)
		if err != nil {
			return err
		}
		defer e.Close()

		srv := api.NewServer(e.service, e.catalog, e.logger)
		if m != nil {
			srv.EnableMetrics(m)
		}
		return serve(cmd.Context(), e.logger, addr, srv.Handler())
	},
}

func serve(ctx context.Context, logger *slog.Logger, addr string, h http.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("village API listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides VILLAGE_ADDR env var, default "+defaultAddr+")")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}
