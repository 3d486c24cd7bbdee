package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/authwatch/internal/config"
	"github.com/crimson-sun/authwatch/internal/telemetry"
)

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Follow the journal and alert on security events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd)
		},
	}
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	a.bind(cmd.Flags().Lookup("metrics-addr"), config.KeyMetricsAddr)
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command) error {
	m, err := assemble(a.cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	telemetry.InitMetrics()
	if addr := a.cfg.Metrics.Addr; addr != "" {
		go func() {
			if err := telemetry.Serve(ctx, addr); err != nil {
				slog.Error("metrics server failed", "addr", addr, "error", err)
			}
		}()
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting journal monitor. Press Ctrl+C to stop.")
	slog.Info("authwatch starting",
		"connector", m.connCfg.Provider,
		"unit", m.connCfg.Unit,
		"audit_log", a.cfg.Audit.Path,
		"whitelist_size", a.cfg.Whitelist.Len(),
	)

	err = m.pipeline.Stream(ctx, m.connCfg)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted, shutting down")
		err = nil
	}
	if closeErr := m.pipeline.Close(); closeErr != nil {
		slog.Warn("shutdown incomplete", "error", closeErr)
	}
	return err
}
