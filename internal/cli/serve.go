package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reflectd/internal/drift"
	"github.com/roach88/reflectd/internal/harness"
	"github.com/roach88/reflectd/internal/httpapi"
)

// shutdownGrace bounds how long in-flight requests may run after a
// termination signal.
const shutdownGrace = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and, when enabled, the validation harness",
		Long: `Serve the reflection engine over HTTP. When harness.enabled is set
in the config, the continuity validation harness runs alongside the
server on its configured interval. The database location comes from
the config file; --db overrides it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := ""
			if cmd.Flags().Changed("db") || cmd.InheritedFlags().Changed("db") {
				dbPath = rootOpts.DBPath
			}
			return runServe(rootOpts, cmd, dbPath)
		},
	}

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command, dbPath string) error {
	deps, err := buildDeps(opts, dbPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	metrics := httpapi.NewMetrics()
	serverOpts := []httpapi.Option{httpapi.WithMetrics(metrics)}
	if deps.thresholds != (drift.Thresholds{}) {
		serverOpts = append(serverOpts, httpapi.WithThresholds(deps.thresholds))
	}

	harnessCfg := harness.DefaultConfig()
	if deps.cfg.Harness.Plan != "" {
		plan, err := harness.LoadPlan(deps.cfg.Harness.Plan)
		if err != nil {
			return WrapExitError(ExitCommandError, "load harness plan", err)
		}
		harnessCfg = plan.Config()
	}
	h := harness.New(deps.store, deps.aggregator, deps.orch, harnessCfg, deps.logger,
		harness.WithCycleObserver(metrics.ObserveCycle))
	serverOpts = append(serverOpts, httpapi.WithHarness(h))

	srv := httpapi.NewServer(deps.store, deps.aggregator, deps.orch, deps.logger, serverOpts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if deps.cfg.Harness.Enabled {
		go h.Run(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(deps.cfg.Server.Addr())
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "http server", err)
		}
		return nil
	case <-ctx.Done():
	}

	deps.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown", err)
	}
	return nil
}
