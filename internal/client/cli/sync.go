package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/auth"
	"github.com/dmitrijs2005/studydeck/internal/client/remote"
	"github.com/dmitrijs2005/studydeck/internal/client/syncer"
	"github.com/dmitrijs2005/studydeck/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var errNoAPI = errors.New("backend URL is not configured, set --api or STUDYDECK_API_BASE_URL")

func (a *App) newEngine(reg prometheus.Registerer) (*syncer.Engine, error) {
	if a.cfg.APIBaseURL == "" {
		return nil, errNoAPI
	}
	api, err := remote.NewClient(a.cfg.APIBaseURL, remote.WithTimeout(a.cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}
	return syncer.NewEngine(a.store, a.repomanager, api,
		syncer.WithLogger(a.logger.With("component", "syncer")),
		syncer.WithMetrics(metrics.NewSync(reg)),
		syncer.WithTokenSource(auth.NewTokenSource(a.cfg.AuthSecret, auth.DefaultValidity)),
		syncer.WithBackoff(a.cfg.SyncBackoffBase, a.cfg.SyncBackoffMax),
	), nil
}

func (a *App) syncCommand() *cobra.Command {
	var (
		watch       bool
		interval    time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push local changes to the backend and pull remote state",
		Long: `Run one sync cycle, or keep running cycles with --watch.

Examples:
  studydeck sync
  studydeck sync --watch --interval 30s --metrics-addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reg := prometheus.NewRegistry()
			engine, err := a.newEngine(reg)
			if err != nil {
				return err
			}

			every := a.cfg.SyncInterval
			if cmd.Flags().Changed("interval") {
				every = interval
			}
			if !watch {
				report, err := syncer.NewScheduler(engine, 0, a.logger).Trigger(ctx)
				if !report.Started.IsZero() {
					if perr := a.printReport(report); perr != nil {
						return perr
					}
				}
				return err
			}

			if every <= 0 {
				return errors.New("--watch needs a positive --interval or sync_interval")
			}
			if metricsAddr != "" {
				stop, err := a.serveMetrics(ctx, metricsAddr, reg)
				if err != nil {
					return err
				}
				defer stop()
			}

			a.logger.Info(ctx, "watching", "interval", every)
			err = syncer.NewScheduler(engine, every, a.logger).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&watch, "watch", "w", false, "keep syncing until interrupted")
	f.DurationVar(&interval, "interval", 0, "time between cycles with --watch (default from config)")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")

	cmd.AddCommand(a.syncStatusCommand())
	return cmd
}

func (a *App) syncStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show changes waiting to be pushed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := syncer.NewEngine(a.store, a.repomanager, nil, syncer.WithLogger(a.logger))
			items, err := engine.Pending(cmd.Context())
			if err != nil {
				return err
			}
			return a.printPending(items)
		},
	}
}

// serveMetrics exposes reg on addr until the returned stop function is called.
func (a *App) serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) (func(), error) {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics: %w", err)
	}
	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server", "err", err)
		}
	}()
	a.logger.Info(ctx, "serving metrics", "addr", ln.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
