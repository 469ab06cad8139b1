package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourceplane/jobconf/internal/reload"
	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	metricsAddr   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload a configuration periodically, keeping the last good one",
	Long:  "Compile the configuration every --interval. A broken file is logged and counted but never replaces the configuration in force. Reload metrics are served on --metrics-addr.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchConfig()
	},
}

func registerWatchCommand(root *cobra.Command) {
	root.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 10*time.Second, "Time between reloads")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (disabled when empty)")
}

func watchConfig() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	mgr, err := reload.New(reload.Config{Path: configFile, Logger: logger, Registerer: reg})
	if err != nil {
		return err
	}
	// The first load must succeed; later failures keep it in force.
	if _, err := mgr.Reload(ctx); err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := newMetricsServer(metricsAddr, reg, mgr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info().Str("addr", metricsAddr).Msg("serving metrics")
	}

	mgr.RunLoop(ctx, watchInterval)
	return nil
}

// newMetricsServer serves /metrics from reg and /healthz, which fails until a
// configuration has been loaded.
func newMetricsServer(addr string, reg *prometheus.Registry, mgr *reload.Manager) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snap := mgr.Current()
		if snap == nil {
			http.Error(w, "no configuration loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(snap.ID.String()))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
