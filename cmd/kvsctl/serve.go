package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/kvs/pkg/log"
	"github.com/cuemby/kvs/pkg/metrics"
	"github.com/cuemby/kvs/pkg/ttl"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose /metrics and run TTL cleanup jobs until interrupted",
	Long: `serve starts the Prometheus metrics endpoint and, for every store
named with --ttl-store, a periodic cleanup job that sweeps expired entries
on --cleanup-interval. It blocks until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		if metricsAddr == "" {
			metricsAddr = cfg.MetricsAddr
		}
		ttlStores, _ := cmd.Flags().GetStringSlice("ttl-store")
		interval, _ := cmd.Flags().GetDuration("cleanup-interval")

		logger := log.WithComponent("serve")

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		fmt.Printf("Metrics endpoint: http://%s/metrics\n", metricsAddr)
		fmt.Printf("  - Health check: http://%s/health\n", metricsAddr)
		fmt.Printf("  - Readiness:    http://%s/ready\n", metricsAddr)
		fmt.Printf("  - Liveness:     http://%s/live\n", metricsAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.RegisterComponent("registry", true, "")

		jobs := make([]*ttl.CleanupJob, 0, len(ttlStores))
		for _, name := range ttlStores {
			engine, err := openTtlEngine(cmd, name)
			if err != nil {
				return fmt.Errorf("open ttl store %q: %w", name, err)
			}
			job := ttl.NewCleanupJob(engine, interval)
			job.Start(ctx)
			jobs = append(jobs, job)
			fmt.Printf("Cleanup job running for store %q every %s\n", name, interval)
		}
		metrics.RegisterComponent("cleanup_job", true, "")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			fmt.Fprintf(os.Stderr, "\n%v\n", err)
		}

		cancel()
		for _, job := range jobs {
			job.Stop()
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
		fmt.Println("Shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("metrics-addr", "", "Address the /metrics endpoint listens on (default: config's metrics_addr)")
	serveCmd.Flags().StringSlice("ttl-store", nil, "Name of a TTL store to run a periodic cleanup job against (repeatable)")
	serveCmd.Flags().Duration("cleanup-interval", 30*time.Second, "Interval between TTL cleanup cycles")
}
