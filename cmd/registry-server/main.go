package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/solworks/lookup-registry/client"
	"github.com/solworks/lookup-registry/client/rpc"
	"github.com/solworks/lookup-registry/config"
	"github.com/solworks/lookup-registry/engine/rest"
	"github.com/solworks/lookup-registry/module/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "registry-server",
		Short: "Serves lookup table registry queries over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	config.BindFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(level)

	collector := metrics.NewRegistryCollector()

	rpcClient := rpc.NewClient(cfg.RPCEndpoint, log,
		rpc.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	reader := client.NewReader(rpcClient, log,
		client.WithCacheTTL(cfg.CacheTTL),
		client.WithCacheMetrics(collector),
		client.WithReaderMetrics(collector),
	)

	restServer := rest.NewServer(reader, cfg.ListenAddr, log, collector)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	errChan := make(chan error, 2)
	go func() {
		log.Info().Str("address", cfg.ListenAddr).Msg("lookup API server started")
		if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("lookup API server failed: %w", err)
		}
	}()
	go func() {
		log.Info().Str("address", cfg.MetricsAddr).Msg("metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server failed: %w", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var result *multierror.Error
	if err := restServer.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("could not stop lookup API server: %w", err))
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("could not stop metrics server: %w", err))
	}
	return result.ErrorOrNil()
}
