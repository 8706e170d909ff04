package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/crisisdesk/internal/api"
	"github.com/edvin/crisisdesk/internal/config"
	"github.com/edvin/crisisdesk/internal/core"
	"github.com/edvin/crisisdesk/internal/db"
	"github.com/edvin/crisisdesk/internal/logging"
	"github.com/edvin/crisisdesk/internal/metrics"
	"github.com/edvin/crisisdesk/internal/notify"
	"github.com/edvin/crisisdesk/internal/store"
	"github.com/edvin/crisisdesk/migrations"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "crisis-api"
	}

	if err := cfg.Validate("crisis-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Msg("running database migrations")
		if err := db.RunMigrations(cfg.CoreDatabaseURL, migrations.Core, "core"); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corePool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer corePool.Close()
	metrics.RegisterPoolMetrics(prometheus.DefaultRegisterer, corePool)

	checks := map[string]api.Check{"core_db": corePool.Ping}

	sinks := []notify.Sink{}
	if cfg.HasSink(config.SinkLog) {
		sinks = append(sinks, notify.NewLogSink(logger))
	}
	if cfg.HasSink(config.SinkRedis) {
		rdb, err := newRedisClient(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure redis")
		}
		defer rdb.Close()
		sinks = append(sinks, notify.NewRedisQueue(rdb, cfg.RedisQueueKey))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if cfg.HasSink(config.SinkTemporal) {
		tc, err := dialTemporal(cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to temporal")
		}
		defer tc.Close()
		sinks = append(sinks, notify.NewTemporalSink(tc, cfg.TemporalTaskQueue, notify.WebhookTarget{
			URL:      cfg.WebhookURL,
			Template: cfg.WebhookTemplate,
			AdminURL: cfg.AdminWebhookURL,
		}))
		checks["temporal"] = func(ctx context.Context) error {
			_, err := tc.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
			return err
		}
	}

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	dispatcher := notify.NewDispatcher(logger, cfg.NotifyBuffer, sinks...)
	go dispatcher.Run(dispatchCtx)

	services := core.NewServices(store.New(corePool), dispatcher, logger)
	srv := api.NewServer(logger, services, checks)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Strs("sinks", cfg.NotifySinks).Msg("starting crisis API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	// Flush events from requests that completed before shutdown.
	stopDispatch()
	select {
	case <-dispatcher.Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("notification dispatcher did not drain in time")
	}
}

func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	tlsConfig, err := cfg.RedisTLS()
	if err != nil {
		return nil, err
	}
	return redis.NewClient(&redis.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		TLSConfig: tlsConfig,
	}), nil
}

func dialTemporal(cfg *config.Config, logger zerolog.Logger) (temporalclient.Client, error) {
	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		return nil, fmt.Errorf("configure temporal TLS: %w", err)
	}
	dialOpts := temporalclient.Options{HostPort: cfg.TemporalAddress}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
		logger.Info().Msg("temporal mTLS enabled")
	}
	return temporalclient.Dial(dialOpts)
}
