package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"

	"github.com/edvin/crisisdesk/internal/activity"
	"github.com/edvin/crisisdesk/internal/config"
	"github.com/edvin/crisisdesk/internal/logging"
	"github.com/edvin/crisisdesk/internal/metrics"
	"github.com/edvin/crisisdesk/internal/notify"
	"github.com/edvin/crisisdesk/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "crisis-worker"
	}

	if err := cfg.Validate("crisis-worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	dialOpts := temporalclient.Options{HostPort: cfg.TemporalAddress}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, cfg.TemporalTaskQueue, worker.Options{
		Interceptors: []interceptor.WorkerInterceptor{&workflow.ErrorTypingInterceptor{}},
	})

	// Register activities
	w.RegisterActivity(activity.NewWebhook())

	// Register workflows
	w.RegisterWorkflow(workflow.NotifyIncidentEventWorkflow)

	// Drain events the API queued in Redis into notification workflows.
	var relayDone chan struct{}
	if cfg.RedisAddr != "" {
		redisTLS, err := cfg.RedisTLS()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure redis TLS")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			TLSConfig: redisTLS,
		})
		defer rdb.Close()

		sink := notify.NewTemporalSink(tc, cfg.TemporalTaskQueue, notify.WebhookTarget{
			URL:      cfg.WebhookURL,
			Template: cfg.WebhookTemplate,
			AdminURL: cfg.AdminWebhookURL,
		})
		relay := notify.NewRelay(notify.NewRedisQueue(rdb, cfg.RedisQueueKey), sink, logger)
		relayDone = make(chan struct{})
		go func() {
			defer close(relayDone)
			relay.Run(ctx)
		}()
	}

	if cfg.MetricsListenAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsListenAddr, func(ctx context.Context) error {
			_, err := tc.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
			return err
		})
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", cfg.TemporalTaskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
	if relayDone != nil {
		<-relayDone
	}
}
