package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Notification sink names accepted in NOTIFY_SINKS.
const (
	SinkLog      = "log"
	SinkRedis    = "redis"
	SinkTemporal = "temporal"
)

type Config struct {
	ServiceName string
	LogLevel    string

	CoreDatabaseURL string
	DBMaxConns      int

	HTTPListenAddr    string
	MetricsListenAddr string

	TemporalAddress       string
	TemporalTaskQueue     string
	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisQueueKey  string
	RedisTLSCACert string

	// NotifySinks lists where the API sends committed events.
	NotifySinks     []string
	NotifyBuffer    int
	WebhookURL      string
	WebhookTemplate string
	AdminWebhookURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:           getEnv("SERVICE_NAME", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		CoreDatabaseURL:       getEnv("CORE_DATABASE_URL", ""),
		HTTPListenAddr:        getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsListenAddr:     getEnv("METRICS_LISTEN_ADDR", ":9090"),
		TemporalAddress:       getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTaskQueue:     getEnv("TEMPORAL_TASK_QUEUE", "crisis-notifications"),
		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisQueueKey:         getEnv("REDIS_QUEUE_KEY", "crisis:events"),
		RedisTLSCACert:        getEnv("REDIS_TLS_CA_CERT", ""),
		NotifySinks:           splitList(getEnv("NOTIFY_SINKS", SinkLog)),
		WebhookURL:            getEnv("WEBHOOK_URL", ""),
		WebhookTemplate:       getEnv("WEBHOOK_TEMPLATE", "generic"),
		AdminWebhookURL:       getEnv("ADMIN_WEBHOOK_URL", ""),
	}

	var err error
	if cfg.DBMaxConns, err = getEnvInt("DB_MAX_CONNS", 0); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.NotifyBuffer, err = getEnvInt("NOTIFY_BUFFER", 256); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasSink reports whether name is listed in NOTIFY_SINKS.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.NotifySinks, name)
}

// Validate checks the settings the named binary needs.
func (c *Config) Validate(service string) error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch service {
	case "crisis-api":
		require("CORE_DATABASE_URL", c.CoreDatabaseURL)
		require("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		if c.HasSink(SinkTemporal) {
			require("TEMPORAL_ADDRESS", c.TemporalAddress)
			require("TEMPORAL_TASK_QUEUE", c.TemporalTaskQueue)
		}
		if c.HasSink(SinkRedis) {
			require("REDIS_ADDR", c.RedisAddr)
			require("REDIS_QUEUE_KEY", c.RedisQueueKey)
		}
	case "crisis-worker":
		require("TEMPORAL_ADDRESS", c.TemporalAddress)
		require("TEMPORAL_TASK_QUEUE", c.TemporalTaskQueue)
		if c.RedisAddr != "" {
			require("REDIS_QUEUE_KEY", c.RedisQueueKey)
		}
	case "crisisctl":
	default:
		return fmt.Errorf("unknown service %q", service)
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required config for %s: %s", service, strings.Join(missing, ", ")))
	}
	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		errs = append(errs, errors.New("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set"))
	}
	for _, s := range c.NotifySinks {
		switch s {
		case SinkLog, SinkRedis, SinkTemporal:
		default:
			errs = append(errs, fmt.Errorf("unknown notify sink %q", s))
		}
	}
	switch c.WebhookTemplate {
	case "", "generic", "slack":
	default:
		errs = append(errs, fmt.Errorf("WEBHOOK_TEMPLATE must be generic or slack, got %q", c.WebhookTemplate))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
