package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/crisisdesk/internal/config"
)

// NewLogger creates a structured zerolog.Logger writing to stdout, tagged with
// the service and host it runs on.
func NewLogger(cfg *config.Config) zerolog.Logger {
	host, _ := os.Hostname()
	return newLogger(os.Stdout, cfg, host)
}

func newLogger(w io.Writer, cfg *config.Config, host string) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	if host != "" {
		ctx = ctx.Str("host", host)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return ctx.Logger().Level(level)
}
