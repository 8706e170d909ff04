package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/crisisdesk/internal/model"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, evt model.Event) error {
	e := s.logger.Info().
		Str("event", evt.Type).
		Str("event_id", evt.ID).
		Str("incident_id", evt.IncidentID).
		Str("actor", evt.ActorID)
	if evt.NewStatus != "" {
		e = e.Str("status", string(evt.NewStatus))
	}
	if evt.ResourceID != "" {
		e = e.Str("resource_id", evt.ResourceID)
	}
	if evt.NotifyAdmin {
		e = e.Bool("notify_admin", true)
	}
	e.Msg("incident event")
	return nil
}
