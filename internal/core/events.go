package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/crisisdesk/internal/metrics"
	"github.com/edvin/crisisdesk/internal/model"
	"github.com/edvin/crisisdesk/internal/platform"
)

// EventSink accepts committed facts for asynchronous notification. Publish
// must not block on delivery.
type EventSink interface {
	Publish(ctx context.Context, evt model.Event) error
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(context.Context, model.Event) error { return nil }

// publish hands events to the sink after commit. Failures are logged and
// never returned: the state change they describe is already durable.
func publish(ctx context.Context, sink EventSink, logger zerolog.Logger, events ...model.Event) {
	ctx = context.WithoutCancel(ctx)
	for _, evt := range events {
		if evt.ID == "" {
			evt.ID = platform.NewID()
		}
		if err := sink.Publish(ctx, evt); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(evt.Type, "publish").Inc()
			logger.Warn().Err(err).
				Str("event", evt.Type).
				Str("incident_id", evt.IncidentID).
				Msg("failed to publish event")
		}
	}
}
