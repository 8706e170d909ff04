package notify

import (
	"context"
	"fmt"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/crisisdesk/internal/model"
	"github.com/edvin/crisisdesk/internal/workflow"
)

// WebhookTarget is where the notification workflow posts events.
type WebhookTarget struct {
	URL      string
	Template string
	AdminURL string
}

// TemporalSink starts one NotifyIncidentEventWorkflow per event. The
// workflow ID is derived from the event ID so redelivery does not post twice.
type TemporalSink struct {
	tc        temporalclient.Client
	taskQueue string
	target    WebhookTarget
}

func NewTemporalSink(tc temporalclient.Client, taskQueue string, target WebhookTarget) *TemporalSink {
	return &TemporalSink{tc: tc, taskQueue: taskQueue, target: target}
}

func (s *TemporalSink) Name() string { return "temporal" }

func (s *TemporalSink) Deliver(ctx context.Context, evt model.Event) error {
	_, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        "notify-" + evt.ID,
		TaskQueue: s.taskQueue,
	}, "NotifyIncidentEventWorkflow", workflow.NotifyParams{
		Event:           evt,
		WebhookURL:      s.target.URL,
		Template:        s.target.Template,
		AdminWebhookURL: s.target.AdminURL,
	})
	if err != nil {
		return fmt.Errorf("start notify workflow: %w", err)
	}
	return nil
}
